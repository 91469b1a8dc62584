package dashboard

// View models are plain data. Renderers receive them and never reach back
// into the controller.

type SectionView struct {
	Name    string
	Title   string
	Visible string // empty when no region matches Name
	Active  string // nav entry carrying the active marker
}

// ConfigForm holds the configuration fields as the operator sees and types
// them. Values are raw text until SaveConfig coerces them.
type ConfigForm struct {
	ReplyProbability      string
	ReplyProbabilityLabel string
	ContextMsgLimit       string
	MaxResponseTokens     string
	MinResponseDelay      string
	MaxResponseDelay      string
	TypingDelay           string
	DebugMode             bool
}

type PersonalityCard struct {
	ID          string
	Name        string
	Description string
	Active      bool
	Deletable   bool
}

type PersonalitySummary struct {
	ID          string
	Name        string
	Description string
}

type PersonalityForm struct {
	Name        string
	Description string
	Content     string
	EditingID   string
	// Focus asks the renderer to bring the form into view.
	Focus bool
}

type DocumentCard struct {
	Name      string
	Path      string
	SizeLabel string
	Modified  string
}

type StatusView struct {
	Running        bool
	Text           string
	BadgeClass     string
	ActiveSessions int
	MessagesToday  int
	Uptime         string
}

// AccountRow is one editable account line. ID is the row handle assigned at
// creation; it never leaves the console.
type AccountRow struct {
	ID      string
	APIID   string
	APIHash string
	Phone   string
}

type LogLine struct {
	Text  string
	Class string
}

type LogView struct {
	Lines []LogLine
	// ScrollTo is the index of the line to keep in view, -1 for none.
	ScrollTo    int
	Placeholder string
}
