package dashboard

import (
	"sync"

	"botdash/internal/api"
)

// State is the console-lifetime application state. Every accessor copies, so
// callers can never observe a half-applied update.
type State struct {
	mu sync.RWMutex

	config        api.BotConfig
	personalities api.Personalities
	editingID     string
	editing       bool

	section         SectionView
	configForm      ConfigForm
	personalityForm PersonalityForm
	documents       []api.Document
	selectedFile    string
	status          StatusView
	accounts        []AccountRow
	logs            LogView
}

func NewState() *State {
	return &State{
		personalities: api.Personalities{},
		configForm:    configFormFrom(api.BotConfig{}),
		status:        statusViewFrom(api.BotStatus{}),
		logs:          LogView{ScrollTo: -1},
	}
}

func cloneConfig(c api.BotConfig) api.BotConfig {
	out := c
	if c.ReplyProbability != nil {
		out.ReplyProbability = api.Float(*c.ReplyProbability)
	}
	if c.ContextMsgLimit != nil {
		out.ContextMsgLimit = api.Int(*c.ContextMsgLimit)
	}
	if c.MaxResponseTokens != nil {
		out.MaxResponseTokens = api.Int(*c.MaxResponseTokens)
	}
	if c.MinResponseDelay != nil {
		out.MinResponseDelay = api.Float(*c.MinResponseDelay)
	}
	if c.MaxResponseDelay != nil {
		out.MaxResponseDelay = api.Float(*c.MaxResponseDelay)
	}
	if c.TypingDelayPerWord != nil {
		out.TypingDelayPerWord = api.Float(*c.TypingDelayPerWord)
	}
	if c.DebugMode != nil {
		out.DebugMode = api.Bool(*c.DebugMode)
	}
	out.Document = c.Document.Clone()
	return out
}

func (s *State) Config() api.BotConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneConfig(s.config)
}

func (s *State) SetConfig(c api.BotConfig) {
	s.mu.Lock()
	s.config = cloneConfig(c)
	s.mu.Unlock()
}

func (s *State) Personalities() api.Personalities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.personalities.Clone()
}

func (s *State) SetPersonalities(p api.Personalities) {
	s.mu.Lock()
	s.personalities = p.Clone()
	s.mu.Unlock()
}

// Editing returns the id of the personality being edited, if any.
func (s *State) Editing() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editingID, s.editing
}

func (s *State) SetEditing(id string) {
	s.mu.Lock()
	s.editingID, s.editing = id, true
	s.mu.Unlock()
}

func (s *State) ClearEditing() {
	s.mu.Lock()
	s.editingID, s.editing = "", false
	s.mu.Unlock()
}

func (s *State) Section() SectionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.section
}

func (s *State) setSection(v SectionView) {
	s.mu.Lock()
	s.section = v
	s.mu.Unlock()
}

func (s *State) ConfigForm() ConfigForm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configForm
}

func (s *State) SetConfigForm(f ConfigForm) {
	s.mu.Lock()
	s.configForm = f
	s.mu.Unlock()
}

func (s *State) PersonalityForm() PersonalityForm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.personalityForm
}

func (s *State) setPersonalityForm(f PersonalityForm) {
	s.mu.Lock()
	s.personalityForm = f
	s.mu.Unlock()
}

func (s *State) Documents() []api.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]api.Document(nil), s.documents...)
}

func (s *State) setDocuments(docs []api.Document) {
	s.mu.Lock()
	s.documents = append([]api.Document(nil), docs...)
	s.mu.Unlock()
}

func (s *State) SelectedFile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedFile
}

func (s *State) SelectFile(path string) {
	s.mu.Lock()
	s.selectedFile = path
	s.mu.Unlock()
}

func (s *State) Status() StatusView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *State) setStatus(v StatusView) {
	s.mu.Lock()
	s.status = v
	s.mu.Unlock()
}

func (s *State) Accounts() []AccountRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AccountRow(nil), s.accounts...)
}

func (s *State) Logs() LogView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.logs
	v.Lines = append([]LogLine(nil), s.logs.Lines...)
	return v
}

func (s *State) setLogs(v LogView) {
	s.mu.Lock()
	s.logs = v
	s.mu.Unlock()
}
