package dashboard

const (
	SectionOverview    = "overview"
	SectionPersonality = "personality"
	SectionPDFs        = "pdfs"
	SectionConfig      = "config"
	SectionAccounts    = "accounts"
	SectionDebug       = "debug"

	defaultTitle = "Dashboard"
)

// Sections lists the content regions in navigation order.
var Sections = []string{
	SectionOverview,
	SectionPersonality,
	SectionPDFs,
	SectionConfig,
	SectionAccounts,
	SectionDebug,
}

var sectionTitles = map[string]string{
	SectionOverview:    "Dashboard Overview",
	SectionPersonality: "Personality Management",
	SectionPDFs:        "PDF Management",
	SectionConfig:      "Bot Configuration",
	SectionAccounts:    "Bot Accounts",
	SectionDebug:       "Debug & Logs",
}

// SectionTitle returns the page title for name, or "Dashboard" for names
// outside the table.
func SectionTitle(name string) string {
	if t, ok := sectionTitles[name]; ok {
		return t
	}
	return defaultTitle
}

func sectionView(name string) SectionView {
	v := SectionView{Name: name, Title: SectionTitle(name), Active: name}
	if _, ok := sectionTitles[name]; ok {
		v.Visible = name
	}
	return v
}

// SwitchSection makes name the only visible region and moves the nav marker
// to it. Unknown names leave no region visible.
func (c *Controller) SwitchSection(name string) SectionView {
	v := sectionView(name)
	c.state.setSection(v)
	c.render.Section(v)
	return v
}
