package view

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"botdash/internal/dashboard"
	"botdash/internal/notify"
)

// Section writes the page title and the navigation bar, marking the active
// entry with an asterisk.
func Section(w io.Writer, v dashboard.SectionView) {
	fmt.Fprintf(w, "== %s ==\n", v.Title)
	entries := make([]string, 0, len(dashboard.Sections))
	for _, name := range dashboard.Sections {
		if name == v.Active {
			entries = append(entries, "*"+name)
			continue
		}
		entries = append(entries, name)
	}
	fmt.Fprintln(w, strings.Join(entries, " | "))
}

func ConfigForm(w io.Writer, f dashboard.ConfigForm) {
	fmt.Fprintln(w, "Bot configuration")
	rows := [][2]string{
		{dashboard.FieldReplyProbability, f.ReplyProbability + " (" + f.ReplyProbabilityLabel + ")"},
		{dashboard.FieldContextMsgLimit, f.ContextMsgLimit},
		{dashboard.FieldMaxResponseTokens, f.MaxResponseTokens},
		{dashboard.FieldMinResponseDelay, f.MinResponseDelay},
		{dashboard.FieldMaxResponseDelay, f.MaxResponseDelay},
		{dashboard.FieldTypingDelay, f.TypingDelay},
		{dashboard.FieldDebugMode, checkbox(f.DebugMode)},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-22s %s\n", r[0], r[1])
	}
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

// Personalities writes one line per card. Cards without a delete control
// carry no "[delete]" marker.
func Personalities(w io.Writer, cards []dashboard.PersonalityCard) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No personalities.")
		return
	}
	for _, c := range cards {
		marker := " "
		if c.Active {
			marker = ">"
		}
		line := fmt.Sprintf("%s %s  %s", marker, c.ID, c.Name)
		if c.Description != "" {
			line += " - " + c.Description
		}
		line += "  [select] [edit]"
		if c.Deletable {
			line += " [delete]"
		}
		fmt.Fprintln(w, line)
	}
}

func CurrentPersonality(w io.Writer, p dashboard.PersonalitySummary) {
	fmt.Fprintf(w, "Current personality: %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(w, "  %s\n", p.Description)
	}
}

func PersonalityForm(w io.Writer, f dashboard.PersonalityForm) {
	if f.EditingID != "" {
		fmt.Fprintf(w, "Editing personality %s\n", f.EditingID)
	} else {
		fmt.Fprintln(w, "New personality")
	}
	fmt.Fprintf(w, "  name:        %s\n", f.Name)
	fmt.Fprintf(w, "  description: %s\n", f.Description)
	fmt.Fprintf(w, "  content:     %s\n", f.Content)
}

func Documents(w io.Writer, cards []dashboard.DocumentCard) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No PDFs uploaded.")
		return
	}
	for _, d := range cards {
		fmt.Fprintf(w, "%s  %s  %s  (%s)\n", d.Name, d.SizeLabel, d.Modified, d.Path)
	}
}

func Status(w io.Writer, v dashboard.StatusView) {
	fmt.Fprintf(w, "Status: %s [%s]\n", v.Text, v.BadgeClass)
	fmt.Fprintf(w, "  active sessions: %s\n", humanize.Comma(int64(v.ActiveSessions)))
	fmt.Fprintf(w, "  messages today:  %s\n", humanize.Comma(int64(v.MessagesToday)))
	fmt.Fprintf(w, "  uptime:          %s\n", v.Uptime)
}

func Accounts(w io.Writer, rows []dashboard.AccountRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No accounts.")
		return
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s  api_id=%s api_hash=%s phone=%s\n", r.ID, r.APIID, mask(r.APIHash), r.Phone)
	}
}

// mask hides all but the last four characters of a secret.
func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

func Logs(w io.Writer, v dashboard.LogView) {
	if len(v.Lines) == 0 {
		if v.Placeholder != "" {
			fmt.Fprintln(w, v.Placeholder)
		}
		return
	}
	for _, l := range v.Lines {
		fmt.Fprintln(w, l.Text)
	}
}

func Toast(w io.Writer, t notify.Toast) {
	fmt.Fprintf(w, "[%s] %s\n", t.Style, t.Message)
}

// Text renders every region to a single writer as it changes. Region updates
// may arrive from several goroutines; each one is written as a unit.
type Text struct {
	mu sync.Mutex
	w  io.Writer
}

func NewText(w io.Writer) *Text {
	if w == nil {
		w = io.Discard
	}
	return &Text{w: w}
}

func (t *Text) write(fn func(io.Writer)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.w)
}

func (t *Text) Section(v dashboard.SectionView) {
	t.write(func(w io.Writer) { Section(w, v) })
}

func (t *Text) ConfigForm(f dashboard.ConfigForm) {
	t.write(func(w io.Writer) { ConfigForm(w, f) })
}

func (t *Text) Personalities(cards []dashboard.PersonalityCard) {
	t.write(func(w io.Writer) { Personalities(w, cards) })
}

func (t *Text) CurrentPersonality(p dashboard.PersonalitySummary) {
	t.write(func(w io.Writer) { CurrentPersonality(w, p) })
}

func (t *Text) PersonalityForm(f dashboard.PersonalityForm) {
	t.write(func(w io.Writer) { PersonalityForm(w, f) })
}

func (t *Text) Documents(cards []dashboard.DocumentCard) {
	t.write(func(w io.Writer) { Documents(w, cards) })
}

func (t *Text) Status(v dashboard.StatusView) {
	t.write(func(w io.Writer) { Status(w, v) })
}

func (t *Text) Accounts(rows []dashboard.AccountRow) {
	t.write(func(w io.Writer) { Accounts(w, rows) })
}

func (t *Text) Logs(v dashboard.LogView) {
	t.write(func(w io.Writer) { Logs(w, v) })
}

func (t *Text) Toast(n notify.Toast) {
	t.write(func(w io.Writer) { Toast(w, n) })
}
