package dashboard

import (
	"context"
	"strings"

	"botdash/internal/api"
)

const LogsClearedPlaceholder = "Logs cleared."

func logViewFrom(entries []api.LogEntry) LogView {
	v := LogView{Lines: make([]LogLine, 0, len(entries)), ScrollTo: len(entries) - 1}
	for _, e := range entries {
		v.Lines = append(v.Lines, LogLine{
			Text:  "[" + e.Timestamp + "] " + e.Level + ": " + e.Message,
			Class: strings.ToLower(e.Level),
		})
	}
	return v
}

// RefreshLogs fetches the bot's log entries and shows them, newest last.
func (c *Controller) RefreshLogs(ctx context.Context) error {
	res, err := c.api.Logs(ctx)
	if err != nil {
		return c.failed("get logs", err)
	}
	if res.Logs == nil {
		return nil
	}
	v := logViewFrom(res.Logs)
	c.state.setLogs(v)
	c.render.Logs(v)
	return nil
}

// ClearLogs empties the local log view only. Nothing is sent to the server.
func (c *Controller) ClearLogs() error {
	if !c.confirm.Confirm("Are you sure you want to clear all logs?") {
		return ErrDeclined
	}
	v := LogView{ScrollTo: -1, Placeholder: LogsClearedPlaceholder}
	c.state.setLogs(v)
	c.render.Logs(v)
	c.notes.Success("Logs cleared!")
	return nil
}
