package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botdash/internal/api"
)

func TestRefreshLogsFormatsLines(t *testing.T) {
	h := newHarness()
	h.api.logs = api.LogsResponse{Logs: []api.LogEntry{
		{Timestamp: "10:00:01", Level: "INFO", Message: "bot started"},
		{Timestamp: "10:00:05", Level: "ERROR", Message: "flood wait"},
	}}

	require.NoError(t, h.ctrl.RefreshLogs(context.Background()))

	v := h.ctrl.State().Logs()
	assert.Equal(t, []LogLine{
		{Text: "[10:00:01] INFO: bot started", Class: "info"},
		{Text: "[10:00:05] ERROR: flood wait", Class: "error"},
	}, v.Lines)
	assert.Equal(t, 1, v.ScrollTo)
}

func TestRefreshLogsWithoutLogsKeepsView(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.ctrl.RefreshLogs(context.Background()))
	assert.Empty(t, h.render.logs)

	h.api.logs = api.LogsResponse{Logs: []api.LogEntry{}}
	require.NoError(t, h.ctrl.RefreshLogs(context.Background()))
	require.Len(t, h.render.logs, 1)
	assert.Empty(t, h.render.logs[0].Lines)
	assert.Equal(t, -1, h.render.logs[0].ScrollTo)
}

func TestClearLogsIsLocal(t *testing.T) {
	h := newHarness()
	h.api.logs = api.LogsResponse{Logs: []api.LogEntry{{Timestamp: "t", Level: "INFO", Message: "m"}}}
	require.NoError(t, h.ctrl.RefreshLogs(context.Background()))

	h.allow = false
	assert.ErrorIs(t, h.ctrl.ClearLogs(), ErrDeclined)
	assert.Len(t, h.ctrl.State().Logs().Lines, 1)

	h.allow = true
	require.NoError(t, h.ctrl.ClearLogs())
	v := h.ctrl.State().Logs()
	assert.Empty(t, v.Lines)
	assert.Equal(t, LogsClearedPlaceholder, v.Placeholder)
	assert.Equal(t, []string{"Logs cleared!"}, h.render.toastMessages())
	assert.Equal(t, []string{"Are you sure you want to clear all logs?", "Are you sure you want to clear all logs?"}, h.answers)
}
