package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botdash/internal/api"
)

func TestBootstrapLoadsEveryRegion(t *testing.T) {
	h := newHarness()
	h.api.personalities = seededPersonalities()
	h.api.documents = []api.Document{{Name: "a.pdf"}}
	h.api.accounts = []api.Account{{APIID: api.Int64(1), APIHash: "h", Phone: "p"}}

	require.NoError(t, h.ctrl.Bootstrap(context.Background()))

	assert.Len(t, h.render.configForms, 1)
	assert.Len(t, h.render.personalities, 1)
	assert.Len(t, h.render.documents, 1)
	assert.Len(t, h.render.statuses, 1)
	assert.Len(t, h.render.accounts, 1)
	assert.Equal(t, 1, h.api.statusCalls)
}

func TestBootstrapReportsEveryFailure(t *testing.T) {
	h := newHarness()
	h.api.err = transportErr("down")

	require.Error(t, h.ctrl.Bootstrap(context.Background()))
	assert.Len(t, h.render.toasts, 5)
}

func TestSaveAllAlwaysNotifies(t *testing.T) {
	h := newHarness()
	h.api.response = api.StatusResponse{Status: "error"}

	err := h.ctrl.SaveAll(context.Background())
	require.Error(t, err)
	assert.Len(t, h.api.savedConfigs, 1)
	assert.Len(t, h.api.savedAccounts, 1)
	assert.Equal(t, "All settings saved!", h.render.lastToast().Message)
}

func TestSwitchSection(t *testing.T) {
	h := newHarness()

	v := h.ctrl.SwitchSection(SectionPDFs)
	assert.Equal(t, SectionView{Name: "pdfs", Title: "PDF Management", Visible: "pdfs", Active: "pdfs"}, v)

	v = h.ctrl.SwitchSection("missing")
	assert.Equal(t, "Dashboard", v.Title)
	assert.Empty(t, v.Visible)
	assert.Len(t, h.render.section, 2)
	assert.Equal(t, v, h.ctrl.State().Section())
}
