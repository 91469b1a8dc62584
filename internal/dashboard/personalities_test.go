package dashboard

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botdash/internal/api"
)

func seededPersonalities() api.Personalities {
	return api.Personalities{
		"sylvia_default": {Name: "Sylvia", Description: "Default"},
		"professional":   {Name: "Professional"},
		"casual_friend":  {Name: "Casual Friend"},
		"tech_expert":    {Name: "Tech Expert"},
		"pirate_1":       {Name: "Pirate", Description: "Arr", Content: "Talk like a pirate."},
	}
}

func TestGeneratePersonalityID(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "grumpy_cat__1700000000123", GeneratePersonalityID("Grumpy Cat!", at))
	assert.Equal(t, "caf__1700000000123", GeneratePersonalityID("Café", at))

	later := at.Add(time.Millisecond)
	assert.NotEqual(t, GeneratePersonalityID("Same", at), GeneratePersonalityID("Same", later))
}

func TestPersonalityCardsHideDeleteForDefaults(t *testing.T) {
	cards := PersonalityCards(seededPersonalities(), "pirate_1")
	require.Len(t, cards, 5)

	for _, c := range cards {
		assert.Equal(t, !IsDefaultPersonality(c.ID), c.Deletable, c.ID)
		assert.Equal(t, c.ID == "pirate_1", c.Active, c.ID)
	}
	assert.Equal(t, "casual_friend", cards[0].ID)
}

func TestSelectPersonalityCommitsOnSuccess(t *testing.T) {
	h := newHarness()
	h.api.personalities = seededPersonalities()
	h.api.config = api.BotConfig{ReplyProbability: api.Float(0.5)}
	ctx := context.Background()
	require.NoError(t, h.ctrl.LoadConfig(ctx))
	require.NoError(t, h.ctrl.LoadPersonalities(ctx))

	require.NoError(t, h.ctrl.SelectPersonality(ctx, "pirate_1"))

	assert.Empty(t, h.api.savedConfigs)
	require.Len(t, h.api.savedDocuments, 1)
	body, err := json.Marshal(h.api.savedDocuments[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"reply_probability": 0.5,
		"context_msg_limit": null,
		"max_response_tokens": null,
		"min_response_delay": null,
		"max_response_delay": null,
		"typing_delay_per_word": null,
		"debug_mode": null,
		"active_personality": "pirate_1"
	}`, string(body))
	assert.Equal(t, "pirate_1", h.ctrl.State().Config().ActivePersonality)
	assert.Equal(t, api.Float(0.5), h.ctrl.State().Config().ReplyProbability)
	require.Len(t, h.render.current, 1)
	assert.Equal(t, "Pirate", h.render.current[0].Name)
	assert.Contains(t, h.render.toastMessages(), "Personality selected successfully!")
}

func TestSelectPersonalityUnknownIDDangles(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	require.NoError(t, h.ctrl.SelectPersonality(ctx, "gone"))
	require.Len(t, h.api.savedDocuments, 1)
	assert.Equal(t, api.ConfigDocument{"active_personality": json.RawMessage(`"gone"`)}, h.api.savedDocuments[0])
	assert.Equal(t, "gone", h.ctrl.State().Config().ActivePersonality)
	assert.Empty(t, h.render.current)
	_, ok := h.ctrl.CurrentPersonality()
	assert.False(t, ok)
}

func TestSelectPersonalityRejectedLeavesConfig(t *testing.T) {
	h := newHarness()
	h.api.response = api.StatusResponse{Status: "error"}

	err := h.ctrl.SelectPersonality(context.Background(), "pirate_1")
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Empty(t, h.ctrl.State().Config().ActivePersonality)
}

func TestSavePersonalityCreatesWithGeneratedID(t *testing.T) {
	h := newHarness()
	h.api.personalities = seededPersonalities()
	ctx := context.Background()
	require.NoError(t, h.ctrl.LoadPersonalities(ctx))

	h.ctrl.NewPersonality()
	id, err := h.ctrl.SavePersonality(ctx, PersonalityForm{Name: "Night Owl", Content: "Be sleepy."})
	require.NoError(t, err)
	assert.Equal(t, "night_owl_1700000000000", id)

	require.Len(t, h.api.savedPersonalities, 1)
	sent := h.api.savedPersonalities[0]
	assert.Len(t, sent, 6)
	assert.Equal(t, "Be sleepy.", sent[id].Content)

	_, editing := h.ctrl.State().Editing()
	assert.False(t, editing)
	assert.Equal(t, PersonalityForm{}, h.ctrl.State().PersonalityForm())
	assert.Contains(t, h.render.toastMessages(), "Personality saved successfully!")
}

func TestSavePersonalityKeepsEditedID(t *testing.T) {
	h := newHarness()
	h.api.personalities = seededPersonalities()
	ctx := context.Background()
	require.NoError(t, h.ctrl.LoadPersonalities(ctx))

	form := h.ctrl.EditPersonality("pirate_1")
	assert.Equal(t, "Pirate", form.Name)
	assert.True(t, form.Focus)

	form.Description = "Yo ho"
	id, err := h.ctrl.SavePersonality(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "pirate_1", id)
	assert.Equal(t, "Yo ho", h.ctrl.State().Personalities()["pirate_1"].Description)
}

func TestSavePersonalityRejectedKeepsEditState(t *testing.T) {
	h := newHarness()
	h.api.personalities = seededPersonalities()
	ctx := context.Background()
	require.NoError(t, h.ctrl.LoadPersonalities(ctx))
	h.api.response = api.StatusResponse{Status: "error"}

	form := h.ctrl.EditPersonality("pirate_1")
	form.Name = "Changed"
	_, err := h.ctrl.SavePersonality(ctx, form)
	require.Error(t, err)

	id, editing := h.ctrl.State().Editing()
	assert.True(t, editing)
	assert.Equal(t, "pirate_1", id)
	assert.Equal(t, "Pirate", h.ctrl.State().Personalities()["pirate_1"].Name)
}

func TestDeletePersonality(t *testing.T) {
	ctx := context.Background()

	t.Run("default refused without request", func(t *testing.T) {
		h := newHarness()
		assert.ErrorIs(t, h.ctrl.DeletePersonality(ctx, "tech_expert"), ErrProtected)
		assert.Empty(t, h.answers)
		assert.Empty(t, h.api.deletedIDs)
	})

	t.Run("declined", func(t *testing.T) {
		h := newHarness()
		h.allow = false
		assert.ErrorIs(t, h.ctrl.DeletePersonality(ctx, "pirate_1"), ErrDeclined)
		assert.Equal(t, []string{"Are you sure you want to delete this personality?"}, h.answers)
		assert.Empty(t, h.api.deletedIDs)
	})

	t.Run("confirmed", func(t *testing.T) {
		h := newHarness()
		h.api.personalities = seededPersonalities()
		require.NoError(t, h.ctrl.LoadPersonalities(ctx))

		require.NoError(t, h.ctrl.DeletePersonality(ctx, "pirate_1"))
		assert.Equal(t, []string{"pirate_1"}, h.api.deletedIDs)
		assert.NotContains(t, h.ctrl.State().Personalities(), "pirate_1")
		assert.Contains(t, h.render.toastMessages(), "Personality deleted successfully!")
	})

	t.Run("server refuses", func(t *testing.T) {
		h := newHarness()
		h.api.personalities = seededPersonalities()
		require.NoError(t, h.ctrl.LoadPersonalities(ctx))
		h.api.response = api.StatusResponse{Status: "error", Message: "Cannot delete default personality"}

		require.Error(t, h.ctrl.DeletePersonality(ctx, "pirate_1"))
		assert.Contains(t, h.ctrl.State().Personalities(), "pirate_1")
		assert.Equal(t, "Cannot delete default personality", h.render.lastToast().Message)
	})
}

func TestSetPersonalityField(t *testing.T) {
	h := newHarness()
	h.ctrl.NewPersonality()

	require.NoError(t, h.ctrl.SetPersonalityField("name", "Owl"))
	require.NoError(t, h.ctrl.SetPersonalityField("content", "Hoot."))
	assert.Error(t, h.ctrl.SetPersonalityField("mood", "x"))

	form := h.ctrl.State().PersonalityForm()
	assert.Equal(t, "Owl", form.Name)
	assert.Equal(t, "Hoot.", form.Content)
	assert.False(t, form.Focus)
}
