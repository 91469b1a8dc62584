package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"botdash/internal/api"
	"botdash/internal/audit"
)

// DefaultPersonalities are shipped with the bot and can never be deleted.
var DefaultPersonalities = []string{"sylvia_default", "professional", "casual_friend", "tech_expert"}

func IsDefaultPersonality(id string) bool {
	for _, d := range DefaultPersonalities {
		if d == id {
			return true
		}
	}
	return false
}

// GeneratePersonalityID lower-cases name, replaces every character outside
// [a-z0-9] with an underscore and appends the Unix millisecond timestamp.
func GeneratePersonalityID(name string, now time.Time) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	b.WriteByte('_')
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	return b.String()
}

// PersonalityCards builds one card per personality, ordered by id.
func PersonalityCards(p api.Personalities, activeID string) []PersonalityCard {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	cards := make([]PersonalityCard, 0, len(ids))
	for _, id := range ids {
		cards = append(cards, PersonalityCard{
			ID:          id,
			Name:        p[id].Name,
			Description: p[id].Description,
			Active:      id == activeID,
			Deletable:   !IsDefaultPersonality(id),
		})
	}
	return cards
}

func (c *Controller) renderPersonalities() {
	c.render.Personalities(PersonalityCards(c.state.Personalities(), c.state.Config().ActivePersonality))
}

func (c *Controller) LoadPersonalities(ctx context.Context) error {
	p, err := c.api.GetPersonalities(ctx)
	if err != nil {
		return c.failed("get personalities", err)
	}
	if p == nil {
		c.logger.Debug("personalities response was null, keeping current mapping")
		return nil
	}
	c.state.SetPersonalities(p)
	c.renderPersonalities()
	return nil
}

// SelectPersonality makes id the active personality by posting the last
// loaded configuration document with only active_personality replaced. The
// id is not checked against the loaded mapping.
func (c *Controller) SelectPersonality(ctx context.Context, id string) error {
	cfg := c.state.Config()
	doc := cfg.Document.WithString("active_personality", id)
	cfg.ActivePersonality = id
	cfg.Document = doc

	res, err := c.api.SaveConfigDocument(ctx, doc)
	if err != nil {
		c.record(ctx, audit.EventPersonalitySelect, map[string]any{"target": id, "outcome": audit.OutcomeFailed, "error": err.Error()})
		return c.failed("select personality", err)
	}
	c.record(ctx, audit.EventPersonalitySelect, map[string]any{"target": id, "outcome": outcome(res)})
	if !res.OK() {
		return &RejectedError{Op: "select personality", Message: res.Message}
	}
	c.state.SetConfig(cfg)
	c.notes.Success("Personality selected successfully!")
	c.renderPersonalities()
	if p, ok := c.state.Personalities()[id]; ok {
		c.render.CurrentPersonality(PersonalitySummary{ID: id, Name: p.Name, Description: p.Description})
	}
	return nil
}

// CurrentPersonality returns the summary of the active personality, if it is
// present in the loaded mapping.
func (c *Controller) CurrentPersonality() (PersonalitySummary, bool) {
	id := c.state.Config().ActivePersonality
	p, ok := c.state.Personalities()[id]
	if !ok {
		return PersonalitySummary{}, false
	}
	return PersonalitySummary{ID: id, Name: p.Name, Description: p.Description}, true
}

// EditPersonality loads id into the form. Edit state is recorded even when
// id is not in the mapping, in which case the form keeps its contents.
func (c *Controller) EditPersonality(id string) PersonalityForm {
	c.state.SetEditing(id)
	form := c.state.PersonalityForm()
	if p, ok := c.state.Personalities()[id]; ok {
		form.Name, form.Description, form.Content = p.Name, p.Description, p.Content
	}
	form.EditingID = id
	form.Focus = true
	c.state.setPersonalityForm(form)
	c.render.PersonalityForm(form)
	return form
}

func (c *Controller) NewPersonality() PersonalityForm {
	c.state.ClearEditing()
	form := PersonalityForm{Focus: true}
	c.state.setPersonalityForm(form)
	c.render.PersonalityForm(form)
	return form
}

// SetPersonalityField edits one field of the personality form.
func (c *Controller) SetPersonalityField(field, value string) error {
	form := c.state.PersonalityForm()
	switch field {
	case "name":
		form.Name = value
	case "description":
		form.Description = value
	case "content":
		form.Content = value
	default:
		return fmt.Errorf("unknown personality field %q", field)
	}
	form.Focus = false
	c.state.setPersonalityForm(form)
	c.render.PersonalityForm(form)
	return nil
}

func (c *Controller) CancelPersonalityEdit() {
	c.state.ClearEditing()
	c.state.setPersonalityForm(PersonalityForm{})
	c.render.PersonalityForm(PersonalityForm{})
}

// SavePersonality stores the form under the edited id, or under a freshly
// generated one, and submits the whole mapping. It returns the id used.
func (c *Controller) SavePersonality(ctx context.Context, form PersonalityForm) (string, error) {
	id, editing := c.state.Editing()
	if !editing {
		id = GeneratePersonalityID(form.Name, c.nowFn())
	}

	updated := c.state.Personalities()
	updated[id] = api.Personality{Name: form.Name, Description: form.Description, Content: form.Content}

	res, err := c.api.SavePersonalities(ctx, updated)
	if err != nil {
		c.record(ctx, audit.EventPersonalitySave, map[string]any{"target": id, "outcome": audit.OutcomeFailed, "error": err.Error()})
		return id, c.failed("save personalities", err)
	}
	c.record(ctx, audit.EventPersonalitySave, map[string]any{"target": id, "outcome": outcome(res), "count": len(updated)})
	if !res.OK() {
		return id, &RejectedError{Op: "save personalities", Message: res.Message}
	}
	c.state.SetPersonalities(updated)
	c.renderPersonalities()
	c.CancelPersonalityEdit()
	c.notes.Success("Personality saved successfully!")
	return id, nil
}

// DeletePersonality removes a user-created personality after confirmation.
// Default ids have no delete control, so they are refused without a request.
func (c *Controller) DeletePersonality(ctx context.Context, id string) error {
	if IsDefaultPersonality(id) {
		return ErrProtected
	}
	if !c.confirm.Confirm("Are you sure you want to delete this personality?") {
		return ErrDeclined
	}

	res, err := c.api.DeletePersonality(ctx, id)
	if err != nil {
		c.record(ctx, audit.EventPersonalityDelete, map[string]any{"target": id, "outcome": audit.OutcomeFailed, "error": err.Error()})
		return c.failed("delete personality", err)
	}
	c.record(ctx, audit.EventPersonalityDelete, map[string]any{"target": id, "outcome": outcome(res), "message": res.Message})
	if !res.OK() {
		if res.Message != "" {
			c.notes.Error(res.Message)
		}
		return &RejectedError{Op: "delete personality", Message: res.Message}
	}
	p := c.state.Personalities()
	delete(p, id)
	c.state.SetPersonalities(p)
	c.renderPersonalities()
	c.notes.Success("Personality deleted successfully!")
	return nil
}
