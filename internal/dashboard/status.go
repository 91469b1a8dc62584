package dashboard

import (
	"context"

	"botdash/internal/api"
	"botdash/internal/audit"
)

const (
	StatusOnline  = "Online"
	StatusOffline = "Offline"
	BadgeRunning  = "bg-success"
	BadgeStopped  = "bg-danger"
	DefaultUptime = "0:00:00"
)

func statusViewFrom(s api.BotStatus) StatusView {
	v := StatusView{
		Running:    s.Running,
		Text:       StatusOffline,
		BadgeClass: BadgeStopped,
		Uptime:     s.Uptime,
	}
	if s.Running {
		v.Text, v.BadgeClass = StatusOnline, BadgeRunning
	}
	if s.ActiveSessions != nil {
		v.ActiveSessions = *s.ActiveSessions
	}
	if s.MessagesToday != nil {
		v.MessagesToday = *s.MessagesToday
	}
	if v.Uptime == "" {
		v.Uptime = DefaultUptime
	}
	return v
}

// UpdateBotStatus fetches and shows the bot status. Concurrent calls are not
// serialized; whichever response lands last is what stays on screen.
func (c *Controller) UpdateBotStatus(ctx context.Context) error {
	s, err := c.api.BotStatus(ctx)
	if err != nil {
		return c.failed("bot status", err)
	}
	v := statusViewFrom(s)
	c.state.setStatus(v)
	c.render.Status(v)
	return nil
}

func (c *Controller) StartBot(ctx context.Context) error {
	return c.control(ctx, audit.EventBotStart, "start bot", c.api.StartBot, "Bot start command sent!")
}

func (c *Controller) StopBot(ctx context.Context) error {
	return c.control(ctx, audit.EventBotStop, "stop bot", c.api.StopBot, "Bot stop command sent!")
}

// control sends a bot command and, once accepted, refreshes the status a
// little later so the bot process has time to change state.
func (c *Controller) control(ctx context.Context, event, op string, send func(context.Context) (api.StatusResponse, error), okMessage string) error {
	res, err := send(ctx)
	if err != nil {
		c.record(ctx, event, map[string]any{"outcome": audit.OutcomeFailed, "error": err.Error()})
		return c.failed(op, err)
	}
	c.record(ctx, event, map[string]any{"outcome": outcome(res), "message": res.Message})
	if !res.OK() {
		return &RejectedError{Op: op, Message: res.Message}
	}
	c.notes.Success(okMessage)
	if c.scheduler != nil {
		c.scheduler.After(c.followup, func(ctx context.Context) {
			_ = c.UpdateBotStatus(ctx)
		})
	}
	return nil
}
