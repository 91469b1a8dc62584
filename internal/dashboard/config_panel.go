package dashboard

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"botdash/internal/api"
	"botdash/internal/audit"
)

// Values shown when the server omits a configuration field.
const (
	DefaultReplyProbability   = 0.4
	DefaultContextMsgLimit    = 15
	DefaultMaxResponseTokens  = 200
	DefaultMinResponseDelay   = 1.0
	DefaultMaxResponseDelay   = 4.0
	DefaultTypingDelayPerWord = 0.15
)

const (
	FieldReplyProbability  = "reply_probability"
	FieldContextMsgLimit   = "context_msg_limit"
	FieldMaxResponseTokens = "max_response_tokens"
	FieldMinResponseDelay  = "min_response_delay"
	FieldMaxResponseDelay  = "max_response_delay"
	FieldTypingDelay       = "typing_delay_per_word"
	FieldDebugMode         = "debug_mode"
)

// ConfigFields lists the editable configuration fields in form order.
var ConfigFields = []string{
	FieldReplyProbability,
	FieldContextMsgLimit,
	FieldMaxResponseTokens,
	FieldMinResponseDelay,
	FieldMaxResponseDelay,
	FieldTypingDelay,
	FieldDebugMode,
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func floatOr(v *float64, def float64) string {
	if v == nil {
		return formatFloat(def)
	}
	return formatFloat(*v)
}

func intOr(v *int, def int) string {
	if v == nil {
		return strconv.Itoa(def)
	}
	return strconv.Itoa(*v)
}

func configFormFrom(cfg api.BotConfig) ConfigForm {
	f := ConfigForm{
		ReplyProbability:  floatOr(cfg.ReplyProbability, DefaultReplyProbability),
		ContextMsgLimit:   intOr(cfg.ContextMsgLimit, DefaultContextMsgLimit),
		MaxResponseTokens: intOr(cfg.MaxResponseTokens, DefaultMaxResponseTokens),
		MinResponseDelay:  floatOr(cfg.MinResponseDelay, DefaultMinResponseDelay),
		MaxResponseDelay:  floatOr(cfg.MaxResponseDelay, DefaultMaxResponseDelay),
		TypingDelay:       floatOr(cfg.TypingDelayPerWord, DefaultTypingDelayPerWord),
		DebugMode:         cfg.DebugMode != nil && *cfg.DebugMode,
	}
	f.ReplyProbabilityLabel = f.ReplyProbability
	return f
}

// ParseFloatInput coerces typed text to a number. Anything that is not a
// finite number becomes nil, which is sent to the server as null.
func ParseFloatInput(raw string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseIntInput coerces typed text to an integer. A decimal is truncated
// toward zero; anything else that is not a number becomes nil.
func ParseIntInput(raw string) *int64 {
	s := strings.TrimSpace(raw)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &v
	}
	f := ParseFloatInput(s)
	if f == nil || math.Abs(*f) > math.MaxInt64 {
		return nil
	}
	v := int64(math.Trunc(*f))
	return &v
}

func parseIntField(raw string) *int {
	v := ParseIntInput(raw)
	if v == nil {
		return nil
	}
	return api.Int(int(*v))
}

// LoadConfig fetches the configuration and fills the form, using the
// client-side defaults for omitted fields. A null body leaves everything as
// it was.
func (c *Controller) LoadConfig(ctx context.Context) error {
	cfg, err := c.api.GetConfig(ctx)
	if err != nil {
		return c.failed("get config", err)
	}
	if cfg.Null {
		c.logger.Debug("config response was null, keeping current configuration")
		return nil
	}
	c.state.SetConfig(cfg)
	form := configFormFrom(cfg)
	c.state.SetConfigForm(form)
	c.render.ConfigForm(form)
	return nil
}

// SetConfigField edits one form field as the operator would type it. The
// reply probability label follows its value live.
func (c *Controller) SetConfigField(field, raw string) error {
	f := c.state.ConfigForm()
	switch field {
	case FieldReplyProbability:
		f.ReplyProbability = raw
		f.ReplyProbabilityLabel = raw
	case FieldContextMsgLimit:
		f.ContextMsgLimit = raw
	case FieldMaxResponseTokens:
		f.MaxResponseTokens = raw
	case FieldMinResponseDelay:
		f.MinResponseDelay = raw
	case FieldMaxResponseDelay:
		f.MaxResponseDelay = raw
	case FieldTypingDelay:
		f.TypingDelay = raw
	case FieldDebugMode:
		on, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("debug_mode expects true or false, got %q", raw)
		}
		f.DebugMode = on
	default:
		return fmt.Errorf("unknown config field %q", field)
	}
	c.state.SetConfigForm(f)
	c.render.ConfigForm(f)
	return nil
}

// BuildConfig coerces the form into the object sent to the server. Fields
// the form does not edit are carried over from base.
func BuildConfig(form ConfigForm, base api.BotConfig) api.BotConfig {
	return api.BotConfig{
		ReplyProbability:   ParseFloatInput(form.ReplyProbability),
		ContextMsgLimit:    parseIntField(form.ContextMsgLimit),
		MaxResponseTokens:  parseIntField(form.MaxResponseTokens),
		MinResponseDelay:   ParseFloatInput(form.MinResponseDelay),
		MaxResponseDelay:   ParseFloatInput(form.MaxResponseDelay),
		TypingDelayPerWord: ParseFloatInput(form.TypingDelay),
		DebugMode:          api.Bool(form.DebugMode),
		ActivePersonality:  base.ActivePersonality,
		PDFDirectory:       base.PDFDirectory,
	}
}

// SaveConfig submits the form fields plus the active personality and PDF
// directory. On success the in-memory configuration becomes exactly what was
// sent; it is not re-fetched.
func (c *Controller) SaveConfig(ctx context.Context, form ConfigForm) error {
	c.state.SetConfigForm(form)
	cfg := BuildConfig(form, c.state.Config())

	res, err := c.api.SaveConfig(ctx, cfg)
	if err != nil {
		c.record(ctx, audit.EventConfigSave, map[string]any{"outcome": audit.OutcomeFailed, "error": err.Error()})
		return c.failed("save config", err)
	}
	c.record(ctx, audit.EventConfigSave, map[string]any{"outcome": outcome(res), "message": res.Message})
	if !res.OK() {
		c.notes.Error("Failed to save configuration")
		return &RejectedError{Op: "save config", Message: res.Message}
	}
	if doc, err := api.DocumentOf(cfg); err == nil {
		cfg.Document = doc
	}
	c.state.SetConfig(cfg)
	c.notes.Success("Configuration saved successfully!")
	return nil
}
