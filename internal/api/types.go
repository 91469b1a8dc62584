package api

import (
	"bytes"
	"encoding/json"
)

const StatusSuccess = "success"

// BotConfig is the bot configuration as exchanged with the dashboard API.
// Numeric fields are nullable: the server may omit them, and values the
// operator typed that do not parse are sent as null.
type BotConfig struct {
	ReplyProbability   *float64 `json:"reply_probability"`
	ContextMsgLimit    *int     `json:"context_msg_limit"`
	MaxResponseTokens  *int     `json:"max_response_tokens"`
	MinResponseDelay   *float64 `json:"min_response_delay"`
	MaxResponseDelay   *float64 `json:"max_response_delay"`
	TypingDelayPerWord *float64 `json:"typing_delay_per_word"`
	DebugMode          *bool    `json:"debug_mode"`
	ActivePersonality  string   `json:"active_personality,omitempty"`
	PDFDirectory       string   `json:"pdf_directory,omitempty"`

	// Document is the object exactly as the server sent it, including keys
	// the typed fields do not cover.
	Document ConfigDocument `json:"-"`
	// Null is set when the server answered with a JSON null.
	Null bool `json:"-"`
}

// UnmarshalJSON fills the typed fields and keeps the raw document.
func (c *BotConfig) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = BotConfig{Null: true}
		return nil
	}
	type plain BotConfig
	var typed plain
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	var doc ConfigDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*c = BotConfig(typed)
	c.Document = doc
	return nil
}

// ConfigDocument is a configuration object keyed by field name with the
// values left encoded.
type ConfigDocument map[string]json.RawMessage

func (d ConfigDocument) Clone() ConfigDocument {
	if d == nil {
		return nil
	}
	out := make(ConfigDocument, len(d))
	for k, v := range d {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// WithString returns a copy of d with key set to the string v.
func (d ConfigDocument) WithString(key, v string) ConfigDocument {
	out := d.Clone()
	if out == nil {
		out = ConfigDocument{}
	}
	enc, _ := json.Marshal(v)
	out[key] = enc
	return out
}

// DocumentOf encodes cfg's typed fields as a document.
func DocumentOf(cfg BotConfig) (ConfigDocument, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var doc ConfigDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

type Personality struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// Personalities maps personality id to its preset. The id is only ever a key.
type Personalities map[string]Personality

// Clone returns a shallow copy of the mapping.
func (p Personalities) Clone() Personalities {
	out := make(Personalities, len(p))
	for id, v := range p {
		out[id] = v
	}
	return out
}

type Document struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

type BotStatus struct {
	Running        bool   `json:"running"`
	ActiveSessions *int   `json:"active_sessions"`
	MessagesToday  *int   `json:"messages_today"`
	Uptime         string `json:"uptime"`
}

type Account struct {
	APIID   *int64 `json:"api_id"`
	APIHash string `json:"api_hash"`
	Phone   string `json:"phone"`
}

type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

type LogsResponse struct {
	Logs []LogEntry `json:"logs"`
}

// StatusResponse is the envelope every mutating endpoint answers with.
type StatusResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Filename string `json:"filename,omitempty"`
}

func (r StatusResponse) OK() bool {
	return r.Status == StatusSuccess
}

func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }

func Int64(v int64) *int64 { return &v }

func Bool(v bool) *bool { return &v }
