package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	EventConfigSave        = "config.save"
	EventPersonalitySelect = "personality.select"
	EventPersonalitySave   = "personality.save"
	EventPersonalityDelete = "personality.delete"
	EventPDFUpload         = "pdf.upload"
	EventPDFDelete         = "pdf.delete"
	EventBotStart          = "bot.start"
	EventBotStop           = "bot.stop"
	EventAccountsSave      = "accounts.save"

	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"

	defaultFileMode  = 0o600
	defaultDirMode   = 0o755
	defaultLineBreak = '\n'
)

// Event is one line of the audit trail: a mutation the console sent to the
// dashboard API and how the server answered.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Type      string    `json:"type"`
	Target    string    `json:"target,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	// Message is the server's message; Error the transport failure.
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	// Count is the size of the personality mapping sent with a save.
	Count *int `json:"count,omitempty"`
	// Sent and Skipped count account rows on an accounts save.
	Sent    *int `json:"sent,omitempty"`
	Skipped *int `json:"skipped,omitempty"`
	// Pages is the page count of an uploaded PDF, when it could be read.
	Pages   *int           `json:"pages,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

type Logger struct {
	path   string
	redact func(any) any
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

func NewLogger(path string, redact func(any) any) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), defaultDirMode); err != nil {
		return nil, err
	}
	if redact == nil {
		redact = RedactValue
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, defaultFileMode)
	if err != nil {
		return nil, err
	}
	return &Logger{path: path, redact: redact, file: f, writer: bufio.NewWriterSize(f, 32*1024)}, nil
}

// LogEvent appends one event. Known fields are lifted onto the event;
// everything else becomes the redacted payload.
func (l *Logger) LogEvent(ctx context.Context, eventType string, fields map[string]any) error {
	_ = ctx
	e := Event{Type: eventType, Timestamp: time.Now().UTC()}

	payload := make(map[string]any)
	for k, v := range fields {
		if !l.lift(&e, k, v) {
			payload[k] = v
		}
	}
	if len(payload) > 0 {
		if rv, ok := l.redact(payload).(map[string]any); ok {
			e.Payload = rv
		} else {
			e.Payload = payload
		}
	}

	line, err := json.Marshal(e)
	if err != nil {
		return err
	}
	line = append(line, defaultLineBreak)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil || l.writer == nil {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, defaultFileMode)
		if err != nil {
			return err
		}
		l.file = f
		l.writer = bufio.NewWriterSize(f, 32*1024)
	}

	if _, err := l.writer.Write(line); err != nil {
		return err
	}
	return l.writer.Flush()
}

// lift stores v on e when k names one of its fields and v has the field's
// type. Strings other than target and outcome go through redaction.
func (l *Logger) lift(e *Event, k string, v any) bool {
	switch k {
	case "target", "outcome", "message", "error":
		s, ok := v.(string)
		if !ok {
			return false
		}
		switch k {
		case "target":
			e.Target = s
		case "outcome":
			e.Outcome = s
		case "message":
			e.Message = l.redactString(s)
		case "error":
			e.Error = l.redactString(s)
		}
		return true
	case "count", "sent", "skipped", "pages":
		n, ok := v.(int)
		if !ok {
			return false
		}
		switch k {
		case "count":
			e.Count = &n
		case "sent":
			e.Sent = &n
		case "skipped":
			e.Skipped = &n
		case "pages":
			e.Pages = &n
		}
		return true
	}
	return false
}

func (l *Logger) redactString(s string) string {
	if out, ok := l.redact(s).(string); ok {
		return out
	}
	return s
}

func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	if l.writer != nil {
		if err := l.writer.Flush(); err != nil {
			_ = l.file.Close()
			l.file = nil
			l.writer = nil
			return err
		}
	}
	if err := l.file.Sync(); err != nil {
		_ = l.file.Close()
		l.file = nil
		l.writer = nil
		return err
	}
	err := l.file.Close()
	l.file = nil
	l.writer = nil
	return err
}
