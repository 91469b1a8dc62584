package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Toast is a single transient message. Toasts are independent of each other:
// showing one never replaces or delays another.
type Toast struct {
	ID        string
	Message   string
	Severity  Severity
	Style     string
	CreatedAt time.Time
}

// Style maps a severity to its visual variant.
func Style(s Severity) string {
	switch s {
	case SeverityError:
		return "danger"
	case SeveritySuccess:
		return "success"
	default:
		return "primary"
	}
}

// Center keeps the stack of shown toasts until each one is dismissed.
type Center struct {
	mu     sync.Mutex
	toasts []Toast
	onShow func(Toast)
	nowFn  func() time.Time
}

// NewCenter returns a Center that calls onShow for every toast as soon as it
// is created. onShow may be nil.
func NewCenter(onShow func(Toast)) *Center {
	return &Center{onShow: onShow, nowFn: time.Now}
}

func (c *Center) Show(message string, severity Severity) Toast {
	if severity == "" {
		severity = SeverityInfo
	}
	t := Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		Style:     Style(severity),
		CreatedAt: c.nowFn().UTC(),
	}
	c.mu.Lock()
	c.toasts = append(c.toasts, t)
	onShow := c.onShow
	c.mu.Unlock()

	if onShow != nil {
		onShow(t)
	}
	return t
}

func (c *Center) Info(message string) Toast    { return c.Show(message, SeverityInfo) }
func (c *Center) Success(message string) Toast { return c.Show(message, SeveritySuccess) }
func (c *Center) Error(message string) Toast   { return c.Show(message, SeverityError) }

// Dismiss removes the toast with the given id. It reports whether the toast
// was still shown.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, t := range c.toasts {
		if t.ID == id {
			c.toasts = append(c.toasts[:i], c.toasts[i+1:]...)
			return true
		}
	}
	return false
}

// DismissAll clears the stack and returns how many toasts were removed.
func (c *Center) DismissAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.toasts)
	c.toasts = nil
	return n
}

// Active returns the shown toasts, oldest first.
func (c *Center) Active() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Toast, len(c.toasts))
	copy(out, c.toasts)
	return out
}
