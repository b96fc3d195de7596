package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Level is the severity of a transient notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is one toast-style message for the UI.
type Notification struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier is what components use to surface user-facing messages.
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
}

// Center keeps the most recent notifications until the UI drains them.
type Center struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	log      *zap.Logger
	now      func() time.Time
}

// NewCenter creates a center holding at most capacity undrained messages;
// older ones are dropped first.
func NewCenter(capacity int, log *zap.Logger) *Center {
	if capacity <= 0 {
		capacity = 50
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Center{
		capacity: capacity,
		log:      log,
		now:      time.Now,
	}
}

func (c *Center) Info(msg string)    { c.push(LevelInfo, msg) }
func (c *Center) Success(msg string) { c.push(LevelSuccess, msg) }
func (c *Center) Error(msg string)   { c.push(LevelError, msg) }

func (c *Center) push(level Level, msg string) {
	n := Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: msg,
		At:      c.now().UTC(),
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	if over := len(c.items) - c.capacity; over > 0 {
		c.items = append([]Notification(nil), c.items[over:]...)
	}
	c.mu.Unlock()

	c.log.Debug("notification", zap.String("level", string(level)), zap.String("message", msg))
}

// Drain returns pending notifications oldest first and forgets them.
func (c *Center) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.items
	c.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Pending returns pending notifications without draining them.
func (c *Center) Pending() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification{}, c.items...)
}
