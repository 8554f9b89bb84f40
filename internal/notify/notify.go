// Package notify collects user-facing notices (toasts) raised by workflows
// until the browser picks them up.
package notify

import (
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier is how workflows surface outcomes.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// maxNotices bounds an inbox nobody drains.
const maxNotices = 50

// Inbox is an in-memory Notifier drained by the HTTP layer.
type Inbox struct {
	mu      sync.Mutex
	notices []Notice
	now     func() time.Time
}

func NewInbox() *Inbox {
	return &Inbox{now: time.Now}
}

func (b *Inbox) Success(msg string) { b.push(LevelSuccess, msg) }
func (b *Inbox) Error(msg string)   { b.push(LevelError, msg) }
func (b *Inbox) Info(msg string)    { b.push(LevelInfo, msg) }

func (b *Inbox) push(level Level, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, Notice{Level: level, Message: msg, At: b.now()})
	if len(b.notices) > maxNotices {
		b.notices = b.notices[len(b.notices)-maxNotices:]
	}
}

// Drain returns pending notices oldest first and empties the inbox.
func (b *Inbox) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

// Peek returns pending notices without removing them.
func (b *Inbox) Peek() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notice, len(b.notices))
	copy(out, b.notices)
	return out
}
