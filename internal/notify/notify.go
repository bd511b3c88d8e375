// Package notify holds transient user-facing feedback messages. It is
// presentation-only; no other component reads state from here.
package notify

import (
	"sync"
	"time"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// DefaultTTL is how long a message stays visible.
const DefaultTTL = 3 * time.Second

type Notification struct {
	Message   string
	Severity  Severity
	ExpiresAt time.Time
}

// Center stacks auto-dismissing notifications. Concurrent messages
// coexist until each one's own expiry; they never replace one another.
type Center struct {
	mu    sync.Mutex
	items []Notification
	ttl   time.Duration
	now   func() time.Time
	sink  func(Notification)
}

type Option func(*Center)

// WithTTL overrides the display duration.
func WithTTL(d time.Duration) Option {
	return func(c *Center) { c.ttl = d }
}

// WithClock injects a clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// WithSink registers a callback invoked for every new notification,
// letting the terminal print it as it happens.
func WithSink(fn func(Notification)) Option {
	return func(c *Center) { c.sink = fn }
}

func New(opts ...Option) *Center {
	c := &Center{
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify appends a message to the stack.
func (c *Center) Notify(message string, severity Severity) {
	c.mu.Lock()
	n := Notification{
		Message:   message,
		Severity:  severity,
		ExpiresAt: c.now().Add(c.ttl),
	}
	c.items = append(c.items, n)
	sink := c.sink
	c.mu.Unlock()

	if sink != nil {
		sink(n)
	}
}

func (c *Center) Success(message string) { c.Notify(message, SeveritySuccess) }
func (c *Center) Error(message string)   { c.Notify(message, SeverityError) }
func (c *Center) Info(message string)    { c.Notify(message, SeverityInfo) }

// Active returns the not-yet-expired notifications in arrival order,
// pruning the rest.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	kept := c.items[:0]
	for _, n := range c.items {
		if n.ExpiresAt.After(now) {
			kept = append(kept, n)
		}
	}
	c.items = kept

	out := make([]Notification, len(kept))
	copy(out, kept)
	return out
}
