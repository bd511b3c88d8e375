// Package theme resolves and applies the light/dark preference: stored
// value first, then the system signal, then light. The server-side
// preference wins once a profile load succeeds.
package theme

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

// Store is the slice of the session store the controller needs.
type Store interface {
	Theme() (core.Theme, bool)
	SetTheme(core.Theme) error
}

// Syncer pushes the preference to the server.
type Syncer interface {
	UpdateTheme(ctx context.Context, theme core.Theme) error
}

type Controller struct {
	store      Store
	syncer     Syncer
	systemDark func() bool
	log        *log.Logger

	mu      sync.Mutex
	current core.Theme
	pending sync.WaitGroup
}

type Option func(*Controller)

// WithSystemProbe overrides the system dark-mode detection.
func WithSystemProbe(probe func() bool) Option {
	return func(c *Controller) { c.systemDark = probe }
}

// WithLogger attaches a logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) { c.log = logger.WithComponent(log.ComponentTheme) }
}

func New(store Store, syncer Syncer, opts ...Option) *Controller {
	c := &Controller{
		store:      store,
		syncer:     syncer,
		systemDark: systemPrefersDark,
		log:        log.New(log.Config{Component: log.ComponentTheme}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init resolves the theme: explicit stored preference, else the system
// signal, else light. A first-visit resolution is persisted immediately
// so later runs see an explicit preference.
func (c *Controller) Init() core.Theme {
	c.mu.Lock()
	defer c.mu.Unlock()

	if stored, ok := c.store.Theme(); ok {
		c.current = stored
		return stored
	}

	resolved := core.ThemeLight
	if c.systemDark() {
		resolved = core.ThemeDark
	}
	if err := c.store.SetTheme(resolved); err != nil {
		c.log.Error("persisting resolved theme failed", log.FieldError, err)
	}
	c.current = resolved
	return resolved
}

// Current returns the applied theme.
func (c *Controller) Current() core.Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == "" {
		return core.ThemeLight
	}
	return c.current
}

// Apply sets and persists a theme locally.
func (c *Controller) Apply(theme core.Theme) {
	if !theme.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = theme
	if err := c.store.SetTheme(theme); err != nil {
		c.log.Error("persisting theme failed", log.FieldError, err)
	}
}

// Toggle flips the applied theme, persists it, and informs the server
// in the background. A failed sync is logged, never surfaced, and does
// not roll back the local change.
func (c *Controller) Toggle() core.Theme {
	next := c.Current().Other()
	c.Apply(next)

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.syncer.UpdateTheme(ctx, next); err != nil {
			c.log.Warn("theme sync failed", log.FieldTheme, string(next), log.FieldError, err)
		}
	}()

	return next
}

// Reconcile overwrites the local theme with the server-provided one.
// Callers invoke it only after a successful profile load; a failed
// fetch leaves the locally-resolved theme in place.
func (c *Controller) Reconcile(theme core.Theme) {
	if !theme.Valid() {
		return
	}
	c.Apply(theme)
}

// Flush waits for in-flight background syncs, for orderly shutdown.
func (c *Controller) Flush() {
	c.pending.Wait()
}

// systemPrefersDark is the terminal analogue of the browser dark-mode
// query. COLORFGBG advertises "foreground;background"; a background
// index of 0-6 or 8 means a dark palette.
func systemPrefersDark() bool {
	value := os.Getenv("COLORFGBG")
	if value == "" {
		return false
	}
	parts := strings.Split(value, ";")
	bg, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return false
	}
	return bg <= 6 || bg == 8
}
