// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/authfront/internal/auth"
)

// =============================================================================
// EXPIRY WATCHER
// =============================================================================

// Watcher tracks when the current session token expires.
type Watcher struct {
	mu sync.Mutex

	expiresAt    time.Time
	tracking     bool
	warningShown bool
	fired        bool

	warningBefore time.Duration
	interval      time.Duration
	now           func() time.Time
}

// WatcherConfig holds configuration for the expiry watcher.
type WatcherConfig struct {
	// WarningBefore is how long before expiry to emit a warning (default: 1 minute)
	WarningBefore time.Duration

	// Interval is the tick period (default: 1 second)
	Interval time.Duration
}

// DefaultWatcherConfig returns the default watcher configuration.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		WarningBefore: time.Minute,
		Interval:      time.Second,
	}
}

// NewWatcher creates an idle watcher.
func NewWatcher(cfg WatcherConfig) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Watcher{
		warningBefore: cfg.WarningBefore,
		interval:      cfg.Interval,
		now:           time.Now,
	}
}

// Track starts watching id's token. It reports false (and stops watching)
// when the token carries no expiry.
func (w *Watcher) Track(id auth.Identity) bool {
	exp, ok := TokenExpiry(id.SessionToken)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.expiresAt = exp
	w.tracking = ok
	w.warningShown = false
	w.fired = false
	return ok
}

// Stop forgets the tracked token.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tracking = false
	w.expiresAt = time.Time{}
}

// ExpiresAt returns the tracked expiry.
func (w *Watcher) ExpiresAt() (time.Time, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.expiresAt, w.tracking
}

// Remaining returns time until expiry, or zero.
func (w *Watcher) Remaining() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.remainingLocked()
}

func (w *Watcher) remainingLocked() time.Duration {
	if !w.tracking {
		return 0
	}
	if d := w.expiresAt.Sub(w.now()); d > 0 {
		return d
	}
	return 0
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent periodically to check expiry.
type TickMsg struct {
	Time time.Time
}

// ExpiryWarningMsg indicates the token is about to expire.
type ExpiryWarningMsg struct {
	Remaining time.Duration
}

// ExpiredMsg indicates the token has expired. It is sent once per Track.
type ExpiredMsg struct{}

// TickCmd returns a command that ticks once after the watcher interval.
func (w *Watcher) TickCmd() tea.Cmd {
	return tea.Tick(w.interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// HandleTick evaluates expiry and returns the messages to deliver along
// with the next tick. Ticking stops once nothing is tracked.
func (w *Watcher) HandleTick() tea.Cmd {
	w.mu.Lock()
	if !w.tracking {
		w.mu.Unlock()
		return nil
	}

	var cmds []tea.Cmd
	remaining := w.remainingLocked()

	switch {
	case remaining == 0 && !w.fired:
		w.fired = true
		w.tracking = false
		cmds = append(cmds, func() tea.Msg { return ExpiredMsg{} })
	case remaining > 0 && remaining <= w.warningBefore && !w.warningShown:
		w.warningShown = true
		cmds = append(cmds, func() tea.Msg { return ExpiryWarningMsg{Remaining: remaining} })
	}
	stillTracking := w.tracking
	w.mu.Unlock()

	if stillTracking {
		cmds = append(cmds, w.TickCmd())
	}
	return tea.Batch(cmds...)
}

// FormatDuration returns a short human-readable duration.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm %ds", mins, secs)
}
