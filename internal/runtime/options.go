package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
)

const (
	// DefaultRetryInterval is the delay between two element resolution
	// attempts and before a rejected navigation is re-issued.
	DefaultRetryInterval = 500 * time.Millisecond

	// DefaultAutoAdvance is the autopilot countdown of a highlighted step.
	DefaultAutoAdvance = 8000 * time.Millisecond
)

// LocatorFactory builds the element locator. It receives the engine's
// loop-bound clock so retries are delivered on the event loop.
type LocatorFactory func(query ports.ElementQuery, clock ports.Clock, retry time.Duration) ports.Locator

// Option configures a Machine.
type Option func(*Machine)

// WithClock sets the time source (default: wall clock).
func WithClock(c ports.Clock) Option {
	return func(m *Machine) {
		if c != nil {
			m.baseClock = c
		}
	}
}

// WithLocator replaces the default polling locator.
func WithLocator(f LocatorFactory) Option {
	return func(m *Machine) {
		if f != nil {
			m.locatorFactory = f
		}
	}
}

// WithSignalStore sets the durable "tour active" signal.
func WithSignalStore(s ports.SignalStore) Option {
	return func(m *Machine) {
		m.store = s
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = m.hooks.Merge(hooks)
	}
}

// WithRetryInterval sets the resolution and navigation retry interval.
func WithRetryInterval(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.retryInterval = d
		}
	}
}

// WithAutoAdvance sets the autopilot countdown.
func WithAutoAdvance(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.autoAdvance = d
		}
	}
}

// WithHighlightPadding sets the outline padding around highlighted elements.
func WithHighlightPadding(p float64) Option {
	return func(m *Machine) {
		m.padding = p
	}
}

// WithAutopilot sets the initial autopilot preference (default: enabled).
func WithAutopilot(enabled bool) Option {
	return func(m *Machine) {
		m.state.AutopilotEnabled = enabled
	}
}

// WithExcludedViews lists views on which highlighting is suppressed.
func WithExcludedViews(views ...string) Option {
	return func(m *Machine) {
		for _, v := range views {
			m.excluded[v] = true
		}
	}
}

// WithRunID sets the generator of run identifiers attached to events.
func WithRunID(gen func() string) Option {
	return func(m *Machine) {
		if gen != nil {
			m.newRunID = gen
		}
	}
}
