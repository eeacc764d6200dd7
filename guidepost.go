package guidepost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/guidepost/internal/runtime"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/locator"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/aretw0/guidepost/pkg/registry"
	"github.com/google/uuid"
)

// LocatorFactory builds the element locator from the host's query, the
// engine's loop-bound clock and the configured retry interval.
type LocatorFactory = runtime.LocatorFactory

// Tour is the high-level entry point of the library.
// It wraps the internal state machine and provides a simplified API for hosts.
type Tour struct {
	machine *runtime.Machine
	store   ports.SignalStore
	logger  *slog.Logger
}

type settings struct {
	store       ports.SignalStore
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	skipCatalog bool
	runtimeOpts []runtime.Option
}

// Option defines a functional option for configuring the Tour.
type Option func(*settings)

// WithSignalStore persists the "tour active" signal across reloads.
func WithSignalStore(s ports.SignalStore) Option {
	return func(o *settings) {
		o.store = s
	}
}

// WithLogger sets a custom structured logger for the tour.
func WithLogger(logger *slog.Logger) Option {
	return func(o *settings) {
		o.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Multiple calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *settings) {
		o.hooks = o.hooks.Merge(hooks)
	}
}

// WithClock sets the time source.
func WithClock(c ports.Clock) Option {
	return func(o *settings) {
		o.runtimeOpts = append(o.runtimeOpts, runtime.WithClock(c))
	}
}

// WithAutoAdvance sets the autopilot countdown (default 8s).
func WithAutoAdvance(d time.Duration) Option {
	return func(o *settings) {
		o.runtimeOpts = append(o.runtimeOpts, runtime.WithAutoAdvance(d))
	}
}

// WithRetryInterval sets the element resolution and navigation retry interval (default 500ms).
func WithRetryInterval(d time.Duration) Option {
	return func(o *settings) {
		o.runtimeOpts = append(o.runtimeOpts, runtime.WithRetryInterval(d))
	}
}

// WithAutopilot sets the initial autopilot preference (default: enabled).
func WithAutopilot(enabled bool) Option {
	return func(o *settings) {
		o.runtimeOpts = append(o.runtimeOpts, runtime.WithAutopilot(enabled))
	}
}

// WithExcludedViews lists views on which highlighting is suppressed.
func WithExcludedViews(views ...string) Option {
	return func(o *settings) {
		o.runtimeOpts = append(o.runtimeOpts, runtime.WithExcludedViews(views...))
	}
}

// WithHighlightPadding sets the outline padding in host pixels (default 8).
func WithHighlightPadding(p float64) Option {
	return func(o *settings) {
		o.runtimeOpts = append(o.runtimeOpts, runtime.WithHighlightPadding(p))
	}
}

// WithLocator replaces the polling locator.
func WithLocator(f LocatorFactory) Option {
	return func(o *settings) {
		o.runtimeOpts = append(o.runtimeOpts, runtime.WithLocator(f))
	}
}

// WithContentWatcher resolves targets on host content-change notifications
// instead of polling.
func WithContentWatcher(w ports.ContentWatcher) Option {
	return WithLocator(func(q ports.ElementQuery, _ ports.Clock, _ time.Duration) ports.Locator {
		return locator.NewWatching(q, w)
	})
}

// WithoutCatalogCheck skips validating the script against the host's views.
func WithoutCatalogCheck() Option {
	return func(o *settings) {
		o.skipCatalog = true
	}
}

// New builds a tour for script over host.
//
// When the host's Navigator implements ports.ViewCatalog, every step's view is
// checked against it and unknown views fail with domain.ErrUnknownView. The
// durable signal is read once: if it is set, the tour starts immediately.
func New(ctx context.Context, script *domain.Script, host ports.Host, opts ...Option) (*Tour, error) {
	o := &settings{}
	for _, opt := range opts {
		opt(o)
	}

	if host.Navigator == nil || host.Query == nil {
		return nil, errors.New("host needs a navigator and an element query")
	}
	if script.Len() == 0 {
		return nil, domain.ErrEmptyScript
	}

	var views []string
	if catalog, ok := host.Navigator.(ports.ViewCatalog); ok && !o.skipCatalog {
		views = catalog.Views()
	}
	if err := registry.Validate(script, views); err != nil {
		return nil, fmt.Errorf("invalid script %q: %w", script.ID, err)
	}

	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	logger := o.logger.With("script", script.ID)

	ropts := []runtime.Option{
		runtime.WithLogger(logger),
		runtime.WithLifecycleHooks(o.hooks),
		runtime.WithRunID(uuid.NewString),
	}
	if o.store != nil {
		ropts = append(ropts, runtime.WithSignalStore(o.store))
	}
	ropts = append(ropts, o.runtimeOpts...)

	t := &Tour{
		machine: runtime.NewMachine(script, host, ropts...),
		store:   o.store,
		logger:  logger,
	}

	if t.store != nil {
		active, err := t.store.Active(ctx)
		if err != nil {
			// A broken store must not break the host; the tour just waits for a beacon.
			logger.Warn("failed to read tour signal", "err", err)
		} else if active {
			logger.Info("resuming tour from durable signal")
			if err := t.machine.Start(ctx); err != nil {
				logger.Warn("failed to resume tour", "err", err)
			}
		}
	}
	return t, nil
}

// Snapshot returns the current read model. It is safe from any goroutine.
func (t *Tour) Snapshot() domain.Snapshot { return t.machine.Snapshot() }

// Script returns the script the tour walks through.
func (t *Tour) Script() *domain.Script { return t.machine.Script() }

// Subscribe registers fn to receive snapshots as the tour changes.
func (t *Tour) Subscribe(fn func(domain.Snapshot)) ports.CancelFunc {
	return t.machine.Subscribe(fn)
}

// Start begins the tour at the first step. Starting an active tour is a no-op.
func (t *Tour) Start(ctx context.Context) error { return t.machine.Start(ctx) }

// Next advances one step, or ends the tour on the last one.
func (t *Tour) Next(ctx context.Context) error { return t.machine.Next(ctx) }

// Previous goes back one step. It does nothing on the first step.
func (t *Tour) Previous(ctx context.Context) error { return t.machine.Previous(ctx) }

// End stops the tour and clears the durable signal.
func (t *Tour) End(ctx context.Context) error { return t.machine.End(ctx) }

// Pause stops auto-advance until Resume.
func (t *Tour) Pause(ctx context.Context) error { return t.machine.Pause(ctx) }

// Resume restarts auto-advance with a full countdown.
func (t *Tour) Resume(ctx context.Context) error { return t.machine.Resume(ctx) }

// Hold suspends auto-advance while a transient input is active (e.g. hover).
func (t *Tour) Hold(ctx context.Context) error { return t.machine.Hold(ctx) }

// Release ends a Hold.
func (t *Tour) Release(ctx context.Context) error { return t.machine.Release(ctx) }

// ToggleAutopilot flips the autopilot preference.
func (t *Tour) ToggleAutopilot(ctx context.Context) error { return t.machine.ToggleAutopilot(ctx) }

// Listen starts the tour every time beacon emits, until ctx is done.
func (t *Tour) Listen(ctx context.Context, beacon *Beacon) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-beacon.C():
			if err := t.machine.Start(ctx); err != nil {
				t.logger.Warn("failed to start tour from beacon", "err", err)
			}
		}
	}
}

// Beacon is the one-shot "start the tour" event raised by the host (a button,
// a first-login hook). Emitting never blocks; emissions that arrive while one
// is pending are coalesced.
type Beacon struct {
	ch chan struct{}
}

// NewBeacon creates a beacon.
func NewBeacon() *Beacon {
	return &Beacon{ch: make(chan struct{}, 1)}
}

// Emit raises the start event.
func (b *Beacon) Emit() {
	select {
	case b.ch <- struct{}{}:
	default:
	}
}

// C returns the channel Listen consumes.
func (b *Beacon) C() <-chan struct{} { return b.ch }

var _ ports.TourController = (*Tour)(nil)
