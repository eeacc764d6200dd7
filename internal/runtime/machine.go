package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/guidepost/pkg/clock"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/highlight"
	"github.com/aretw0/guidepost/pkg/locator"
	"github.com/aretw0/guidepost/pkg/ports"
)

// Machine is the tour state machine. It owns the resources of exactly one step
// at a time: a resolution attempt, a tracking subscription, a pending automated
// action and an auto-advance countdown.
//
// Every mutation runs on the dispatcher. Asynchronous callbacks capture the
// epoch they were created in and are dropped once it changed.
type Machine struct {
	script    *domain.Script
	nav       ports.Navigator
	query     ports.ElementQuery
	viewport  ports.Viewport
	store     ports.SignalStore
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	baseClock ports.Clock
	excluded  map[string]bool
	newRunID  func() string

	locatorFactory LocatorFactory
	retryInterval  time.Duration
	autoAdvance    time.Duration
	padding        float64

	loop    *dispatcher
	clock   ports.Clock
	locator ports.Locator
	tracker *highlight.Tracker

	// mu guards the fields below for Snapshot readers. They are only written on the loop.
	mu       sync.RWMutex
	state    domain.TourState
	phase    domain.Phase
	geometry *domain.Geometry
	held     bool
	runID    string
	version  uint64
	// advanceAt is when the armed auto-advance countdown fires; zero when none is armed.
	advanceAt time.Time

	// loop-confined step resources
	ctx             context.Context
	ready           bool
	stopViewChanges ports.CancelFunc
	stopLocate      ports.CancelFunc
	stopTrack       ports.CancelFunc
	navRetry        ports.Timer
	advance         *scheduler
	action          *automator

	feed feed

	// inHook counts lifecycle hooks currently running on the loop.
	inHook atomic.Int32
}

// NewMachine creates a machine for script over host. The machine is idle until Start.
func NewMachine(script *domain.Script, host ports.Host, opts ...Option) *Machine {
	runs := 0
	m := &Machine{
		script:        script,
		nav:           host.Navigator,
		query:         host.Query,
		viewport:      host.Viewport,
		logger:        logging.NewNop(),
		baseClock:     clock.New(),
		excluded:      make(map[string]bool),
		retryInterval: DefaultRetryInterval,
		autoAdvance:   DefaultAutoAdvance,
		padding:       highlight.DefaultPadding,
		state:         domain.NewTourState(true),
		phase:         domain.PhaseIdle,
		ctx:           context.Background(),
		newRunID: func() string {
			runs++
			return "run-" + strconv.Itoa(runs)
		},
		locatorFactory: func(q ports.ElementQuery, c ports.Clock, retry time.Duration) ports.Locator {
			return locator.NewPolling(q, c, locator.WithInterval(retry))
		},
	}
	for _, opt := range opts {
		opt(m)
	}

	m.logger = m.logger.With("component", "tour")
	m.loop = &dispatcher{onIdle: m.publish}
	m.clock = loopClock{inner: m.baseClock, loop: m.loop}
	m.locator = m.locatorFactory(m.query, m.clock, m.retryInterval)
	m.tracker = highlight.NewTracker(m.viewport, highlight.WithPadding(m.padding), highlight.WithLogger(m.logger))
	m.advance = newScheduler(m.clock)
	m.action = newAutomator(m.clock, m.query)
	return m
}

// Script returns the script the machine walks through.
func (m *Machine) Script() *domain.Script { return m.script }

// Snapshot returns the current read model. It is safe from any goroutine.
func (m *Machine) Snapshot() domain.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := domain.Snapshot{
		RunID:     m.runID,
		Status:    m.state.Status,
		Phase:     m.phase,
		Index:     m.state.CurrentIndex,
		Total:     m.script.Len(),
		Autopilot: m.state.AutopilotEnabled,
		Paused:    m.state.Status == domain.StatusPaused,
		Held:      m.held,
		Epoch:     m.state.Epoch,
	}
	if m.state.Status.Active() {
		if step, ok := m.script.At(m.state.CurrentIndex); ok {
			snap.Step = &step
		}
	}
	if m.geometry != nil {
		g := *m.geometry
		snap.Highlight = &g
	}
	if !m.advanceAt.IsZero() {
		at := m.advanceAt
		snap.AdvanceAt = &at
	}
	return snap
}

// Subscribe registers fn to receive a snapshot after every batch of state
// changes. fn runs outside the event loop and may issue commands.
func (m *Machine) Subscribe(fn func(domain.Snapshot)) ports.CancelFunc {
	return m.feed.add(fn)
}

// Start begins the tour at step 0 and records the durable signal. Starting an
// active tour is a no-op. A signal store failure is returned but the tour still starts.
func (m *Machine) Start(ctx context.Context) error {
	if m.script.Len() == 0 {
		return domain.ErrEmptyScript
	}

	var storeErr error
	if m.store != nil {
		if err := m.store.SetActive(ctx); err != nil {
			storeErr = fmt.Errorf("%w: set active: %w", domain.ErrSignalStore, err)
			m.logger.Warn("failed to record tour signal", "err", err)
		}
	}

	m.exec(func() error {
		m.start(ctx)
		return nil
	})
	return storeErr
}

// Next advances one step. On the last step it ends the tour.
func (m *Machine) Next(ctx context.Context) error {
	return m.exec(func() error {
		if !m.state.Status.Active() {
			return domain.ErrTourNotRunning
		}
		return m.next(ctx, "next")
	})
}

// Previous goes back one step. On the first step it does nothing.
func (m *Machine) Previous(ctx context.Context) error {
	return m.exec(func() error {
		if !m.state.Status.Active() {
			return domain.ErrTourNotRunning
		}
		if m.state.CurrentIndex == 0 {
			return nil
		}
		m.leaveStep("previous")
		m.mutate(func() { m.state.CurrentIndex-- })
		m.enterStep()
		return nil
	})
}

// End stops the tour, releases every resource and clears the durable signal.
// Ending an inactive tour only clears the signal.
func (m *Machine) End(ctx context.Context) error {
	return m.exec(func() error {
		return m.end(ctx, "ended")
	})
}

// Pause stops the auto-advance countdown. Manual navigation keeps working.
func (m *Machine) Pause(ctx context.Context) error {
	return m.exec(func() error {
		switch m.state.Status {
		case domain.StatusPaused:
			return nil
		case domain.StatusRunning:
		default:
			return domain.ErrTourNotRunning
		}
		m.mutate(func() { m.state.Status = domain.StatusPaused })
		m.cancelAdvance()
		m.logger.Debug("tour paused", "index", m.state.CurrentIndex)
		return nil
	})
}

// Resume re-enables auto-advance with a fresh full-duration countdown.
func (m *Machine) Resume(ctx context.Context) error {
	return m.exec(func() error {
		switch m.state.Status {
		case domain.StatusRunning:
			return nil
		case domain.StatusPaused:
		default:
			return domain.ErrTourNotRunning
		}
		m.mutate(func() { m.state.Status = domain.StatusRunning })
		m.armAdvance()
		m.logger.Debug("tour resumed", "index", m.state.CurrentIndex)
		return nil
	})
}

// Hold signals a transient pause (e.g. the pointer rests on the tour card).
// It is independent from Pause.
func (m *Machine) Hold(ctx context.Context) error {
	return m.exec(func() error {
		if !m.state.Status.Active() {
			return domain.ErrTourNotRunning
		}
		if m.held {
			return nil
		}
		m.mutate(func() { m.held = true })
		m.cancelAdvance()
		return nil
	})
}

// Release clears a transient pause and arms a fresh countdown when applicable.
func (m *Machine) Release(ctx context.Context) error {
	return m.exec(func() error {
		if !m.held {
			return nil
		}
		m.mutate(func() { m.held = false })
		m.armAdvance()
		return nil
	})
}

// ToggleAutopilot flips the autopilot preference.
func (m *Machine) ToggleAutopilot(ctx context.Context) error {
	return m.exec(func() error {
		m.mutate(func() { m.state.AutopilotEnabled = !m.state.AutopilotEnabled })
		if m.state.AutopilotEnabled {
			m.armAdvance()
		} else {
			m.cancelAdvance()
		}
		m.logger.Debug("autopilot toggled", "enabled", m.state.AutopilotEnabled)
		return nil
	})
}

// exec runs fn on the loop and returns its error. When another goroutine is
// draining the loop the caller waits for fn to run. Commands issued from a
// lifecycle hook cannot wait for the item they run in: they are queued behind
// it and a failure is logged.
func (m *Machine) exec(fn func() error) error {
	fromHook := m.inHook.Load() > 0
	var err error
	done := make(chan struct{})
	drained := m.loop.do(func() {
		defer close(done)
		err = fn()
		if err != nil && fromHook {
			m.logger.Warn("command issued from hook failed", "err", err)
		}
	})
	switch {
	case drained:
		return err
	case fromHook:
		return nil
	}
	<-done
	return err
}

func (m *Machine) start(ctx context.Context) {
	if m.state.Status.Active() {
		return
	}

	m.ctx = context.WithoutCancel(ctx)
	runID := m.newRunID()
	m.mutate(func() {
		m.state.Status = domain.StatusRunning
		m.state.CurrentIndex = 0
		m.state.Epoch++
		m.held = false
		m.runID = runID
	})

	m.stopViewChanges = m.nav.OnViewChange(func(view string) {
		m.loop.do(func() {
			if m.runID != runID || !m.state.Status.Active() {
				return
			}
			m.viewChanged(view)
		})
	})

	m.logger.Info("tour started", "script", m.script.ID, "run_id", runID, "steps", m.script.Len())
	if m.hooks.OnTourStart != nil {
		ev := m.tourEvent(domain.EventTourStart, "")
		m.runHook(func() { m.hooks.OnTourStart(m.ctx, ev) })
	}
	m.enterStep()
}

func (m *Machine) next(ctx context.Context, reason string) error {
	if m.state.CurrentIndex >= m.script.Len()-1 {
		return m.end(ctx, "completed")
	}
	m.leaveStep(reason)
	m.mutate(func() { m.state.CurrentIndex++ })
	m.enterStep()
	return nil
}

// end tears the tour down and clears the durable signal. The signal is
// cleared even when no tour is active: it may have been set while the tour
// could not read it.
func (m *Machine) end(ctx context.Context, reason string) error {
	if !m.state.Status.Active() {
		return m.clearSignal(ctx)
	}

	m.leaveStep(reason)
	if m.stopViewChanges != nil {
		m.stopViewChanges()
		m.stopViewChanges = nil
	}

	index := m.state.CurrentIndex
	m.mutate(func() {
		m.state.Status = domain.StatusEnded
		m.state.CurrentIndex = 0
		m.phase = domain.PhaseIdle
		m.geometry = nil
		m.held = false
	})

	err := m.clearSignal(ctx)

	m.logger.Info("tour ended", "reason", reason, "index", index)
	if m.hooks.OnTourEnd != nil {
		ev := m.tourEvent(domain.EventTourEnd, reason)
		ev.Index = index
		m.runHook(func() { m.hooks.OnTourEnd(m.ctx, ev) })
	}
	return err
}

func (m *Machine) clearSignal(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("failed to clear tour signal", "err", err)
		return fmt.Errorf("%w: clear: %w", domain.ErrSignalStore, err)
	}
	return nil
}

// enterStep starts working on the current step.
func (m *Machine) enterStep() {
	step := m.currentStep()
	m.logger.Debug("entering step", "index", m.state.CurrentIndex, "step", step.ID, "view", step.TargetView)
	m.emitStep(m.hooks.OnStepEnter, domain.EventStepEnter, "")
	m.syncView(m.nav.CurrentView())
}

// leaveStep invalidates every in-flight callback of the current step and
// releases its resources. Nothing for the next step exists yet.
func (m *Machine) leaveStep(reason string) {
	m.resetStep()
	m.emitStep(m.hooks.OnStepLeave, domain.EventStepLeave, reason)
}

func (m *Machine) resetStep() {
	m.mutate(func() {
		m.state.Epoch++
		m.phase = domain.PhaseIdle
		m.geometry = nil
	})
	m.teardown()
}

func (m *Machine) teardown() {
	m.ready = false
	if m.stopLocate != nil {
		m.stopLocate()
		m.stopLocate = nil
	}
	if m.stopTrack != nil {
		m.stopTrack()
		m.stopTrack = nil
	}
	m.action.cancel()
	m.cancelAdvance()
	if m.navRetry != nil {
		m.navRetry.Stop()
		m.navRetry = nil
	}
}

// syncView decides what the current step waits on given the active view.
func (m *Machine) syncView(view string) {
	step := m.currentStep()
	switch {
	case view == step.TargetView:
		m.setPhase(domain.PhaseLocating)
		m.beginLocate(step)
	case m.excluded[view]:
		m.setPhase(domain.PhaseSuppressed)
		m.logger.Debug("highlight suppressed on excluded view", "view", view)
	default:
		m.setPhase(domain.PhaseNavigating)
		m.requestNavigation(step.TargetView)
	}
}

func (m *Machine) viewChanged(view string) {
	step := m.currentStep()
	if view == step.TargetView && (m.phase == domain.PhaseLocating || m.phase == domain.PhaseHighlighted) {
		return
	}
	if m.phase == domain.PhaseSuppressed && m.excluded[view] {
		return
	}
	m.logger.Debug("view changed", "view", view, "step", step.ID)
	m.resetStep()
	m.syncView(view)
}

func (m *Machine) requestNavigation(view string) {
	epoch := m.state.Epoch
	err := m.nav.NavigateTo(m.ctx, view)
	if err == nil {
		return
	}
	m.logger.Warn("navigation rejected, retrying", "view", view, "err", err, "retry_in", m.retryInterval)
	m.navRetry = m.clock.AfterFunc(m.retryInterval, m.guard(epoch, func() {
		m.navRetry = nil
		if m.phase != domain.PhaseNavigating {
			return
		}
		m.syncView(m.nav.CurrentView())
	}))
}

func (m *Machine) beginLocate(step domain.Step) {
	epoch := m.state.Epoch
	m.stopLocate = m.locator.Locate(step.TargetSelector, func(el ports.Element) {
		m.post(epoch, func() {
			m.stopLocate = nil
			m.attach(el)
		})
	})
}

// attach highlights the resolved element and arms the step's timers.
func (m *Machine) attach(el ports.Element) {
	step := m.currentStep()
	epoch := m.state.Epoch

	if err := el.ScrollIntoView(); err != nil {
		m.logger.Debug("scroll into view failed", "selector", step.TargetSelector, "err", err)
	}
	m.setPhase(domain.PhaseHighlighted)
	m.stopTrack = m.tracker.Track(el, func(g *domain.Geometry) {
		m.post(epoch, func() {
			m.mutate(func() { m.geometry = g })
		})
	})
	m.emitStep(m.hooks.OnHighlight, domain.EventHighlight, "")

	if step.HasAction() {
		m.action.schedule(step.SecondaryActionSelector, step.EffectiveActionDelay(), func(out actionOutcome) {
			m.guard(epoch, func() { m.actionDone(step, out) })()
		})
	}

	m.ready = true
	m.armAdvance()
}

func (m *Machine) actionDone(step domain.Step, out actionOutcome) {
	if out.Fired {
		m.logger.Debug("automated action fired", "selector", step.SecondaryActionSelector)
		m.emitStep(m.hooks.OnActionFired, domain.EventActionFired, "")
		return
	}
	m.logger.Info("automated action skipped", "step", step.ID, "selector", step.SecondaryActionSelector, "reason", out.Reason)
	m.emitStep(m.hooks.OnActionSkipped, domain.EventActionSkipped, out.Reason)
}

// armAdvance starts the countdown when the step is highlighted, autopilot is
// on, the tour is running and no hold is active.
func (m *Machine) armAdvance() {
	if !m.ready || !m.state.AutopilotEnabled || m.state.Status != domain.StatusRunning || m.held {
		return
	}
	epoch := m.state.Epoch
	at := m.advance.arm(m.autoAdvance, m.guard(epoch, func() {
		m.mutate(func() { m.advanceAt = time.Time{} })
		m.emitStep(m.hooks.OnAutoAdvance, domain.EventAutoAdvance, "")
		if err := m.next(m.ctx, "auto_advance"); err != nil {
			m.logger.Warn("auto-advance failed", "err", err)
		}
	}))
	m.mutate(func() { m.advanceAt = at })
}

func (m *Machine) cancelAdvance() {
	if m.advance.cancel() {
		m.mutate(func() { m.advanceAt = time.Time{} })
	}
}

// guard wraps fn so it only runs while epoch is current.
func (m *Machine) guard(epoch uint64, fn func()) func() {
	return func() {
		if m.state.Epoch != epoch || !m.state.Status.Active() {
			return
		}
		fn()
	}
}

// post delivers a host callback to the loop, guarded by epoch.
func (m *Machine) post(epoch uint64, fn func()) {
	m.loop.do(m.guard(epoch, fn))
}

func (m *Machine) currentStep() domain.Step {
	step, _ := m.script.At(m.state.CurrentIndex)
	return step
}

func (m *Machine) setPhase(p domain.Phase) {
	m.mutate(func() { m.phase = p })
}

func (m *Machine) mutate(fn func()) {
	m.mu.Lock()
	fn()
	m.version++
	m.mu.Unlock()
}

func (m *Machine) stepEvent(t domain.EventType, reason string) *domain.StepEvent {
	step := m.currentStep()
	return &domain.StepEvent{
		EventBase: domain.EventBase{
			Timestamp: m.clock.Now(),
			Type:      t,
			RunID:     m.runID,
			Epoch:     m.state.Epoch,
		},
		Index:    m.state.CurrentIndex,
		StepID:   step.ID,
		View:     step.TargetView,
		Selector: step.TargetSelector,
		Reason:   reason,
	}
}

func (m *Machine) emitStep(hook func(context.Context, *domain.StepEvent), t domain.EventType, reason string) {
	if hook == nil {
		return
	}
	ev := m.stepEvent(t, reason)
	m.runHook(func() { hook(m.ctx, ev) })
}

func (m *Machine) runHook(fn func()) {
	m.inHook.Add(1)
	defer m.inHook.Add(-1)
	fn()
}

func (m *Machine) tourEvent(t domain.EventType, reason string) *domain.TourEvent {
	return &domain.TourEvent{
		EventBase: domain.EventBase{
			Timestamp: m.clock.Now(),
			Type:      t,
			RunID:     m.runID,
			Epoch:     m.state.Epoch,
		},
		ScriptID: m.script.ID,
		Index:    m.state.CurrentIndex,
		Reason:   reason,
	}
}

// publish delivers the latest snapshot to subscribers once per batch of changes.
func (m *Machine) publish() {
	m.feed.publish(func() uint64 {
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.version
	}, m.Snapshot)
}

var _ ports.TourController = (*Machine)(nil)
