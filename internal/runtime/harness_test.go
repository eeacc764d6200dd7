package runtime_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/guidepost/internal/runtime"
	"github.com/aretw0/guidepost/internal/testutils"
	"github.com/aretw0/guidepost/pkg/adapters/memory"
	"github.com/aretw0/guidepost/pkg/clock"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

var box = domain.Rect{X: 10, Y: 20, Width: 100, Height: 30}

// harness drives a machine over the fake host with a manual clock.
type harness struct {
	t     *testing.T
	host  *testutils.Host
	clock *clock.Manual
	store *memory.Store
	m     *runtime.Machine

	mu     sync.Mutex
	events []string
}

func newHarness(t *testing.T, steps []domain.Step, view string, opts ...runtime.Option) *harness {
	t.Helper()

	h := &harness{
		t:     t,
		host:  testutils.NewHost(view, "overview", "models", "reports", "landing"),
		clock: clock.NewManual(t0),
		store: memory.NewStore(),
	}
	return h.build(steps, h.clock, opts...)
}

func (h *harness) build(steps []domain.Step, clk ports.Clock, opts ...runtime.Option) *harness {
	hooks := domain.LifecycleHooks{
		OnTourStart:     func(_ context.Context, e *domain.TourEvent) { h.record("start") },
		OnTourEnd:       func(_ context.Context, e *domain.TourEvent) { h.record("end:" + e.Reason) },
		OnStepEnter:     func(_ context.Context, e *domain.StepEvent) { h.record("enter:" + e.StepID) },
		OnStepLeave:     func(_ context.Context, e *domain.StepEvent) { h.record("leave:" + e.StepID) },
		OnHighlight:     func(_ context.Context, e *domain.StepEvent) { h.record("highlight:" + e.StepID) },
		OnActionFired:   func(_ context.Context, e *domain.StepEvent) { h.record("action:" + e.StepID) },
		OnActionSkipped: func(_ context.Context, e *domain.StepEvent) { h.record("skipped:" + e.StepID) },
		OnAutoAdvance:   func(_ context.Context, e *domain.StepEvent) { h.record("auto:" + e.StepID) },
	}

	base := []runtime.Option{
		runtime.WithClock(clk),
		runtime.WithSignalStore(h.store),
		runtime.WithLifecycleHooks(hooks),
	}
	script := &domain.Script{ID: "test", Steps: steps}
	host := ports.Host{Navigator: h.host, Query: h.host, Viewport: h.host}
	h.m = runtime.NewMachine(script, host, append(base, opts...)...)
	return h
}

func (h *harness) record(ev string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}

func (h *harness) Events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.events...)
}

// at moves the clock to t0 + ms.
func (h *harness) at(ms int) {
	h.t.Helper()
	target := t0.Add(time.Duration(ms) * time.Millisecond)
	d := target.Sub(h.clock.Now())
	if d < 0 {
		h.t.Fatalf("clock is already past %dms", ms)
	}
	h.clock.Advance(d)
}

func (h *harness) start() {
	h.t.Helper()
	if err := h.m.Start(context.Background()); err != nil {
		h.t.Fatalf("Start failed: %v", err)
	}
}

func step(id, view, selector string) domain.Step {
	return domain.Step{
		ID:             id,
		TargetView:     view,
		TargetSelector: selector,
		Title:          fmt.Sprintf("Step %s", id),
	}
}

// recordingClock remembers every callback ever scheduled so tests can fire
// them after the fact.
type recordingClock struct {
	*clock.Manual

	mu  sync.Mutex
	fns []func()
}

func (c *recordingClock) AfterFunc(d time.Duration, fn func()) ports.Timer {
	c.mu.Lock()
	c.fns = append(c.fns, fn)
	c.mu.Unlock()
	return c.Manual.AfterFunc(d, fn)
}

func (c *recordingClock) fireAll() int {
	c.mu.Lock()
	fns := append([]func(){}, c.fns...)
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// capturingLocator hands resolution callbacks to the test and ignores cancellation.
type capturingLocator struct {
	mu    sync.Mutex
	found []func(ports.Element)
}

func (l *capturingLocator) Locate(selector string, found func(ports.Element)) ports.CancelFunc {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.found = append(l.found, found)
	return func() {}
}

func (l *capturingLocator) callback(i int) func(ports.Element) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.found[i]
}
