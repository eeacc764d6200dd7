package guidepost_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/guidepost"
	"github.com/aretw0/guidepost/internal/testutils"
	"github.com/aretw0/guidepost/pkg/adapters/memory"
	"github.com/aretw0/guidepost/pkg/clock"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/dsl"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var box = domain.Rect{X: 40, Y: 60, Width: 200, Height: 80}

func demoScript() *domain.Script {
	b := dsl.New("demo")
	b.Add("score").On("overview").Target("#score").Text("Score", "Overall compliance.")
	b.Add("inventory").On("models").Target("#inventory").Text("Inventory", "Every registered model.")
	b.Add("export").On("reports").Target("#export").Text("Export", "Download the audit pack.")
	return b.MustBuild()
}

func demoHost() *testutils.Host {
	h := testutils.NewHost("overview", "overview", "models", "reports")
	h.AutoNavigate(true)
	h.Add("overview", "#score", box)
	h.Add("models", "#inventory", box)
	h.Add("reports", "#export", box)
	return h
}

func hostPorts(h *testutils.Host) ports.Host {
	return ports.Host{Navigator: h, Query: h, Viewport: h}
}

type failingStore struct{ memory.Store }

func (failingStore) Active(context.Context) (bool, error) { return false, errors.New("backend down") }

func TestNew_Validation(t *testing.T) {
	ctx := context.Background()
	h := demoHost()

	t.Run("missing ports", func(t *testing.T) {
		_, err := guidepost.New(ctx, demoScript(), ports.Host{Navigator: h})
		assert.Error(t, err)
	})

	t.Run("empty script", func(t *testing.T) {
		_, err := guidepost.New(ctx, &domain.Script{ID: "empty"}, hostPorts(h))
		assert.ErrorIs(t, err, domain.ErrEmptyScript)
	})

	t.Run("unknown view", func(t *testing.T) {
		script := demoScript()
		script.Steps[1].TargetView = "billing"
		_, err := guidepost.New(ctx, script, hostPorts(h))
		assert.ErrorIs(t, err, domain.ErrUnknownView)
	})

	t.Run("catalog check disabled", func(t *testing.T) {
		script := demoScript()
		script.Steps[1].TargetView = "billing"
		_, err := guidepost.New(ctx, script, hostPorts(h), guidepost.WithoutCatalogCheck())
		assert.NoError(t, err)
	})

	t.Run("invalid step", func(t *testing.T) {
		script := demoScript()
		script.Steps[0].TargetSelector = ""
		_, err := guidepost.New(ctx, script, hostPorts(h))
		assert.ErrorIs(t, err, domain.ErrInvalidStep)
	})
}

func TestNew_ResumesFromDurableSignal(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.SetActive(ctx))

	tour, err := guidepost.New(ctx, demoScript(), hostPorts(demoHost()),
		guidepost.WithSignalStore(store),
		guidepost.WithClock(clock.NewManual(time.Now())),
	)
	require.NoError(t, err)

	snap := tour.Snapshot()
	assert.Equal(t, domain.StatusRunning, snap.Status)
	assert.Equal(t, domain.PhaseHighlighted, snap.Phase)
	assert.NotEmpty(t, snap.RunID)
}

func TestNew_IdleWithoutSignal(t *testing.T) {
	ctx := context.Background()
	tour, err := guidepost.New(ctx, demoScript(), hostPorts(demoHost()),
		guidepost.WithSignalStore(memory.NewStore()),
		guidepost.WithClock(clock.NewManual(time.Now())),
	)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, tour.Snapshot().Status)
}

func TestNew_StoreReadFailureIsNotFatal(t *testing.T) {
	tour, err := guidepost.New(context.Background(), demoScript(), hostPorts(demoHost()),
		guidepost.WithSignalStore(&failingStore{}),
		guidepost.WithClock(clock.NewManual(time.Now())),
	)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, tour.Snapshot().Status)
}

// unreadableOnceStore fails its first read and then behaves like a memory store.
type unreadableOnceStore struct {
	memory.Store
	failed bool
}

func (s *unreadableOnceStore) Active(ctx context.Context) (bool, error) {
	if !s.failed {
		s.failed = true
		return false, errors.New("backend down")
	}
	return s.Store.Active(ctx)
}

func TestTour_EndClearsSignalMissedAtNew(t *testing.T) {
	ctx := context.Background()
	store := &unreadableOnceStore{}
	require.NoError(t, store.SetActive(ctx))

	tour, err := guidepost.New(ctx, demoScript(), hostPorts(demoHost()),
		guidepost.WithSignalStore(store),
		guidepost.WithClock(clock.NewManual(time.Now())),
	)
	require.NoError(t, err)
	require.Equal(t, domain.StatusNotStarted, tour.Snapshot().Status)

	require.NoError(t, tour.End(ctx))

	active, err := store.Active(ctx)
	require.NoError(t, err)
	assert.False(t, active, "the next load must not resume the tour")
}

func TestTour_CommandsAndSignal(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	clk := clock.NewManual(time.Now())

	var mu sync.Mutex
	var entered []string
	hooks := domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			mu.Lock()
			defer mu.Unlock()
			entered = append(entered, e.StepID)
		},
	}

	tour, err := guidepost.New(ctx, demoScript(), hostPorts(demoHost()),
		guidepost.WithSignalStore(store),
		guidepost.WithClock(clk),
		guidepost.WithAutopilot(false),
		guidepost.WithLifecycleHooks(hooks),
	)
	require.NoError(t, err)

	require.NoError(t, tour.Start(ctx))
	active, _ := store.Active(ctx)
	assert.True(t, active)

	require.NoError(t, tour.Next(ctx))
	assert.Equal(t, 1, tour.Snapshot().Index)
	require.NoError(t, tour.Previous(ctx))
	assert.Equal(t, 0, tour.Snapshot().Index)

	require.NoError(t, tour.ToggleAutopilot(ctx))
	assert.True(t, tour.Snapshot().Autopilot)
	clk.Advance(guidepostAutoAdvance)
	assert.Equal(t, 1, tour.Snapshot().Index)

	require.NoError(t, tour.End(ctx))
	assert.Equal(t, domain.StatusEnded, tour.Snapshot().Status)
	active, _ = store.Active(ctx)
	assert.False(t, active)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"score", "inventory", "score", "inventory"}, entered)

	assert.ErrorIs(t, tour.Next(ctx), domain.ErrTourNotRunning)
}

const guidepostAutoAdvance = 8 * time.Second

func TestTour_Subscribe(t *testing.T) {
	ctx := context.Background()
	tour, err := guidepost.New(ctx, demoScript(), hostPorts(demoHost()),
		guidepost.WithClock(clock.NewManual(time.Now())),
		guidepost.WithAutopilot(false),
	)
	require.NoError(t, err)

	var mu sync.Mutex
	var statuses []domain.Status
	cancel := tour.Subscribe(func(s domain.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, s.Status)
	})
	require.NoError(t, tour.Start(ctx))
	cancel()
	require.NoError(t, tour.End(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, statuses)
	assert.Equal(t, domain.StatusRunning, statuses[len(statuses)-1])
}

func TestTour_Listen(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tour, err := guidepost.New(ctx, demoScript(), hostPorts(demoHost()),
		guidepost.WithClock(clock.NewManual(time.Now())),
	)
	require.NoError(t, err)

	beacon := guidepost.NewBeacon()
	errCh := make(chan error, 1)
	go func() { errCh <- tour.Listen(ctx, beacon) }()

	beacon.Emit()
	beacon.Emit() // coalesced

	assert.Eventually(t, func() bool {
		return tour.Snapshot().Status == domain.StatusRunning
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}

func TestBeacon_EmitNeverBlocks(t *testing.T) {
	b := guidepost.NewBeacon()
	for i := 0; i < 10; i++ {
		b.Emit()
	}
	assert.Len(t, b.C(), 1)
}
