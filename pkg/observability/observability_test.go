package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/guidepost"
	"github.com/aretw0/guidepost/internal/testutils"
	"github.com/aretw0/guidepost/pkg/clock"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/dsl"
	"github.com/aretw0/guidepost/pkg/observability"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	h := m.Hooks()
	ctx := context.Background()

	step := func(id string, at time.Duration) *domain.StepEvent {
		return &domain.StepEvent{EventBase: domain.EventBase{RunID: "run-1", Timestamp: t0.Add(at)}, StepID: id}
	}

	h.OnTourStart(ctx, &domain.TourEvent{EventBase: domain.EventBase{RunID: "run-1"}})
	h.OnStepEnter(ctx, step("welcome", 0))
	h.OnHighlight(ctx, step("welcome", 0))
	h.OnActionFired(ctx, step("welcome", time.Second))
	h.OnAutoAdvance(ctx, step("welcome", 3*time.Second))
	h.OnStepLeave(ctx, step("welcome", 3*time.Second))
	h.OnStepEnter(ctx, step("alerts", 3*time.Second))
	h.OnActionSkipped(ctx, step("alerts", 4*time.Second))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToursActive()))

	h.OnStepLeave(ctx, step("alerts", 5*time.Second))
	h.OnTourEnd(ctx, &domain.TourEvent{EventBase: domain.EventBase{RunID: "run-1"}, Reason: "completed"})

	expected := `
# HELP guidepost_actions_total Automated secondary actions, by outcome
# TYPE guidepost_actions_total counter
guidepost_actions_total{outcome="fired",step_id="welcome"} 1
guidepost_actions_total{outcome="skipped",step_id="alerts"} 1
# HELP guidepost_tours_ended_total Total number of tours ended, by reason
# TYPE guidepost_tours_ended_total counter
guidepost_tours_ended_total{reason="completed"} 1
# HELP guidepost_step_enters_total Total number of step entries
# TYPE guidepost_step_enters_total counter
guidepost_step_enters_total{step_id="alerts"} 1
guidepost_step_enters_total{step_id="welcome"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"guidepost_actions_total", "guidepost_tours_ended_total", "guidepost_step_enters_total"))

	assert.Equal(t, 0.0, testutil.ToFloat64(m.ToursActive()))
	assert.Equal(t, 2, testutil.CollectAndCount(m.StepDurations()))
}

func TestMetrics_WithTour(t *testing.T) {
	b := dsl.New("demo")
	b.Add("a").On("overview").Target("#a").Text("A", "")
	b.Add("b").On("overview").Target("#b").Text("B", "")

	host := testutils.NewHost("overview", "overview")
	host.AutoNavigate(true)
	host.Add("overview", "#a", domain.Rect{Width: 10, Height: 10})
	host.Add("overview", "#b", domain.Rect{Width: 10, Height: 10})

	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	clk := clock.NewManual(t0)
	ctx := context.Background()
	tour, err := guidepost.New(ctx, b.MustBuild(), ports.Host{Navigator: host, Query: host, Viewport: host},
		guidepost.WithClock(clk),
		guidepost.WithAutoAdvance(2*time.Second),
		guidepost.WithLifecycleHooks(m.Hooks()),
		guidepost.WithLifecycleHooks(observability.AuditHooks(logger)),
	)
	require.NoError(t, err)

	require.NoError(t, tour.Start(ctx))
	clk.Advance(2 * time.Second) // auto-advance to b
	clk.Advance(2 * time.Second) // completes

	assert.Equal(t, domain.StatusEnded, tour.Snapshot().Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToursStarted()))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ToursActive()))

	out := logs.String()
	assert.Contains(t, out, "msg=tour_start")
	assert.Contains(t, out, "msg=step_enter")
	assert.Contains(t, out, "step_id=b")
	assert.Contains(t, out, "msg=auto_advance")
	assert.Contains(t, out, "reason=completed")
	assert.Contains(t, out, "component=audit")
}
