package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/guidepost/pkg/domain"
)

// AuditHooks logs every lifecycle event on logger. Step movement is logged at
// Info, highlight and timer details at Debug.
func AuditHooks(logger *slog.Logger) domain.LifecycleHooks {
	logger = logger.With("component", "audit")
	step := func(level slog.Level, msg string) func(context.Context, *domain.StepEvent) {
		return func(ctx context.Context, e *domain.StepEvent) {
			attrs := []any{"run_id", e.RunID, "index", e.Index, "step_id", e.StepID, "view", e.View, "epoch", e.Epoch}
			if e.Selector != "" {
				attrs = append(attrs, "selector", e.Selector)
			}
			if e.Reason != "" {
				attrs = append(attrs, "reason", e.Reason)
			}
			logger.Log(ctx, level, msg, attrs...)
		}
	}

	return domain.LifecycleHooks{
		OnTourStart: func(ctx context.Context, e *domain.TourEvent) {
			logger.InfoContext(ctx, "tour_start", "run_id", e.RunID, "script", e.ScriptID)
		},
		OnTourEnd: func(ctx context.Context, e *domain.TourEvent) {
			logger.InfoContext(ctx, "tour_end", "run_id", e.RunID, "script", e.ScriptID, "index", e.Index, "reason", e.Reason)
		},
		OnStepEnter:     step(slog.LevelInfo, "step_enter"),
		OnStepLeave:     step(slog.LevelDebug, "step_leave"),
		OnHighlight:     step(slog.LevelDebug, "highlight"),
		OnActionFired:   step(slog.LevelInfo, "action_fired"),
		OnActionSkipped: step(slog.LevelInfo, "action_skipped"),
		OnAutoAdvance:   step(slog.LevelDebug, "auto_advance"),
	}
}
