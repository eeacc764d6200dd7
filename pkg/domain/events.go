package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTourStart     EventType = "tour_start"
	EventTourEnd       EventType = "tour_end"
	EventStepEnter     EventType = "step_enter"
	EventStepLeave     EventType = "step_leave"
	EventHighlight     EventType = "highlight"
	EventActionFired   EventType = "action_fired"
	EventActionSkipped EventType = "action_skipped"
	EventAutoAdvance   EventType = "auto_advance"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
	Epoch     uint64    `json:"epoch"`
}

// StepEvent describes something that happened to a step.
type StepEvent struct {
	EventBase
	Index    int    `json:"index"`
	StepID   string `json:"step_id"`
	View     string `json:"view"`
	Selector string `json:"selector,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// TourEvent describes a tour starting or ending.
type TourEvent struct {
	EventBase
	ScriptID string `json:"script_id"`
	Index    int    `json:"index"`
	Reason   string `json:"reason,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run on the engine's event loop and must not block.
type LifecycleHooks struct {
	OnTourStart     func(context.Context, *TourEvent)
	OnTourEnd       func(context.Context, *TourEvent)
	OnStepEnter     func(context.Context, *StepEvent)
	OnStepLeave     func(context.Context, *StepEvent)
	OnHighlight     func(context.Context, *StepEvent)
	OnActionFired   func(context.Context, *StepEvent)
	OnActionSkipped func(context.Context, *StepEvent)
	OnAutoAdvance   func(context.Context, *StepEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTourStart:     chainTour(h.OnTourStart, other.OnTourStart),
		OnTourEnd:       chainTour(h.OnTourEnd, other.OnTourEnd),
		OnStepEnter:     chainStep(h.OnStepEnter, other.OnStepEnter),
		OnStepLeave:     chainStep(h.OnStepLeave, other.OnStepLeave),
		OnHighlight:     chainStep(h.OnHighlight, other.OnHighlight),
		OnActionFired:   chainStep(h.OnActionFired, other.OnActionFired),
		OnActionSkipped: chainStep(h.OnActionSkipped, other.OnActionSkipped),
		OnAutoAdvance:   chainStep(h.OnAutoAdvance, other.OnAutoAdvance),
	}
}

func chainTour(a, b func(context.Context, *TourEvent)) func(context.Context, *TourEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *TourEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainStep(a, b func(context.Context, *StepEvent)) func(context.Context, *StepEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *StepEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
