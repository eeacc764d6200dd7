package domain

import "time"

// Status is the lifecycle status of a tour.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusRunning    Status = "running"
	StatusPaused     Status = "paused"
	StatusEnded      Status = "ended"
)

// Active reports whether the tour currently owns a step.
func (s Status) Active() bool {
	return s == StatusRunning || s == StatusPaused
}

// Phase reports what the current step is waiting on.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseNavigating  Phase = "navigating"  // waiting for the host to show the target view
	PhaseLocating    Phase = "locating"    // target view active, element not resolved yet
	PhaseHighlighted Phase = "highlighted" // element resolved and tracked
	PhaseSuppressed  Phase = "suppressed"  // user is on an excluded view
)

// TourState is the mutable state owned by the state machine.
type TourState struct {
	Status           Status `json:"status"`
	CurrentIndex     int    `json:"current_index"`
	AutopilotEnabled bool   `json:"autopilot_enabled"`

	// Epoch increases on every step transition. Asynchronous work captures it
	// and becomes a no-op once it no longer matches.
	Epoch uint64 `json:"epoch"`
}

// NewTourState returns the state of a tour that has not started yet.
func NewTourState(autopilot bool) TourState {
	return TourState{
		Status:           StatusNotStarted,
		AutopilotEnabled: autopilot,
	}
}

// Snapshot is the read model exposed to presentation layers.
type Snapshot struct {
	RunID     string    `json:"run_id,omitempty"`
	Status    Status    `json:"status"`
	Phase     Phase     `json:"phase"`
	Index     int       `json:"index"`
	Total     int       `json:"total"`
	Step      *Step     `json:"step,omitempty"`
	Autopilot bool      `json:"autopilot"`
	Paused    bool      `json:"paused"`
	Held      bool      `json:"held"`
	Epoch     uint64    `json:"epoch"`
	Highlight *Geometry `json:"highlight,omitempty"`
	// AdvanceAt is when the auto-advance countdown fires, if one is running.
	AdvanceAt *time.Time `json:"advance_at,omitempty"`
}

// IsFirst reports whether the snapshot points at the first step.
func (s Snapshot) IsFirst() bool { return s.Index == 0 }

// IsLast reports whether the snapshot points at the last step.
func (s Snapshot) IsLast() bool { return s.Total > 0 && s.Index == s.Total-1 }
