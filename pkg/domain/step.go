package domain

import "time"

// DefaultActionDelay is the settle delay used when a step declares a secondary
// action selector without an explicit delay.
const DefaultActionDelay = 1000 * time.Millisecond

// Step is one scripted unit of a tour. Steps are immutable once authored; their
// position in the Script is their identity at runtime.
type Step struct {
	ID             string `json:"id"`
	TargetView     string `json:"target_view"`
	TargetSelector string `json:"target_selector"`

	// SecondaryActionSelector names an element whose default activation is
	// triggered once, ActionDelay after the highlight attaches.
	SecondaryActionSelector string        `json:"secondary_action_selector,omitempty"`
	ActionDelay             time.Duration `json:"action_delay,omitempty"`

	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	IsTerminal  bool   `json:"is_terminal,omitempty"`
}

// HasAction reports whether the step declares an automated secondary action.
func (s Step) HasAction() bool {
	return s.SecondaryActionSelector != ""
}

// EffectiveActionDelay returns the settle delay to wait before the automated action.
func (s Step) EffectiveActionDelay() time.Duration {
	if s.ActionDelay > 0 {
		return s.ActionDelay
	}
	return DefaultActionDelay
}

// Script is the ordered list of steps a tour walks through.
type Script struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Steps []Step `json:"steps"`
}

// Len returns the number of steps.
func (s *Script) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Steps)
}

// At returns the step at index i and whether it exists.
func (s *Script) At(i int) (Step, bool) {
	if s == nil || i < 0 || i >= len(s.Steps) {
		return Step{}, false
	}
	return s.Steps[i], true
}

// Views returns the distinct target views in script order.
func (s *Script) Views() []string {
	seen := make(map[string]bool)
	var views []string
	for _, st := range s.Steps {
		if !seen[st.TargetView] {
			seen[st.TargetView] = true
			views = append(views, st.TargetView)
		}
	}
	return views
}
