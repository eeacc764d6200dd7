package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/guidepost/pkg/domain"
)

// StepCard renders the tour card for a snapshot as markdown.
func StepCard(s domain.Snapshot) string {
	var sb strings.Builder
	switch {
	case s.Status == domain.StatusEnded:
		sb.WriteString("## Tour finished\n\nThanks for taking the tour.\n")
		return sb.String()
	case s.Step == nil:
		sb.WriteString("## Tour not started\n")
		return sb.String()
	}

	st := s.Step
	if st.Category != "" {
		fmt.Fprintf(&sb, "_%s_\n\n", st.Category)
	}
	fmt.Fprintf(&sb, "## %s\n\n", st.Title)
	if st.Description != "" {
		sb.WriteString(st.Description)
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "**Step %d of %d** · view `%s` · %s\n", s.Index+1, s.Total, st.TargetView, StatusLine(s))
	return sb.String()
}

// StatusLine summarises the control state shown under a card.
func StatusLine(s domain.Snapshot) string {
	var parts []string
	switch s.Phase {
	case domain.PhaseNavigating:
		parts = append(parts, "navigating")
	case domain.PhaseLocating:
		parts = append(parts, "waiting for element")
	case domain.PhaseSuppressed:
		parts = append(parts, "highlight hidden")
	}
	switch {
	case s.Paused:
		parts = append(parts, "paused")
	case s.Held:
		parts = append(parts, "held")
	case s.Autopilot && s.AdvanceAt != nil:
		parts = append(parts, "autopilot on, next at "+s.AdvanceAt.Format("15:04:05"))
	case s.Autopilot:
		parts = append(parts, "autopilot on")
	default:
		parts = append(parts, "autopilot off")
	}
	return strings.Join(parts, ", ")
}

// Help lists the commands the terminal runner accepts.
const Help = "commands: [enter]/n next · p previous · pause · resume · a autopilot · hold · release · q quit"
