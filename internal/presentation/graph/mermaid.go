package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/guidepost/pkg/domain"
)

// Overlay carries tour state to paint on top of the script graph.
type Overlay struct {
	VisitedSteps []string
	CurrentStep  string
}

// OverlayFromSnapshot marks every step before the current one as visited.
func OverlayFromSnapshot(script *domain.Script, s domain.Snapshot) *Overlay {
	if !s.Status.Active() || s.Step == nil {
		return nil
	}
	o := &Overlay{CurrentStep: s.Step.ID}
	for i := 0; i < s.Index && i < script.Len(); i++ {
		o.VisitedSteps = append(o.VisitedSteps, script.Steps[i].ID)
	}
	return o
}

// GenerateMermaid renders the script as a Mermaid flowchart.
// Steps are grouped into one subgraph per view, in script order:
// - Step with an automated action: [[Subroutine]]
// - Terminal step: ((Circle))
// - Default: [Rectangle]
// View changes between consecutive steps are drawn as dotted jumps.
func GenerateMermaid(script *domain.Script, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if script.Len() == 0 {
		return sb.String()
	}

	for _, view := range script.Views() {
		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", sanitizeMermaidID("view_"+view), escapeLabel(view))
		for _, st := range script.Steps {
			if st.TargetView != view {
				continue
			}
			opener, closer := "[", "]"
			switch {
			case st.IsTerminal:
				opener, closer = "((", "))"
			case st.HasAction():
				opener, closer = "[[", "]]"
			}
			label := st.ID
			if st.Title != "" {
				label = fmt.Sprintf("%s <br/> %s", st.ID, st.Title)
			}
			fmt.Fprintf(&sb, "        %s%s\"%s\"%s\n", sanitizeMermaidID(st.ID), opener, escapeLabel(label), closer)
		}
		sb.WriteString("    end\n")
	}

	for i := 1; i < len(script.Steps); i++ {
		prev, cur := script.Steps[i-1], script.Steps[i]
		arrow := "-->"
		if prev.TargetView != cur.TargetView {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(prev.ID), arrow, sanitizeMermaidID(cur.ID))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedSteps {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || seen[safeID] {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
		}
		if overlay.CurrentStep != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentStep))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
