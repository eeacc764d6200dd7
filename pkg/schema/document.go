package schema

import (
	"fmt"
	"time"

	"github.com/aretw0/guidepost/pkg/domain"
)

// ScriptDocument is the authored form of a tour script.
type ScriptDocument struct {
	ID    string         `json:"id" yaml:"id" mapstructure:"id" jsonschema:"required,minLength=1"`
	Title string         `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Steps []StepDocument `json:"steps" yaml:"steps" mapstructure:"steps" jsonschema:"required,minItems=1"`
}

// StepDocument is the authored form of a step. Durations are Go duration strings ("1500ms").
type StepDocument struct {
	ID          string `json:"id" yaml:"id" mapstructure:"id" jsonschema:"required,minLength=1"`
	View        string `json:"view" yaml:"view" mapstructure:"view" jsonschema:"required,minLength=1"`
	Target      string `json:"target" yaml:"target" mapstructure:"target" jsonschema:"required,minLength=1"`
	Action      string `json:"action,omitempty" yaml:"action,omitempty" mapstructure:"action"`
	ActionDelay string `json:"action_delay,omitempty" yaml:"action_delay,omitempty" mapstructure:"action_delay" jsonschema:"pattern=^([0-9]+(\\.[0-9]+)?(ns|us|ms|s|m|h))+$"`
	Title       string `json:"title" yaml:"title" mapstructure:"title" jsonschema:"required,minLength=1"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty" mapstructure:"category"`
	Terminal    bool   `json:"terminal,omitempty" yaml:"terminal,omitempty" mapstructure:"terminal"`
}

// ToStep converts the document into a domain step.
func (d StepDocument) ToStep() (domain.Step, error) {
	step := domain.Step{
		ID:                      d.ID,
		TargetView:              d.View,
		TargetSelector:          d.Target,
		SecondaryActionSelector: d.Action,
		Title:                   d.Title,
		Description:             d.Description,
		Category:                d.Category,
		IsTerminal:              d.Terminal,
	}
	if d.ActionDelay != "" {
		delay, err := time.ParseDuration(d.ActionDelay)
		if err != nil {
			return domain.Step{}, fmt.Errorf("%w: step %q: action_delay: %w", domain.ErrInvalidStep, d.ID, err)
		}
		if delay < 0 {
			return domain.Step{}, fmt.Errorf("%w: step %q: negative action_delay", domain.ErrInvalidStep, d.ID)
		}
		step.ActionDelay = delay
	}
	return step, nil
}

// ToScript converts the document into a domain script.
func (d ScriptDocument) ToScript() (*domain.Script, error) {
	script := &domain.Script{
		ID:    d.ID,
		Title: d.Title,
		Steps: make([]domain.Step, 0, len(d.Steps)),
	}
	for _, sd := range d.Steps {
		step, err := sd.ToStep()
		if err != nil {
			return nil, err
		}
		script.Steps = append(script.Steps, step)
	}
	return script, nil
}

// FromStep converts a domain step into its authored form.
func FromStep(s domain.Step) StepDocument {
	d := StepDocument{
		ID:          s.ID,
		View:        s.TargetView,
		Target:      s.TargetSelector,
		Action:      s.SecondaryActionSelector,
		Title:       s.Title,
		Description: s.Description,
		Category:    s.Category,
		Terminal:    s.IsTerminal,
	}
	if s.ActionDelay > 0 {
		d.ActionDelay = s.ActionDelay.String()
	}
	return d
}

// FromScript converts a domain script into its authored form.
func FromScript(s *domain.Script) ScriptDocument {
	d := ScriptDocument{ID: s.ID, Title: s.Title}
	for _, st := range s.Steps {
		d.Steps = append(d.Steps, FromStep(st))
	}
	return d
}
