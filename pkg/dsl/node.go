package dsl

import (
	"time"

	"github.com/aretw0/guidepost/pkg/domain"
)

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step    domain.Step
	builder *Builder
}

// On sets the view the step lives in.
func (s *StepBuilder) On(view string) *StepBuilder {
	s.step.TargetView = view
	return s
}

// Target sets the selector of the element to highlight.
func (s *StepBuilder) Target(selector string) *StepBuilder {
	s.step.TargetSelector = selector
	return s
}

// Text sets the title and description shown on the tour card.
func (s *StepBuilder) Text(title, description string) *StepBuilder {
	s.step.Title = title
	s.step.Description = description
	return s
}

// Category groups the step for presentation.
func (s *StepBuilder) Category(category string) *StepBuilder {
	s.step.Category = category
	return s
}

// Action declares a secondary element activated once, delay after the
// highlight attaches. A zero delay uses domain.DefaultActionDelay.
func (s *StepBuilder) Action(selector string, delay time.Duration) *StepBuilder {
	s.step.SecondaryActionSelector = selector
	s.step.ActionDelay = delay
	return s
}

// Terminal marks the step as the closing step of the tour.
func (s *StepBuilder) Terminal() *StepBuilder {
	s.step.IsTerminal = true
	return s
}

// Add starts the next step; a shortcut for chaining whole scripts.
func (s *StepBuilder) Add(id string) *StepBuilder {
	return s.builder.Add(id)
}
