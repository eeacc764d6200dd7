package dsl

import (
	"fmt"

	"github.com/aretw0/guidepost/pkg/adapters/memory"
	"github.com/aretw0/guidepost/pkg/domain"
)

// Builder manages the script construction.
type Builder struct {
	id    string
	title string
	order []string
	steps map[string]*StepBuilder
}

// New creates a new script builder.
func New(id string) *Builder {
	return &Builder{
		id:    id,
		steps: make(map[string]*StepBuilder),
	}
}

// Title sets the script title.
func (b *Builder) Title(title string) *Builder {
	b.title = title
	return b
}

// Add creates a new step at the end of the script.
// If the step already exists, it returns the existing builder.
func (b *Builder) Add(id string) *StepBuilder {
	if sb, ok := b.steps[id]; ok {
		return sb
	}
	sb := &StepBuilder{
		step:    domain.Step{ID: id},
		builder: b,
	}
	b.steps[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Build compiles the script. It checks that every step has an id, a view and
// a target; view names are checked against a host catalog by registry.Validate.
func (b *Builder) Build() (*domain.Script, error) {
	if len(b.order) == 0 {
		return nil, domain.ErrEmptyScript
	}

	script := &domain.Script{
		ID:    b.id,
		Title: b.title,
		Steps: make([]domain.Step, 0, len(b.order)),
	}
	for i, id := range b.order {
		step := b.steps[id].step
		if id == "" || step.TargetView == "" || step.TargetSelector == "" {
			return nil, fmt.Errorf("%w: step %d (%q) needs an id, a view and a target", domain.ErrInvalidStep, i, id)
		}
		script.Steps = append(script.Steps, step)
	}
	return script, nil
}

// Loader compiles the script into a memory loader.
func (b *Builder) Loader() (*memory.Loader, error) {
	script, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build script: %w", err)
	}
	return memory.NewLoader(*script), nil
}

// MustBuild is Build for package-level scripts; it panics on error.
func (b *Builder) MustBuild() *domain.Script {
	script, err := b.Build()
	if err != nil {
		panic(err)
	}
	return script
}
