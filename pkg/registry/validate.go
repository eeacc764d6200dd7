package registry

import (
	"fmt"
	"path/filepath"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/schema"
)

// Validate runs the domain checks on script: every step needs a unique id, a
// view and a target, and every view must be known to the host. A nil views
// slice skips the catalog check.
// Failures are returned together as a *schema.AggregateError whose entries wrap
// domain.ErrInvalidStep or domain.ErrUnknownView.
func Validate(script *domain.Script, views []string) error {
	return schema.Aggregate(ValidateDomain(script, views))
}

// ValidateDomain is Validate returning the individual failures.
func ValidateDomain(script *domain.Script, views []string) []*schema.ValidationError {
	if script.Len() == 0 {
		return []*schema.ValidationError{{
			Phase:   schema.PhaseDomain,
			Path:    "steps",
			Message: domain.ErrEmptyScript.Error(),
			Err:     domain.ErrEmptyScript,
		}}
	}

	var known map[string]bool
	if views != nil {
		known = make(map[string]bool, len(views))
		for _, v := range views {
			known[v] = true
		}
	}

	var errs []*schema.ValidationError
	invalid := func(path, msg string) {
		errs = append(errs, &schema.ValidationError{Phase: schema.PhaseDomain, Path: path, Message: msg, Err: domain.ErrInvalidStep})
	}

	seen := make(map[string]int)
	for i, step := range script.Steps {
		at := func(field string) string { return fmt.Sprintf("steps[%d].%s", i, field) }

		if step.ID == "" {
			invalid(at("id"), "missing id")
		} else if prev, dup := seen[step.ID]; dup {
			invalid(at("id"), fmt.Sprintf("duplicate id %q (first used by steps[%d])", step.ID, prev))
		} else {
			seen[step.ID] = i
		}

		if step.TargetSelector == "" {
			invalid(at("target"), "missing target selector")
		}
		if step.ActionDelay < 0 {
			invalid(at("action_delay"), "negative action delay")
		}

		switch {
		case step.TargetView == "":
			invalid(at("view"), "missing view")
		case known != nil && !known[step.TargetView]:
			errs = append(errs, &schema.ValidationError{
				Phase:   schema.PhaseDomain,
				Path:    at("view"),
				Message: fmt.Sprintf("unknown view %q", step.TargetView),
				Err:     domain.ErrUnknownView,
			})
		}
	}
	return errs
}

// ValidateFile performs the full validation pipeline on a script file.
// Phase 1: Structural (strict YAML decode)
// Phase 2: Semantic (JSON Schema validation)
// Phase 3: Domain (Validate against views)
func ValidateFile(path string, views []string) (*domain.Script, []*schema.ValidationError) {
	doc, err := schema.LoadFile(path)
	if err != nil {
		return nil, []*schema.ValidationError{{Phase: schema.PhaseStructural, Path: filepath.Base(path), Message: err.Error()}}
	}

	if errs := schema.ValidateSemantic(doc); len(errs) > 0 {
		return nil, errs
	}

	script, err := doc.ToScript()
	if err != nil {
		return nil, []*schema.ValidationError{{Phase: schema.PhaseSemantic, Message: err.Error(), Err: domain.ErrInvalidStep}}
	}

	if errs := ValidateDomain(script, views); len(errs) > 0 {
		return script, errs
	}
	return script, nil
}
