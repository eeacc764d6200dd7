package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/aretw0/guidepost/pkg/registry"
	"github.com/aretw0/guidepost/pkg/schema"
)

// ValidateScript checks the script at path. Files go through the structural,
// semantic and domain stages; directories are loaded as loam collections and
// checked against the domain rules. views, when set, is the host's view catalog.
func ValidateScript(ctx context.Context, path string, views []string) (*domain.Script, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		script, errs := registry.ValidateFile(path, views)
		if len(errs) > 0 {
			return nil, schema.Aggregate(errs)
		}
		return script, nil
	}

	loader, err := NewScriptLoader(path)
	if err != nil {
		return nil, err
	}
	script, err := loader.LoadScript(ctx)
	if err != nil {
		return nil, err
	}
	if err := registry.Validate(script, views); err != nil {
		return nil, err
	}
	return script, nil
}

// ReportValidation prints the outcome of ValidateScript on w and returns err.
func ReportValidation(w io.Writer, path string, script *domain.Script, err error) error {
	if err != nil {
		fmt.Fprintf(w, "✗ %s\n", path)
		errs := schema.ValidationErrors(err)
		if len(errs) == 0 {
			errs = []error{err}
		}
		for _, e := range errs {
			fmt.Fprintf(w, "  - %v\n", e)
		}
		return err
	}
	fmt.Fprintf(w, "✓ %s: script %q with %d steps over %d views\n", path, script.ID, script.Len(), len(script.Views()))
	return nil
}

// WatchValidate revalidates the script every time it changes until ctx is done.
func WatchValidate(ctx context.Context, path string, views []string, w io.Writer, logger *slog.Logger) error {
	loader, err := NewScriptLoader(path)
	if err != nil {
		return err
	}
	watchable, ok := loader.(ports.Watchable)
	if !ok {
		return fmt.Errorf("%s cannot be watched", path)
	}
	changes, err := watchable.Watch(ctx)
	if err != nil {
		return err
	}

	script, verr := ValidateScript(ctx, path, views)
	_ = ReportValidation(w, path, script, verr)
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Debug("script changed", "path", path)
			script, verr := ValidateScript(ctx, path, views)
			_ = ReportValidation(w, path, script, verr)
		}
	}
}
