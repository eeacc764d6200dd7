package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/guidepost"
	"github.com/aretw0/guidepost/internal/testutils"
	"github.com/aretw0/guidepost/pkg/adapters/browser"
	"github.com/aretw0/guidepost/pkg/config"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
)

// Stack is a tour together with the resources it was built on.
type Stack struct {
	Tour    *guidepost.Tour
	Script  *domain.Script
	closers []func() error
}

// Close releases the host and store in reverse order.
func (s *Stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// HostFactory opens the host a tour runs against.
type HostFactory func(ctx context.Context, script *domain.Script) (ports.Host, ports.ContentWatcher, func() error, error)

// BrowserHost drives the application configured in cfg through a browser.
func BrowserHost(cfg config.HostConfig, logger *slog.Logger) HostFactory {
	return func(ctx context.Context, _ *domain.Script) (ports.Host, ports.ContentWatcher, func() error, error) {
		h, err := browser.Connect(ctx, browser.Config{
			BaseURL:    cfg.BaseURL,
			Routes:     cfg.Routes,
			Views:      cfg.Views,
			Headless:   cfg.Headless,
			ControlURL: cfg.ControlURL,
			Logger:     logger,
		})
		if err != nil {
			return ports.Host{}, nil, nil, err
		}
		return h.Ports(), h, h.Close, nil
	}
}

// HostViews returns the view catalog the browser host will report for cfg, or
// nil when cfg does not list its views.
func HostViews(cfg config.HostConfig) []string {
	routes, err := browser.NewRoutes(cfg.BaseURL, cfg.Routes, cfg.Views)
	if err != nil {
		return nil
	}
	return routes.Views()
}

// RehearsalHost simulates an application where every view of the script exists
// and every target is rendered, so a script can be walked without a browser.
func RehearsalHost() HostFactory {
	return func(_ context.Context, script *domain.Script) (ports.Host, ports.ContentWatcher, func() error, error) {
		views := script.Views()
		h := testutils.NewHost(views[0], views...)
		h.AutoNavigate(true)
		for i, step := range script.Steps {
			rect := domain.Rect{X: 24, Y: float64(24 + 64*i), Width: 320, Height: 48}
			h.Add(step.TargetView, step.TargetSelector, rect)
			if step.HasAction() {
				h.Add(step.TargetView, step.SecondaryActionSelector, rect)
			}
		}
		return ports.Host{Navigator: h, Query: h, Viewport: h}, h, func() error { return nil }, nil
	}
}

// BuildTour loads the configured script and store, opens the host and builds
// the tour. Close the stack when done.
func BuildTour(ctx context.Context, cfg config.Config, logger *slog.Logger, openHost HostFactory, hooks ...domain.LifecycleHooks) (*Stack, error) {
	loader, err := NewScriptLoader(cfg.Tour.Script)
	if err != nil {
		return nil, err
	}
	script, err := loader.LoadScript(ctx)
	if err != nil {
		return nil, err
	}

	stack := &Stack{Script: script}
	store, closeStore, err := NewStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	stack.closers = append(stack.closers, closeStore)

	host, watcher, closeHost, err := openHost(ctx, script)
	if err != nil {
		stack.Close()
		return nil, fmt.Errorf("open host: %w", err)
	}
	stack.closers = append(stack.closers, closeHost)

	opts, err := TourOptions(cfg, logger, store, watcher, hooks...)
	if err != nil {
		stack.Close()
		return nil, err
	}
	stack.Tour, err = guidepost.New(ctx, script, host, opts...)
	if err != nil {
		stack.Close()
		return nil, err
	}
	return stack, nil
}
