package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/guidepost"
	"github.com/aretw0/guidepost/internal/presentation/tui"
	"github.com/aretw0/guidepost/pkg/config"
)

// RunOptions tune `guidepost run`.
type RunOptions struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Host     HostFactory
}

// Run drives a tour from the terminal: each step is printed as a card and
// typed commands steer the tour.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, opts RunOptions) error {
	if opts.Host == nil {
		opts.Host = BrowserHost(cfg.Host, logger)
	}
	stack, err := BuildTour(ctx, cfg, logger, opts.Host)
	if err != nil {
		return err
	}
	defer stack.Close()

	runner := &guidepost.Runner{
		Input:    opts.Input,
		Output:   opts.Output,
		Headless: opts.Headless,
		Renderer: guidepost.ContentRenderer(tui.Plain),
	}
	if f, ok := opts.Output.(*os.File); ok && !opts.Headless {
		runner.Renderer = guidepost.ContentRenderer(tui.ForFile(f))
		tui.PrintBanner(f, guidepost.Version)
	}
	return runner.Run(ctx, stack.Tour)
}
