package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/guidepost"
	httpadapter "github.com/aretw0/guidepost/pkg/adapters/http"
	"github.com/aretw0/guidepost/pkg/config"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ServeOptions tune `guidepost serve`.
type ServeOptions struct {
	// Start begins the tour as soon as the host is ready.
	Start bool
	Host  HostFactory
}

// NewAPI builds the tour and its HTTP handler. With cfg.Server.Metrics the
// handler also serves Prometheus metrics fed by the tour's lifecycle hooks.
func NewAPI(ctx context.Context, cfg config.Config, logger *slog.Logger, openHost HostFactory) (*Stack, *httpadapter.Server, error) {
	var hooks []domain.LifecycleHooks
	var httpOpts []httpadapter.Option
	if cfg.Server.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		hooks = append(hooks, observability.NewMetrics(reg).Hooks())
		httpOpts = append(httpOpts, httpadapter.WithMetrics(reg))
	}

	stack, err := BuildTour(ctx, cfg, logger, openHost, hooks...)
	if err != nil {
		return nil, nil, err
	}

	httpOpts = append(httpOpts, httpadapter.WithLogger(logger))
	if len(cfg.Server.CORSOrigins) > 0 {
		httpOpts = append(httpOpts, httpadapter.WithCORSOrigins(cfg.Server.CORSOrigins...))
	}
	api, err := httpadapter.NewHandler(stack.Tour, httpOpts...)
	if err != nil {
		stack.Close()
		return nil, nil, err
	}
	return stack, api, nil
}

// Serve runs the HTTP control API until ctx is cancelled.
func Serve(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ServeOptions) error {
	if opts.Host == nil {
		opts.Host = BrowserHost(cfg.Host, logger)
	}
	stack, api, err := NewAPI(ctx, cfg, logger, opts.Host)
	if err != nil {
		return err
	}
	defer stack.Close()
	defer api.Close()

	beacon := guidepost.NewBeacon()
	go stack.Tour.Listen(ctx, beacon)
	if opts.Start {
		beacon.Emit()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("guidepost API listening", "addr", srv.Addr, "script", stack.Script.ID, "steps", stack.Script.Len())
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Event streams never finish on their own.
		api.Streams.CloseAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		return nil
	}
}
