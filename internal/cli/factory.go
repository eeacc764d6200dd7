// Package cli wires configuration, storage, hosts and adapters for the
// guidepost commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/guidepost"
	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/guidepost/pkg/adapters/file"
	"github.com/aretw0/guidepost/pkg/adapters/loam"
	"github.com/aretw0/guidepost/pkg/adapters/memory"
	"github.com/aretw0/guidepost/pkg/adapters/redis"
	"github.com/aretw0/guidepost/pkg/config"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/observability"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/aretw0/guidepost/pkg/registry"
)

// Options are the flags shared by every command.
type Options struct {
	ConfigPath string
	// Script overrides tour.script from the config file.
	Script string
	Debug  bool
}

// LoadConfig reads and validates the configuration. An explicitly named file
// must exist; the default one is optional.
func LoadConfig(opts Options) (config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath
	} else if _, err := os.Stat(path); err != nil {
		return config.Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Script != "" {
		cfg.Tour.Script = opts.Script
	}
	if opts.Debug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// NewLogger creates the process logger on w (normally stderr).
func NewLogger(w io.Writer, cfg config.LoggingConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithFormat(w, level, cfg.Format), nil
}

// NewScriptLoader picks a loader for path: a directory is read as a loam
// collection of step documents, a file as a YAML/JSON script, and an empty path
// selects the built-in dashboard tour.
func NewScriptLoader(path string) (ports.ScriptLoader, error) {
	if path == "" {
		return memory.NewLoader(*registry.Default()), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	if info.IsDir() {
		l, err := loam.Open(path)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	return registry.NewFileLoader(path), nil
}

// NewStore opens the configured signal store. The returned func releases it.
func NewStore(cfg config.StoreConfig) (ports.SignalStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Driver {
	case config.StoreMemory:
		return memory.NewStore(), noop, nil
	case config.StoreFile:
		return file.New(cfg.Path), noop, nil
	case config.StoreRedis:
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.Scope != "" {
			opts = append(opts, redis.WithScope(cfg.Redis.Scope))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		s := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
}

// TourOptions translates the tour section of cfg into engine options. watcher
// is required by the watching locator and ignored otherwise.
func TourOptions(cfg config.Config, logger *slog.Logger, store ports.SignalStore, watcher ports.ContentWatcher, hooks ...domain.LifecycleHooks) ([]guidepost.Option, error) {
	opts := []guidepost.Option{
		guidepost.WithLogger(logger),
		guidepost.WithSignalStore(store),
		guidepost.WithAutoAdvance(cfg.Tour.AutoAdvance),
		guidepost.WithRetryInterval(cfg.Tour.RetryInterval),
		guidepost.WithAutopilot(cfg.Tour.Autopilot),
		guidepost.WithExcludedViews(cfg.Tour.ExcludedViews...),
		guidepost.WithHighlightPadding(cfg.Tour.HighlightPadding),
		guidepost.WithLifecycleHooks(observability.AuditHooks(logger)),
	}
	for _, h := range hooks {
		opts = append(opts, guidepost.WithLifecycleHooks(h))
	}

	if cfg.Tour.Locator == config.LocatorWatching {
		if watcher == nil {
			return nil, errors.New("the watching locator needs a host that reports content changes")
		}
		opts = append(opts, guidepost.WithContentWatcher(watcher))
	}
	return opts, nil
}
