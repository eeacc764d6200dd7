// Package config loads the guidepost configuration file.
//
// Files are YAML (or JSON, by extension). ${VAR} references are expanded from
// the environment before decoding, durations are written as Go duration
// strings ("8s", "500ms") and every field missing from the file keeps its default.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "guidepost.yaml"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Store drivers.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Locator strategies.
const (
	LocatorPolling  = "polling"
	LocatorWatching = "watching"
)

// Config is the full guidepost configuration.
type Config struct {
	Tour    TourConfig    `mapstructure:"tour" json:"tour"`
	Store   StoreConfig   `mapstructure:"store" json:"store"`
	Host    HostConfig    `mapstructure:"host" json:"host"`
	Server  ServerConfig  `mapstructure:"server" json:"server"`
	Logging LoggingConfig `mapstructure:"logging" json:"logging"`
}

// TourConfig tunes the tour engine.
type TourConfig struct {
	// Script is a script file or loam directory. Empty selects the built-in dashboard tour.
	Script           string        `mapstructure:"script" json:"script"`
	AutoAdvance      time.Duration `mapstructure:"auto_advance" json:"auto_advance"`
	RetryInterval    time.Duration `mapstructure:"retry_interval" json:"retry_interval"`
	Autopilot        bool          `mapstructure:"autopilot" json:"autopilot"`
	ExcludedViews    []string      `mapstructure:"excluded_views" json:"excluded_views"`
	HighlightPadding float64       `mapstructure:"highlight_padding" json:"highlight_padding"`
	Locator          string        `mapstructure:"locator" json:"locator"`
}

// StoreConfig selects where the "tour active" signal lives.
type StoreConfig struct {
	Driver string      `mapstructure:"driver" json:"driver"`
	Path   string      `mapstructure:"path" json:"path"`
	Redis  RedisConfig `mapstructure:"redis" json:"redis"`
}

// RedisConfig configures the redis signal store.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" json:"addr"`
	Password string        `mapstructure:"password" json:"-"`
	DB       int           `mapstructure:"db" json:"db"`
	Prefix   string        `mapstructure:"prefix" json:"prefix"`
	Scope    string        `mapstructure:"scope" json:"scope"`
	TTL      time.Duration `mapstructure:"ttl" json:"ttl"`
}

// HostConfig describes the browser host driven by `guidepost serve`.
type HostConfig struct {
	BaseURL string `mapstructure:"base_url" json:"base_url"`
	// Routes maps view identifiers to URL paths. Views without a route use "/<view>".
	Routes map[string]string `mapstructure:"routes" json:"routes"`
	// Views lists every view of the application. When set, scripts are checked
	// against it (plus the routed views); when empty, any view is accepted.
	Views      []string `mapstructure:"views" json:"views"`
	Headless   bool     `mapstructure:"headless" json:"headless"`
	ControlURL string   `mapstructure:"control_url" json:"control_url"`
}

// ServerConfig configures the HTTP control API.
type ServerConfig struct {
	Addr        string   `mapstructure:"addr" json:"addr"`
	Metrics     bool     `mapstructure:"metrics" json:"metrics"`
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Tour: TourConfig{
			AutoAdvance:      8 * time.Second,
			RetryInterval:    500 * time.Millisecond,
			Autopilot:        true,
			ExcludedViews:    []string{"landing", "login", "docs"},
			HighlightPadding: 8,
			Locator:          LocatorPolling,
		},
		Store: StoreConfig{
			Driver: StoreFile,
			Path:   ".guidepost/tour-active.json",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "guidepost:tour:",
			},
		},
		Host: HostConfig{
			BaseURL:  "http://localhost:3000",
			Headless: true,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path on top of the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	expanded := os.ExpandEnv(string(data))
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal([]byte(expanded), &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := Decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Decode merges raw into cfg. Unknown keys are rejected.
func Decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		ErrorUnused:      true,
		ZeroFields:       true, // lists in the file replace default lists
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			numberToDurationHook,
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// numberToDurationHook reads bare numbers as milliseconds.
func numberToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	}
	return data, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...)))
	}

	if c.Tour.AutoAdvance <= 0 {
		bad("tour.auto_advance must be positive, got %s", c.Tour.AutoAdvance)
	}
	if c.Tour.RetryInterval <= 0 {
		bad("tour.retry_interval must be positive, got %s", c.Tour.RetryInterval)
	}
	if c.Tour.HighlightPadding < 0 {
		bad("tour.highlight_padding must not be negative")
	}
	switch c.Tour.Locator {
	case LocatorPolling, LocatorWatching:
	default:
		bad("tour.locator must be %q or %q, got %q", LocatorPolling, LocatorWatching, c.Tour.Locator)
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StoreFile:
		if c.Store.Path == "" {
			bad("store.path is required for the file driver")
		}
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			bad("store.redis.addr is required for the redis driver")
		}
		if c.Store.Redis.TTL < 0 {
			bad("store.redis.ttl must not be negative")
		}
	default:
		bad("store.driver must be one of memory, file, redis; got %q", c.Store.Driver)
	}

	if c.Host.BaseURL == "" {
		bad("host.base_url is required")
	}
	for view, route := range c.Host.Routes {
		if !strings.HasPrefix(route, "/") {
			bad("host.routes.%s must start with /", view)
		}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		bad("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return errors.Join(errs...)
}
