package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/guidepost/internal/testutils"
	"github.com/aretw0/guidepost/pkg/config"
	"github.com/aretw0/guidepost/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const miniScript = `
id: mini
steps:
  - id: a
    view: overview
    target: "#a"
    title: A
  - id: b
    view: models
    target: "#b"
    title: B
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("explicit file must exist", func(t *testing.T) {
		_, err := LoadConfig(Options{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml")})
		assert.Error(t, err)
	})

	t.Run("flags override the file", func(t *testing.T) {
		path := writeFile(t, "guidepost.yaml", "tour:\n  script: from-file.yaml\nlogging:\n  level: warn\n")
		cfg, err := LoadConfig(Options{ConfigPath: path, Script: "flag.yaml", Debug: true})
		require.NoError(t, err)
		assert.Equal(t, "flag.yaml", cfg.Tour.Script)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeFile(t, "guidepost.yaml", "store:\n  driver: etcd\n")
		_, err := LoadConfig(Options{ConfigPath: path})
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger(os.Stderr, config.LoggingConfig{Level: "loud", Format: "text"})
	assert.Error(t, err)

	logger, err := NewLogger(os.Stderr, config.LoggingConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), -4))
}

func TestNewScriptLoader(t *testing.T) {
	ctx := context.Background()

	t.Run("built-in", func(t *testing.T) {
		l, err := NewScriptLoader("")
		require.NoError(t, err)
		script, err := l.LoadScript(ctx)
		require.NoError(t, err)
		assert.Equal(t, registry.DefaultScriptID, script.ID)
	})

	t.Run("file", func(t *testing.T) {
		l, err := NewScriptLoader(writeFile(t, "tour.yaml", miniScript))
		require.NoError(t, err)
		script, err := l.LoadScript(ctx)
		require.NoError(t, err)
		assert.Equal(t, "mini", script.ID)
	})

	t.Run("directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "onboarding")
		testutils.WriteFiles(t, dir, map[string]string{
			"01-score.md":  "---\nview: overview\ntarget: \"#score\"\n---\n# Score\n",
			"02-models.md": "---\nview: models\ntarget: \"#models\"\ntitle: Models\n---\n",
		})
		l, err := NewScriptLoader(dir)
		require.NoError(t, err)
		script, err := l.LoadScript(ctx)
		require.NoError(t, err)
		assert.Equal(t, "onboarding", script.ID)
		require.Equal(t, 2, script.Len())
		assert.Equal(t, "score", script.Steps[0].ID)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := NewScriptLoader(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cases := map[string]config.StoreConfig{
		"memory": {Driver: config.StoreMemory},
		"file":   {Driver: config.StoreFile, Path: filepath.Join(t.TempDir(), "signal.json")},
		"redis":  {Driver: config.StoreRedis, Redis: config.RedisConfig{Addr: mr.Addr(), Prefix: "test:", Scope: "alice"}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			store, closeStore, err := NewStore(cfg)
			require.NoError(t, err)
			defer closeStore()

			require.NoError(t, store.SetActive(ctx))
			active, err := store.Active(ctx)
			require.NoError(t, err)
			assert.True(t, active)
			require.NoError(t, store.Clear(ctx))
		})
	}
	assert.True(t, len(mr.Keys()) == 0)

	_, _, err := NewStore(config.StoreConfig{Driver: "etcd"})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestTourOptions_WatchingNeedsWatcher(t *testing.T) {
	cfg := config.Default()
	cfg.Tour.Locator = config.LocatorWatching

	_, err := TourOptions(cfg, testLogger(), nil, nil)
	assert.Error(t, err)

	opts, err := TourOptions(cfg, testLogger(), nil, testutils.NewHost("overview"))
	require.NoError(t, err)
	assert.NotEmpty(t, opts)
}
