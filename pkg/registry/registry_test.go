package registry_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/registry"
	"github.com/aretw0/guidepost/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScriptIsValid(t *testing.T) {
	script := registry.Default()

	require.NoError(t, registry.Validate(script, registry.DashboardViews))
	assert.Equal(t, registry.DefaultScriptID, script.ID)
	assert.True(t, script.Steps[script.Len()-1].IsTerminal)

	for _, view := range script.Views() {
		assert.NotContains(t, registry.ExcludedViews, view, "tour steps never target excluded views")
	}
}

func TestDefaultScriptPassesSchema(t *testing.T) {
	doc := schema.FromScript(registry.Default())
	assert.Empty(t, schema.ValidateSemantic(&doc))
}

func TestValidate_UnknownView(t *testing.T) {
	script := &domain.Script{ID: "x", Steps: []domain.Step{
		{ID: "a", TargetView: "overview", TargetSelector: "#a"},
		{ID: "b", TargetView: "billing", TargetSelector: "#b"},
	}}

	err := registry.Validate(script, registry.DashboardViews)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownView)
	assert.NotErrorIs(t, err, domain.ErrInvalidStep)

	assert.NoError(t, registry.Validate(script, nil), "no catalog, no view check")
}

func TestValidate_InvalidSteps(t *testing.T) {
	script := &domain.Script{ID: "x", Steps: []domain.Step{
		{ID: "a", TargetView: "overview", TargetSelector: "#a"},
		{ID: "a", TargetView: "overview", TargetSelector: "#b"},
		{ID: "", TargetView: "", TargetSelector: "", ActionDelay: -time.Second},
	}}

	errs := registry.ValidateDomain(script, nil)
	paths := make([]string, 0, len(errs))
	for _, e := range errs {
		assert.ErrorIs(t, e, domain.ErrInvalidStep)
		paths = append(paths, e.Path)
	}
	assert.ElementsMatch(t, []string{
		"steps[1].id", "steps[2].id", "steps[2].target", "steps[2].action_delay", "steps[2].view",
	}, paths)
}

func TestValidate_Empty(t *testing.T) {
	assert.ErrorIs(t, registry.Validate(nil, nil), domain.ErrEmptyScript)
	assert.ErrorIs(t, registry.Validate(&domain.Script{ID: "x"}, nil), domain.ErrEmptyScript)
}

func TestRegistry(t *testing.T) {
	r := registry.NewRegistry()
	require.NoError(t, r.Register(registry.Default()))
	require.NoError(t, r.Register(&domain.Script{ID: "another"}))
	assert.Error(t, r.Register(&domain.Script{}))

	got, err := r.Get(registry.DefaultScriptID)
	require.NoError(t, err)
	assert.Equal(t, registry.DefaultScriptID, got.ID)

	_, err = r.Get("missing")
	assert.Error(t, err)
	assert.Equal(t, []string{"another", registry.DefaultScriptID}, r.IDs())
}

const scriptYAML = `
id: mini
steps:
  - id: a
    view: overview
    target: "#a"
    title: A
  - id: b
    view: billing
    target: "#b"
    title: B
`

func TestValidateFile_Phases(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("id: [unclosed"), 0644))
	_, errs := registry.ValidateFile(broken, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, schema.PhaseStructural, errs[0].Phase)

	semantic := filepath.Join(dir, "semantic.yaml")
	require.NoError(t, os.WriteFile(semantic, []byte("id: x\nsteps: []\n"), 0644))
	_, errs = registry.ValidateFile(semantic, nil)
	require.NotEmpty(t, errs)
	assert.Equal(t, schema.PhaseSemantic, errs[0].Phase)

	domainFile := filepath.Join(dir, "domain.yaml")
	require.NoError(t, os.WriteFile(domainFile, []byte(scriptYAML), 0644))
	script, errs := registry.ValidateFile(domainFile, registry.DashboardViews)
	require.Len(t, errs, 1)
	assert.Equal(t, schema.PhaseDomain, errs[0].Phase)
	assert.Equal(t, "steps[1].view", errs[0].Path)
	assert.NotNil(t, script)
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tour.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scriptYAML), 0644))

	loader := registry.NewFileLoader(path)
	script, err := loader.LoadScript(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mini", script.ID)
	assert.Equal(t, 2, script.Len())

	require.NoError(t, os.WriteFile(path, []byte("id: x\nsteps: []\n"), 0644))
	_, err = loader.LoadScript(context.Background())
	assert.Error(t, err)
}

func TestFileLoader_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tour.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scriptYAML), 0644))

	loader := registry.NewFileLoader(path)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := loader.Watch(ctx)
	require.NoError(t, err)

	// Siblings in the watched directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	select {
	case <-ch:
		t.Fatal("unexpected notification for another file")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte(scriptYAML+"\n"), 0644))
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification")
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, time.Second, 10*time.Millisecond)
}

func TestFileLoader_WatchMissingFile(t *testing.T) {
	loader := registry.NewFileLoader(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := loader.Watch(context.Background())
	assert.Error(t, err)
}
