package browser_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/aretw0/guidepost"
	"github.com/aretw0/guidepost/pkg/adapters/browser"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html><body style="margin:0">
<nav><a id="to-models" href="/models">Models</a></nav>
<div id="%s" style="position:absolute;top:40px;left:20px;width:200px;height:50px">%s</div>
</body></html>`

func app() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, page, "score", "Score")
	})
	mux.HandleFunc("/models", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, page, "inventory", "Inventory")
	})
	return httptest.NewServer(mux)
}

// Run with GUIDEPOST_BROWSER_TESTS=1; set GUIDEPOST_TEST_HEADLESS=false to watch it.
func TestHost_DrivesTourInBrowser(t *testing.T) {
	if os.Getenv("GUIDEPOST_BROWSER_TESTS") == "" {
		t.Skip("set GUIDEPOST_BROWSER_TESTS=1 to run against a real browser")
	}
	ts := app()
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	host, err := browser.Connect(ctx, browser.Config{
		BaseURL:  ts.URL,
		Routes:   map[string]string{"overview": "/", "models": "/models"},
		Views:    []string{"overview"},
		Headless: os.Getenv("GUIDEPOST_TEST_HEADLESS") != "false",
	})
	require.NoError(t, err)
	defer host.Close()

	assert.Equal(t, "overview", host.CurrentView())
	assert.Equal(t, []string{"models", "overview"}, host.Views())

	b := dsl.New("browser")
	b.Add("score").On("overview").Target("#score").Text("Score", "")
	b.Add("inventory").On("models").Target("#inventory").Text("Inventory", "")

	tour, err := guidepost.New(ctx, b.MustBuild(), host.Ports(),
		guidepost.WithContentWatcher(host),
		guidepost.WithAutopilot(false),
		guidepost.WithHighlightPadding(0),
	)
	require.NoError(t, err)

	require.NoError(t, tour.Start(ctx))
	require.Eventually(t, func() bool {
		return tour.Snapshot().Phase == domain.PhaseHighlighted
	}, 10*time.Second, 50*time.Millisecond)

	geo := tour.Snapshot().Highlight
	require.NotNil(t, geo)
	assert.InDelta(t, 40, geo.Top, 1)
	assert.InDelta(t, 20, geo.Left, 1)
	assert.InDelta(t, 200, geo.Width, 1)

	require.NoError(t, tour.Next(ctx))
	require.Eventually(t, func() bool {
		s := tour.Snapshot()
		return s.Phase == domain.PhaseHighlighted && s.Step.ID == "inventory"
	}, 10*time.Second, 50*time.Millisecond)
	assert.Equal(t, "models", host.CurrentView())

	require.NoError(t, tour.End(ctx))
}
