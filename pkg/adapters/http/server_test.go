package http

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/guidepost"
	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/guidepost/internal/testutils"
	"github.com/aretw0/guidepost/pkg/clock"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/dsl"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var box = domain.Rect{X: 10, Y: 10, Width: 100, Height: 40}

func newTestServer(t *testing.T, opts ...Option) (*httptest.Server, *guidepost.Tour) {
	t.Helper()
	b := dsl.New("demo")
	b.Add("score").On("overview").Target("#score").Text("Score", "Overall compliance.")
	b.Add("inventory").On("models").Target("#inventory").Text("Inventory", "")
	b.Add("export").On("models").Target("#export").Text("Export", "")

	host := testutils.NewHost("overview", "overview", "models")
	host.AutoNavigate(true)
	host.Add("overview", "#score", box)
	host.Add("models", "#inventory", box)
	host.Add("models", "#export", box)

	tour, err := guidepost.New(context.Background(), b.MustBuild(),
		ports.Host{Navigator: host, Query: host, Viewport: host},
		guidepost.WithClock(clock.NewManual(time.Now())),
		guidepost.WithAutopilot(false),
	)
	require.NoError(t, err)

	srv, err := NewHandler(tour, opts...)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return ts, tour
}

func post(t *testing.T, url string) (*http.Response, apiError, domain.Snapshot) {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var snap domain.Snapshot
	var apiErr apiError
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(body, &snap))
	} else {
		require.NoError(t, json.Unmarshal(body, &apiErr))
	}
	return resp, apiErr, snap
}

func TestServer_Health(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_Info(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/info")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "guidepost-http", body["app"])
	assert.Equal(t, "1.0.0", body["api_version"])
	assert.Equal(t, "demo", body["script"])
}

func TestServer_Commands(t *testing.T) {
	ts, tour := newTestServer(t)

	resp, apiErr, _ := post(t, ts.URL+"/tour/next")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, apiErr.Error, "not running")
	require.NotNil(t, apiErr.Snapshot)
	assert.Equal(t, domain.StatusNotStarted, apiErr.Snapshot.Status)

	resp, _, snap := post(t, ts.URL+"/tour/start")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.StatusRunning, snap.Status)
	assert.Equal(t, domain.PhaseHighlighted, snap.Phase)
	assert.Equal(t, "score", snap.Step.ID)

	resp, _, snap = post(t, ts.URL+"/tour/next")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "inventory", snap.Step.ID)

	resp, _, snap = post(t, ts.URL+"/tour/pause")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, snap.Paused)

	resp, _, snap = post(t, ts.URL+"/tour/end")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.StatusEnded, snap.Status)
	assert.Equal(t, domain.StatusEnded, tour.Snapshot().Status)
}

func TestServer_RejectsUnknownCommand(t *testing.T) {
	ts, tour := newTestServer(t)

	resp, apiErr, _ := post(t, ts.URL+"/tour/jump")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, apiErr.Error)
	assert.Equal(t, domain.StatusNotStarted, tour.Snapshot().Status)
}

func TestServer_GetTourAndScript(t *testing.T) {
	ts, tour := newTestServer(t)
	require.NoError(t, tour.Start(context.Background()))

	resp, err := http.Get(ts.URL + "/tour")
	require.NoError(t, err)
	var snap domain.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	assert.Equal(t, "score", snap.Step.ID)
	require.NotNil(t, snap.Highlight)

	resp, err = http.Get(ts.URL + "/tour/script")
	require.NoError(t, err)
	defer resp.Body.Close()
	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "demo", doc["id"])
	assert.Len(t, doc["steps"], 3)
}

func TestServer_Graph(t *testing.T) {
	ts, tour := newTestServer(t)
	require.NoError(t, tour.Start(context.Background()))

	resp, err := http.Get(ts.URL + "/tour/graph?overlay=true")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), "graph TD"))
	assert.Contains(t, string(body), "class score current")

	resp2, err := http.Get(ts.URL + "/tour/graph?overlay=maybe")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "guidepost_test_total"})
	reg.MustRegister(c)
	c.Inc()

	ts, _ := newTestServer(t, WithMetrics(reg))
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "guidepost_test_total 1")
}

func TestServer_CORS(t *testing.T) {
	ts, _ := newTestServer(t, WithCORSOrigins("http://app.local"))

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	req.Header.Set("Origin", "http://app.local")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://app.local", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.local")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_Events(t *testing.T) {
	ts, tour := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/tour/events", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	frames := make(chan domain.Snapshot, 32)
	go func() {
		defer close(frames)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			data, ok := strings.CutPrefix(line, "data: ")
			if !ok || data == "connected" {
				continue
			}
			var snap domain.Snapshot
			if json.Unmarshal([]byte(data), &snap) == nil {
				frames <- snap
			}
		}
	}()

	initial := <-frames
	assert.Equal(t, domain.StatusNotStarted, initial.Status)

	require.NoError(t, tour.Start(context.Background()))

	for {
		select {
		case snap, ok := <-frames:
			require.True(t, ok, "stream closed before the highlight frame")
			if snap.Phase == domain.PhaseHighlighted {
				assert.Equal(t, "score", snap.Step.ID)
				return
			}
		case <-ctx.Done():
			t.Fatal("no highlight frame received")
		}
	}
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager(logging.NewNop())
	ch, cancel := sm.Subscribe()
	for i := 0; i < 20; i++ {
		sm.Broadcast("x")
	}
	assert.Len(t, ch, 10)
	assert.Equal(t, 1, sm.Len())

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Len())
}
