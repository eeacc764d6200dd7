package http

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/guidepost"
	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/guidepost/internal/presentation/graph"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/aretw0/guidepost/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var specYAML []byte

// Server exposes a tour over HTTP. It implements http.Handler.
type Server struct {
	Tour    ports.TourController
	Streams *StreamManager

	handler     http.Handler
	logger      *slog.Logger
	apiVersion  string
	unsubscribe ports.CancelFunc
}

type options struct {
	logger  *slog.Logger
	metrics prometheus.Gatherer
	origins []string
}

// Option configures the server.
type Option func(*options)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics serves g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(o *options) { o.metrics = g }
}

// WithCORSOrigins restricts cross-origin access. Without it any origin is allowed.
func WithCORSOrigins(origins ...string) Option {
	return func(o *options) { o.origins = origins }
}

// NewHandler builds the HTTP API for tour. Requests are validated against the
// embedded OpenAPI document before they reach a handler.
func NewHandler(tour ports.TourController, opts ...Option) (*Server, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}

	validator, err := newRequestValidator(specYAML)
	if err != nil {
		return nil, fmt.Errorf("load api contract: %w", err)
	}

	s := &Server{
		Tour:       tour,
		Streams:    NewStreamManager(o.logger),
		logger:     o.logger.With("component", "http"),
		apiVersion: validator.doc.Info.Version,
	}
	s.unsubscribe = tour.Subscribe(s.broadcast)

	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(specYAML)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if o.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(o.metrics, promhttp.HandlerOpts{}))
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/tour", s.GetTour)
	r.Get("/tour/script", s.GetScript)
	r.Get("/tour/graph", s.GetGraph)
	r.Get("/tour/events", s.SubscribeEvents)
	r.Post("/tour/{command}", s.RunCommand)

	s.handler = enableCORS(o.origins, validator.middleware(r))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close stops forwarding tour snapshots to event streams.
func (s *Server) Close() {
	s.unsubscribe()
	s.Streams.CloseAll()
}

func (s *Server) broadcast(snap domain.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("snapshot encode failed", "err", err)
		return
	}
	s.Streams.Broadcast(string(data))
}

func enableCORS(origins []string, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(allowed) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Guidepost API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "guidepost-http",
		"version":     strings.TrimSpace(guidepost.Version),
		"api_version": s.apiVersion,
		"script":      s.Tour.Script().ID,
	})
}

// GetTour handles GET /tour.
func (s *Server) GetTour(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Tour.Snapshot())
}

// GetScript handles GET /tour/script.
func (s *Server) GetScript(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, schema.FromScript(s.Tour.Script()))
}

// GetGraph handles GET /tour/graph. With overlay=true the current and visited
// steps are highlighted.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	script := s.Tour.Script()
	var overlay *graph.Overlay
	if on, _ := strconv.ParseBool(r.URL.Query().Get("overlay")); on {
		overlay = graph.OverlayFromSnapshot(script, s.Tour.Snapshot())
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(script, overlay))
}

// RunCommand handles POST /tour/{command}.
func (s *Server) RunCommand(w http.ResponseWriter, r *http.Request) {
	command := chi.URLParam(r, "command")
	err := ports.Dispatch(r.Context(), s.Tour, command)
	snap := s.Tour.Snapshot()
	if err == nil {
		writeJSON(w, http.StatusOK, snap)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnknownCommand):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrTourNotRunning), errors.Is(err, domain.ErrEmptyScript):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSignalStore):
		// The transition happened; only persisting the signal failed.
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("command failed", "command", command, "err", err)
	} else {
		s.logger.Debug("command rejected", "command", command, "err", err)
	}
	writeJSON(w, status, apiError{Error: err.Error(), Snapshot: &snap})
}

// SubscribeEvents handles GET /tour/events (SSE). Every snapshot change is sent
// as one JSON data frame, starting with the current snapshot.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	if initial, err := json.Marshal(s.Tour.Snapshot()); err == nil {
		fmt.Fprintf(w, "data: %s\n\n", initial)
	}
	flusher.Flush()
	s.logger.Debug("SSE client connected")

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

type apiError struct {
	Error    string           `json:"error"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
