// Package highlight keeps the outline around a resolved element in place while
// the host viewport moves underneath it.
package highlight

import (
	"log/slog"
	"sync"

	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
)

// DefaultPadding is the space, in host pixels, between an element and its outline.
const DefaultPadding = 8

// Tracker recomputes highlight geometry on viewport signals. It never polls.
type Tracker struct {
	viewport ports.Viewport
	padding  float64
	logger   *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithPadding sets the outline padding.
func WithPadding(p float64) Option {
	return func(t *Tracker) {
		if p >= 0 {
			t.padding = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// NewTracker creates a tracker. viewport may be nil, in which case geometry is
// computed once per Track call.
func NewTracker(viewport ports.Viewport, opts ...Option) *Tracker {
	t := &Tracker{
		viewport: viewport,
		padding:  DefaultPadding,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track computes el's geometry immediately and again on every resize or scroll
// signal. onChange receives nil when the element can no longer be measured.
// Repeated identical geometries are reported once.
func (t *Tracker) Track(el ports.Element, onChange func(*domain.Geometry)) ports.CancelFunc {
	s := &subscription{t: t, el: el, onChange: onChange}

	s.recompute()

	if t.viewport == nil {
		return s.stop
	}

	unsubResize := t.viewport.OnResize(s.recompute)
	unsubScroll := t.viewport.OnScroll(s.recompute)

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		unsubResize()
		unsubScroll()
		return s.stop
	}
	s.cancels = []ports.CancelFunc{unsubResize, unsubScroll}
	s.mu.Unlock()

	return s.stop
}

type subscription struct {
	t        *Tracker
	el       ports.Element
	onChange func(*domain.Geometry)

	mu      sync.Mutex
	stopped bool
	last    *domain.Geometry
	lost    bool
	cancels []ports.CancelFunc
}

func (s *subscription) recompute() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	rect, err := s.el.Rect()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if err != nil {
		if s.lost {
			s.mu.Unlock()
			return
		}
		s.lost = true
		s.last = nil
		s.mu.Unlock()
		s.t.logger.Debug("highlight target cannot be measured", "err", err)
		s.onChange(nil)
		return
	}

	g := domain.GeometryFromRect(rect, s.t.padding)
	if s.last != nil && *s.last == g {
		s.mu.Unlock()
		return
	}
	s.lost = false
	s.last = &g
	s.mu.Unlock()

	out := g
	s.onChange(&out)
}

func (s *subscription) stop() {
	s.mu.Lock()
	s.stopped = true
	cancels := s.cancels
	s.cancels = nil
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
