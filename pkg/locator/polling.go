package locator

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/guidepost/pkg/ports"
)

// DefaultInterval is the retry interval between two resolution attempts.
const DefaultInterval = 500 * time.Millisecond

// Polling resolves selectors by querying the host on a fixed interval.
type Polling struct {
	query    ports.ElementQuery
	clock    ports.Clock
	interval time.Duration
	logger   *slog.Logger
}

// Option configures a locator.
type Option func(*options)

type options struct {
	interval time.Duration
	logger   *slog.Logger
}

// WithInterval sets the retry interval of a Polling locator.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{
		interval: DefaultInterval,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewPolling creates a polling locator over the host's element query.
func NewPolling(query ports.ElementQuery, clock ports.Clock, opts ...Option) *Polling {
	o := buildOptions(opts)
	return &Polling{
		query:    query,
		clock:    clock,
		interval: o.interval,
		logger:   o.logger,
	}
}

// Locate starts a resolution attempt. The first query runs before Locate returns.
func (p *Polling) Locate(selector string, found func(ports.Element)) ports.CancelFunc {
	a := &pollAttempt{
		p:        p,
		selector: selector,
		found:    found,
	}
	a.try()
	return a.cancel
}

type pollAttempt struct {
	p        *Polling
	selector string
	found    func(ports.Element)

	mu       sync.Mutex
	stopped  bool
	timer    ports.Timer
	attempts int
}

func (a *pollAttempt) try() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.attempts++
	attempts := a.attempts
	a.mu.Unlock()

	el, ok := a.p.query.Query(a.selector)

	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	if ok {
		a.stopped = true
		a.mu.Unlock()
		a.p.logger.Debug("selector resolved", "selector", a.selector, "attempts", attempts)
		a.found(el)
		return
	}
	a.timer = a.p.clock.AfterFunc(a.p.interval, a.try)
	a.mu.Unlock()
}

func (a *pollAttempt) cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

var _ ports.Locator = (*Polling)(nil)
