package locator

import (
	"log/slog"
	"sync"

	"github.com/aretw0/guidepost/pkg/ports"
)

// Watching resolves selectors by re-querying whenever the host reports a
// content change in the active view.
type Watching struct {
	query   ports.ElementQuery
	watcher ports.ContentWatcher
	logger  *slog.Logger
}

// NewWatching creates an observer-based locator.
func NewWatching(query ports.ElementQuery, watcher ports.ContentWatcher, opts ...Option) *Watching {
	o := buildOptions(opts)
	return &Watching{
		query:   query,
		watcher: watcher,
		logger:  o.logger,
	}
}

// Locate queries once immediately and then on every content change until the
// element resolves or the attempt is cancelled.
func (w *Watching) Locate(selector string, found func(ports.Element)) ports.CancelFunc {
	a := &watchAttempt{w: w, selector: selector, found: found}

	unsubscribe := w.watcher.OnContentChange(a.try)
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		unsubscribe()
		return a.cancel
	}
	a.unsubscribe = unsubscribe
	a.mu.Unlock()

	a.try()
	return a.cancel
}

type watchAttempt struct {
	w        *Watching
	selector string
	found    func(ports.Element)

	mu          sync.Mutex
	stopped     bool
	unsubscribe ports.CancelFunc
}

func (a *watchAttempt) try() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	el, ok := a.w.query.Query(a.selector)
	if !ok {
		return
	}

	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	a.w.logger.Debug("selector resolved on content change", "selector", a.selector)
	a.found(el)
}

func (a *watchAttempt) cancel() {
	a.mu.Lock()
	a.stopped = true
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

var _ ports.Locator = (*Watching)(nil)
