package testutils

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
)

// Host is an in-memory host application: a set of views, the elements rendered
// in each, and viewport signals fired by hand. It implements ports.Navigator,
// ports.ElementQuery, ports.Viewport, ports.ContentWatcher and ports.ViewCatalog.
//
// Navigation is not applied until SetView is called, unless AutoNavigate is set,
// mirroring hosts whose router completes asynchronously.
type Host struct {
	mu           sync.Mutex
	current      string
	views        []string
	elements     map[string]map[string]*Element
	navRequests  []string
	navErrors    []error
	autoNavigate bool

	viewSubs    subscribers[string]
	resizeSubs  subscribers[struct{}]
	scrollSubs  subscribers[struct{}]
	contentSubs subscribers[struct{}]
}

// NewHost creates a host showing initial. views lists every view the host knows.
func NewHost(initial string, views ...string) *Host {
	known := append([]string{}, views...)
	if !contains(known, initial) {
		known = append(known, initial)
	}
	return &Host{
		current:  initial,
		views:    known,
		elements: make(map[string]map[string]*Element),
	}
}

// AutoNavigate makes NavigateTo switch views immediately (and notify subscribers).
func (h *Host) AutoNavigate(on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.autoNavigate = on
}

// RejectNavigation queues errors returned by the next NavigateTo calls.
func (h *Host) RejectNavigation(errs ...error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.navErrors = append(h.navErrors, errs...)
}

// Add renders an element matching selector in view.
func (h *Host) Add(view, selector string, rect domain.Rect) *Element {
	h.mu.Lock()
	if h.elements[view] == nil {
		h.elements[view] = make(map[string]*Element)
	}
	el := &Element{Selector: selector, rect: rect}
	h.elements[view][selector] = el
	isCurrent := view == h.current
	h.mu.Unlock()

	if isCurrent {
		h.contentSubs.notify(struct{}{})
	}
	return el
}

// Remove detaches the element matching selector from view.
func (h *Host) Remove(view, selector string) {
	h.mu.Lock()
	el := h.elements[view][selector]
	delete(h.elements[view], selector)
	h.mu.Unlock()

	if el != nil {
		el.Detach()
	}
}

// SetView completes a navigation: the host now shows view.
func (h *Host) SetView(view string) {
	h.mu.Lock()
	h.current = view
	h.mu.Unlock()
	h.viewSubs.notify(view)
}

// Resize fires a viewport resize signal.
func (h *Host) Resize() { h.resizeSubs.notify(struct{}{}) }

// Scroll fires a viewport scroll signal.
func (h *Host) Scroll() { h.scrollSubs.notify(struct{}{}) }

// NavigationRequests returns the views passed to NavigateTo, in order.
func (h *Host) NavigationRequests() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.navRequests...)
}

// Subscriptions returns the number of live subscriptions of every kind.
func (h *Host) Subscriptions() int {
	return h.viewSubs.count() + h.resizeSubs.count() + h.scrollSubs.count() + h.contentSubs.count()
}

// ViewportSubscriptions returns the number of live resize and scroll subscriptions.
func (h *Host) ViewportSubscriptions() int {
	return h.resizeSubs.count() + h.scrollSubs.count()
}

// CurrentView implements ports.Navigator.
func (h *Host) CurrentView() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// NavigateTo implements ports.Navigator.
func (h *Host) NavigateTo(ctx context.Context, view string) error {
	h.mu.Lock()
	h.navRequests = append(h.navRequests, view)
	if len(h.navErrors) > 0 {
		err := h.navErrors[0]
		h.navErrors = h.navErrors[1:]
		h.mu.Unlock()
		return err
	}
	auto := h.autoNavigate
	h.mu.Unlock()

	if auto {
		h.SetView(view)
	}
	return nil
}

// OnViewChange implements ports.Navigator.
func (h *Host) OnViewChange(fn func(view string)) ports.CancelFunc {
	return h.viewSubs.add(fn)
}

// Views implements ports.ViewCatalog.
func (h *Host) Views() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := append([]string{}, h.views...)
	sort.Strings(out)
	return out
}

// Query implements ports.ElementQuery, scoped to the current view.
func (h *Host) Query(selector string) (ports.Element, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	el, ok := h.elements[h.current][selector]
	if !ok {
		return nil, false
	}
	return el, true
}

// OnResize implements ports.Viewport.
func (h *Host) OnResize(fn func()) ports.CancelFunc {
	return h.resizeSubs.add(func(struct{}) { fn() })
}

// OnScroll implements ports.Viewport.
func (h *Host) OnScroll(fn func()) ports.CancelFunc {
	return h.scrollSubs.add(func(struct{}) { fn() })
}

// OnContentChange implements ports.ContentWatcher.
func (h *Host) OnContentChange(fn func()) ports.CancelFunc {
	return h.contentSubs.add(func(struct{}) { fn() })
}

// Element is a fake rendered element.
type Element struct {
	Selector string

	mu          sync.Mutex
	rect        domain.Rect
	detached    bool
	scrolls     int
	activations int
}

// Move changes the element's bounding rectangle.
func (e *Element) Move(rect domain.Rect) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rect = rect
}

// Detach marks the element as removed from the view.
func (e *Element) Detach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detached = true
}

// Scrolls returns how many times ScrollIntoView was called.
func (e *Element) Scrolls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scrolls
}

// Activations returns how many times Activate was called.
func (e *Element) Activations() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activations
}

// ScrollIntoView implements ports.Element.
func (e *Element) ScrollIntoView() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.detached {
		return domain.ErrElementDetached
	}
	e.scrolls++
	return nil
}

// Rect implements ports.Element.
func (e *Element) Rect() (domain.Rect, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.detached {
		return domain.Rect{}, domain.ErrElementDetached
	}
	return e.rect, nil
}

// Activate implements ports.Element.
func (e *Element) Activate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.detached {
		return domain.ErrElementDetached
	}
	e.activations++
	return nil
}

type subscribers[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

func (s *subscribers[T]) add(fn func(T)) ports.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func(T))
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

func (s *subscribers[T]) notify(v T) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.fns))
	for id := range s.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.fns[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (s *subscribers[T]) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fns)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

var (
	_ ports.Navigator      = (*Host)(nil)
	_ ports.ElementQuery   = (*Host)(nil)
	_ ports.Viewport       = (*Host)(nil)
	_ ports.ContentWatcher = (*Host)(nil)
	_ ports.ViewCatalog    = (*Host)(nil)
)
