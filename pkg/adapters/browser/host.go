// Package browser drives a Chromium page through the DevTools protocol and
// exposes it as a tour host: routes become views and CSS selectors resolve to
// live DOM elements.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const bindingName = "__guidepost"

// hookJS reports scroll, resize and DOM mutations through the binding, at most
// once per animation frame per kind.
const hookJS = `() => {
	if (window.__guidepostHooked) return;
	window.__guidepostHooked = true;
	const pending = {};
	const send = (kind) => {
		if (pending[kind]) return;
		pending[kind] = true;
		requestAnimationFrame(() => {
			pending[kind] = false;
			try { window.__guidepost(kind); } catch (e) {}
		});
	};
	addEventListener('resize', () => send('resize'), { passive: true });
	addEventListener('scroll', () => send('scroll'), { passive: true, capture: true });
	new MutationObserver(() => send('content')).observe(document, { childList: true, subtree: true });
}`

// Config describes how to reach the browser and the application under tour.
// Views lists the views the application has; when empty the host reports no
// catalog and scripts may target any view.
type Config struct {
	BaseURL    string
	Routes     map[string]string
	Views      []string
	Headless   bool
	ControlURL string // DevTools endpoint of a running browser; empty launches one
	Logger     *slog.Logger
}

// Host is a browser tab showing the application. It implements ports.Navigator,
// ports.ElementQuery, ports.Viewport, ports.ContentWatcher and ports.ViewCatalog.
type Host struct {
	routes  *Routes
	browser *rod.Browser
	page    *rod.Page
	stop    context.CancelFunc
	launch  *launcher.Launcher
	logger  *slog.Logger

	mu      sync.Mutex
	current string

	viewSubs    listeners[string]
	resizeSubs  listeners[struct{}]
	scrollSubs  listeners[struct{}]
	contentSubs listeners[struct{}]
}

// Connect opens the application's base URL in a new tab and starts tracking
// view changes and viewport signals. Close releases the tab and any browser it
// launched.
func Connect(ctx context.Context, cfg Config) (*Host, error) {
	routes, err := NewRoutes(cfg.BaseURL, cfg.Routes, cfg.Views)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	h := &Host{routes: routes, logger: logger.With("component", "browser")}

	controlURL := cfg.ControlURL
	if controlURL == "" {
		h.launch = launcher.New().Headless(cfg.Headless).Leakless(false)
		controlURL, err = h.launch.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
	}

	h.browser = rod.New().ControlURL(controlURL)
	if err := h.browser.Connect(); err != nil {
		h.Close()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := h.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}

	eventsCtx, stop := context.WithCancel(ctx)
	h.stop = stop
	h.page = page

	if err := h.instrument(eventsCtx); err != nil {
		h.Close()
		return nil, err
	}
	if err := page.Navigate(cfg.BaseURL); err != nil {
		h.Close()
		return nil, fmt.Errorf("open %s: %w", cfg.BaseURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		h.logger.Warn("initial load did not settle", "err", err)
	}
	if _, err := page.Eval(hookJS); err != nil {
		h.logger.Warn("viewport hooks not installed", "err", err)
	}
	if info, err := page.Info(); err == nil {
		h.setView(routes.View(info.URL))
	}
	return h, nil
}

func (h *Host) instrument(ctx context.Context) error {
	if err := (proto.PageEnable{}).Call(h.page); err != nil {
		return fmt.Errorf("enable page events: %w", err)
	}
	if err := (proto.RuntimeEnable{}).Call(h.page); err != nil {
		return fmt.Errorf("enable runtime events: %w", err)
	}
	if err := (proto.RuntimeAddBinding{Name: bindingName}).Call(h.page); err != nil {
		return fmt.Errorf("add binding: %w", err)
	}
	if _, err := h.page.EvalOnNewDocument("(" + hookJS + ")()"); err != nil {
		return fmt.Errorf("install hooks: %w", err)
	}

	wait := h.page.Context(ctx).EachEvent(
		func(e *proto.PageFrameNavigated) {
			if e.Frame != nil && e.Frame.ParentID == "" {
				h.setView(h.routes.View(e.Frame.URL))
			}
		},
		func(e *proto.PageNavigatedWithinDocument) {
			h.setView(h.routes.View(e.URL))
		},
		func(e *proto.RuntimeBindingCalled) {
			if e.Name != bindingName {
				return
			}
			switch e.Payload {
			case "resize":
				h.resizeSubs.notify(struct{}{})
			case "scroll":
				h.scrollSubs.notify(struct{}{})
			case "content":
				h.contentSubs.notify(struct{}{})
			}
		},
	)
	go wait()
	return nil
}

func (h *Host) setView(view string) {
	h.mu.Lock()
	changed := view != h.current
	h.current = view
	h.mu.Unlock()

	if changed {
		h.logger.Debug("view changed", "view", view)
		h.viewSubs.notify(view)
	}
}

// Close stops event tracking and releases the browser resources.
func (h *Host) Close() error {
	if h.stop != nil {
		h.stop()
	}
	var errs []error
	if h.page != nil {
		errs = append(errs, h.page.Close())
	}
	if h.browser != nil && h.launch != nil {
		errs = append(errs, h.browser.Close())
	}
	if h.launch != nil {
		h.launch.Cleanup()
	}
	return errors.Join(errs...)
}

// CurrentView implements ports.Navigator.
func (h *Host) CurrentView() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// NavigateTo implements ports.Navigator. The view change is reported once the
// browser commits the navigation.
func (h *Host) NavigateTo(ctx context.Context, view string) error {
	if err := h.page.Context(ctx).Navigate(h.routes.URL(view)); err != nil {
		return fmt.Errorf("navigate to %s: %w", view, err)
	}
	return nil
}

// OnViewChange implements ports.Navigator.
func (h *Host) OnViewChange(fn func(view string)) ports.CancelFunc {
	return h.viewSubs.add(fn)
}

// Views implements ports.ViewCatalog.
func (h *Host) Views() []string { return h.routes.Views() }

// Query implements ports.ElementQuery. It does not wait for the selector.
func (h *Host) Query(selector string) (ports.Element, bool) {
	ok, el, err := h.page.Has(selector)
	if err != nil {
		h.logger.Debug("query failed", "selector", selector, "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &element{el: el}, true
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

// Ports bundles the host for guidepost.New.
func (h *Host) Ports() ports.Host {
	return ports.Host{Navigator: h, Query: h, Viewport: h}
}

type element struct {
	el *rod.Element
}

func (e *element) ScrollIntoView() error {
	if err := e.el.ScrollIntoView(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrElementDetached, err)
	}
	return nil
}

// Rect returns the element's box in viewport coordinates. A node that is
// attached but not rendered has an empty rect.
func (e *element) Rect() (domain.Rect, error) {
	shape, err := e.el.Shape()
	if err != nil {
		return domain.Rect{}, fmt.Errorf("%w: %v", domain.ErrElementDetached, err)
	}
	box := shape.Box()
	if box == nil {
		return domain.Rect{}, nil
	}
	return domain.Rect{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}, nil
}

func (e *element) Activate() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}

type listeners[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

func (l *listeners[T]) add(fn func(T)) ports.CancelFunc {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.next
	l.next++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.fns, id)
		})
	}
}

func (l *listeners[T]) notify(v T) {
	l.mu.Lock()
	fns := make([]func(T), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

var (
	_ ports.Navigator      = (*Host)(nil)
	_ ports.ElementQuery   = (*Host)(nil)
	_ ports.Viewport       = (*Host)(nil)
	_ ports.ContentWatcher = (*Host)(nil)
	_ ports.ViewCatalog    = (*Host)(nil)
)
