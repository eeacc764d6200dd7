package browser

import (
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
)

// Routes maps tour views to URLs under a base URL and back.
// A view without an explicit route lives at "/<view>".
type Routes struct {
	base  *url.URL
	paths map[string]string
	known []string
}

// NewRoutes parses baseURL and normalises the route table. views lists the
// views the application is known to have, routed or not; it may be empty.
func NewRoutes(baseURL string, routes map[string]string, views []string) (*Routes, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	paths := make(map[string]string, len(routes))
	for view, p := range routes {
		paths[view] = cleanPath(p)
	}
	return &Routes{base: base, paths: paths, known: views}, nil
}

// URL returns the absolute URL that shows view.
func (r *Routes) URL(view string) string {
	p, ok := r.paths[view]
	if !ok {
		p = cleanPath(view)
	}
	u := *r.base
	u.Path = strings.TrimSuffix(r.base.Path, "/") + p
	return u.String()
}

// View returns the view shown at rawURL. URLs outside the base resolve to "".
func (r *Routes) View(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != r.base.Host {
		return ""
	}
	p := cleanPath(strings.TrimPrefix(u.Path, strings.TrimSuffix(r.base.Path, "/")))

	// Longest route first so "/models/new" wins over "/models".
	best, bestLen := "", -1
	for view, route := range r.paths {
		match := p == route || (route != "/" && strings.HasPrefix(p, route+"/"))
		if match && len(route) > bestLen {
			best, bestLen = view, len(route)
		}
	}
	if bestLen >= 0 {
		return best
	}
	return strings.Trim(p, "/")
}

// Views lists the known views and the routed ones in sorted order. Without a
// list of known views it returns nil: any view may exist at "/<view>", so
// there is no catalog to check scripts against.
func (r *Routes) Views() []string {
	if len(r.known) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(r.known)+len(r.paths))
	var views []string
	add := func(v string) {
		if !seen[v] {
			seen[v] = true
			views = append(views, v)
		}
	}
	for _, v := range r.known {
		add(v)
	}
	for v := range r.paths {
		add(v)
	}
	sort.Strings(views)
	return views
}

func cleanPath(p string) string {
	return path.Clean("/" + strings.TrimSpace(p))
}
