package ports

import "github.com/aretw0/guidepost/pkg/domain"

// Element is a live element in the host's active view.
type Element interface {
	// ScrollIntoView asks the host to center the element in the viewport.
	ScrollIntoView() error

	// Rect returns the element's bounding rectangle. It returns
	// domain.ErrElementDetached (or any error) once the element left the view.
	Rect() (domain.Rect, error)

	// Activate triggers the element's default activation (a click for buttons and links).
	Activate() error
}

// ElementQuery resolves a selector against the active view.
type ElementQuery interface {
	// Query returns the first element matching selector, or false when none exists yet.
	Query(selector string) (Element, bool)
}

// ContentWatcher is implemented by hosts that can notify when the active view's
// content changes (elements added or removed).
type ContentWatcher interface {
	OnContentChange(fn func()) CancelFunc
}
