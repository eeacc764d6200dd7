package ports

import "context"

// CancelFunc detaches a subscription. Calling it more than once is safe.
type CancelFunc func()

// Navigator is the host's view router as seen by the tour.
type Navigator interface {
	// CurrentView returns the identifier of the view the host is showing.
	CurrentView() string

	// NavigateTo asks the host to show the given view. Navigation is asynchronous:
	// a nil error means the request was accepted, not that the view is active.
	// Completion is reported through OnViewChange.
	NavigateTo(ctx context.Context, view string) error

	// OnViewChange registers fn to be called whenever the active view changes.
	OnViewChange(fn func(view string)) CancelFunc
}

// ViewCatalog is implemented by hosts that can enumerate the views they know.
// It is used to validate scripts before a tour runs.
type ViewCatalog interface {
	Views() []string
}
