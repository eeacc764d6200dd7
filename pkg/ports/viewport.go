package ports

// Viewport reports the host signals that move elements on screen.
type Viewport interface {
	OnResize(fn func()) CancelFunc
	OnScroll(fn func()) CancelFunc
}
