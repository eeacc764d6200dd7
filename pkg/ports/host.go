package ports

// Host bundles the capabilities a host application hands to the engine.
// Viewport may be nil for hosts without resize or scroll signals.
type Host struct {
	Navigator Navigator
	Query     ElementQuery
	Viewport  Viewport
}
