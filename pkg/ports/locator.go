package ports

// Locator waits for a selector to resolve in the active view.
//
// Locate calls found at most once, from the engine's clock or host callbacks.
// The returned CancelFunc stops any further attempt; after it returns, found is
// never called.
type Locator interface {
	Locate(selector string, found func(Element)) CancelFunc
}
