/*
Package locator provides the ports.Locator strategies that wait for a selector
to resolve while the host is still rendering the active view.

Polling is the reference strategy: an immediate attempt, then one attempt per
interval until the element appears or the attempt is cancelled. There is no
timeout; an unresolved selector is a steady "not yet", never an error.

Watching re-queries whenever the host reports that the view's content changed,
for hosts that can observe their own rendering.
*/
package locator
