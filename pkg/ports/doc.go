/*
Package ports defines the driven ports (interfaces) of the guidepost engine.

These interfaces decouple the tour runtime from the host application that renders
the views, from the durable storage of the "tour active" signal and from time
itself, so the same engine can run against a browser, a test double or a terminal.

# Key Interfaces

  - Navigator: the host's current view and its navigate-to-view command.
  - ElementQuery / Element: resolves selectors to live elements in the active view.
  - Viewport: resize and scroll signals used to keep highlights in place.
  - Locator: the strategy that waits for a selector to resolve.
  - SignalStore: the durable boolean that survives reloads triggered by the tour.
  - Clock: timers, so tests can drive time deterministically.
*/
package ports
