/*
Package guidepost is a guided walkthrough engine: a scripted, multi-step
product tour that drives the user across the views of a host application,
waits for targets that render asynchronously, highlights them, optionally
triggers automated interactions and advances on a timer that coexists with
manual navigation, pausing and cancellation.

# Concept

The host application owns rendering and routing. It hands the engine three
capabilities through ports.Host: a Navigator (current view, navigate-to-view,
view-change notifications), an ElementQuery (selector to live element) and an
optional Viewport (resize and scroll signals). The engine exposes a read model
(domain.Snapshot) and a small command surface to a presentation layer.

# Key Features

  - One step at a time: every transition invalidates in-flight callbacks of the
    previous step (epoch discipline) and tears its resources down first.
  - Deterministic: all work runs on a single logical event loop and time comes
    from an injectable ports.Clock.
  - Durable start signal: a ports.SignalStore survives the reloads the tour
    itself triggers, so the tour resumes after navigation.

# Usage

	tour, err := guidepost.New(ctx, registry.Default(), ports.Host{
		Navigator: nav,
		Query:     query,
		Viewport:  viewport,
	}, guidepost.WithSignalStore(file.New("")))
	if err != nil {
		log.Fatal(err)
	}

	beacon := guidepost.NewBeacon()
	go tour.Listen(ctx, beacon)

	// Later, when the user clicks "Take the tour":
	beacon.Emit()

Presentation layers read tour.Snapshot() or Subscribe to changes and call
Next, Previous, End, ToggleAutopilot, Pause/Resume and Hold/Release.
*/
package guidepost
