/*
Package domain contains the core models of the guidepost walkthrough engine.

It is kept free of I/O, timers and host concerns. The runtime and the adapters
exchange these types; nothing here schedules work.

# Key Entities

  - Step: one scripted unit binding a target view, a target element and the text shown to the user.
  - Script: the fixed, ordered sequence of Steps a tour walks through.
  - TourState: status, current index, autopilot flag and the transition epoch.
  - Snapshot: the read model handed to presentation layers.
  - Geometry: the on-screen outline of the highlighted element.
*/
package domain
