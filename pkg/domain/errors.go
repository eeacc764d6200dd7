package domain

import "errors"

// ErrEmptyScript is returned when a tour is built from a script without steps.
var ErrEmptyScript = errors.New("script has no steps")

// ErrUnknownView is returned when a script targets a view the host does not know.
var ErrUnknownView = errors.New("unknown view")

// ErrInvalidStep is returned when a step descriptor is missing required fields.
var ErrInvalidStep = errors.New("invalid step")

// ErrTourNotRunning is returned by commands that need an active tour.
var ErrTourNotRunning = errors.New("tour is not running")

// ErrElementDetached is returned by hosts when an element left the view.
var ErrElementDetached = errors.New("element detached")

// ErrSignalStore wraps failures reading or writing the durable "tour active" signal.
var ErrSignalStore = errors.New("signal store")

// ErrUnknownCommand is returned when a command name matches no tour command.
var ErrUnknownCommand = errors.New("unknown command")
