// Package clock provides the ports.Clock implementations used by the engine:
// Real for production and Manual for deterministic tests and simulations.
package clock

import (
	"time"

	"github.com/aretw0/guidepost/pkg/ports"
)

// Real is a ports.Clock backed by the time package.
type Real struct{}

// New returns the wall clock.
func New() Real { return Real{} }

// Now returns the current time.
func (Real) Now() time.Time { return time.Now() }

// AfterFunc runs fn in its own goroutine after d.
func (Real) AfterFunc(d time.Duration, fn func()) ports.Timer {
	return time.AfterFunc(d, fn)
}

var _ ports.Clock = Real{}
