package runtime

import (
	"time"

	"github.com/aretw0/guidepost/pkg/ports"
)

// scheduler is the single-slot auto-advance countdown. It is confined to the
// event loop. Arming always replaces the previous countdown and cancelling
// never re-arms: resumption is always a fresh full-duration countdown.
type scheduler struct {
	clock ports.Clock
	timer ports.Timer
	gen   uint64
}

func newScheduler(clock ports.Clock) *scheduler {
	return &scheduler{clock: clock}
}

// arm starts a countdown of d and returns the instant it fires.
func (s *scheduler) arm(d time.Duration, fn func()) time.Time {
	s.cancel()
	gen := s.gen
	deadline := s.clock.Now().Add(d)
	s.timer = s.clock.AfterFunc(d, func() {
		if s.gen != gen {
			return
		}
		s.timer = nil
		fn()
	})
	return deadline
}

// cancel stops the countdown. It reports whether one was armed.
func (s *scheduler) cancel() bool {
	s.gen++
	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	return true
}
