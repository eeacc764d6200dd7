package runtime

import (
	"time"

	"github.com/aretw0/guidepost/pkg/ports"
)

// actionOutcome is the result of one automated activation attempt.
type actionOutcome struct {
	Fired  bool
	Reason string // why the action was skipped
}

// automator performs a step's delayed, one-shot secondary activation.
// It is confined to the event loop.
type automator struct {
	clock ports.Clock
	query ports.ElementQuery
	timer ports.Timer
	gen   uint64
}

func newAutomator(clock ports.Clock, query ports.ElementQuery) *automator {
	return &automator{clock: clock, query: query}
}

// schedule queries selector once after delay and activates the element if it
// exists. done receives the outcome. A previous schedule is replaced.
func (a *automator) schedule(selector string, delay time.Duration, done func(actionOutcome)) {
	a.cancel()
	gen := a.gen
	a.timer = a.clock.AfterFunc(delay, func() {
		if a.gen != gen {
			return
		}
		a.timer = nil
		done(a.activate(selector))
	})
}

func (a *automator) activate(selector string) actionOutcome {
	el, ok := a.query.Query(selector)
	if !ok {
		return actionOutcome{Reason: "element not found"}
	}
	if err := el.Activate(); err != nil {
		return actionOutcome{Reason: err.Error()}
	}
	return actionOutcome{Fired: true}
}

func (a *automator) cancel() {
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
