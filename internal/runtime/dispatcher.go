package runtime

import (
	"sync"
	"time"

	"github.com/aretw0/guidepost/pkg/ports"
)

// dispatcher is the engine's single logical event loop.
//
// Work is appended to a queue. The goroutine that finds the loop idle drains it
// and every other poster (including re-entrant posts from the item currently
// running) only enqueues. Items therefore never run concurrently and always run
// in post order.
type dispatcher struct {
	mu      sync.Mutex
	queue   []func()
	running bool

	// onIdle runs on the draining goroutine after the queue empties.
	onIdle func()
}

// do posts fn. It reports whether the caller drained the queue, in which case
// fn has run by the time do returns.
func (d *dispatcher) do(fn func()) bool {
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	if d.running {
		d.mu.Unlock()
		return false
	}
	d.running = true
	d.mu.Unlock()

	d.drain()
	if d.onIdle != nil {
		d.onIdle()
	}
	return true
}

func (d *dispatcher) drain() {
	defer func() {
		if r := recover(); r != nil {
			d.mu.Lock()
			d.running = false
			d.mu.Unlock()
			panic(r)
		}
	}()

	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.running = false
			d.mu.Unlock()
			return
		}
		fn := d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]
		d.mu.Unlock()

		fn()
	}
}

// loopClock delivers timer callbacks through the dispatcher.
type loopClock struct {
	inner ports.Clock
	loop  *dispatcher
}

func (c loopClock) Now() time.Time { return c.inner.Now() }

func (c loopClock) AfterFunc(d time.Duration, fn func()) ports.Timer {
	return c.inner.AfterFunc(d, func() { c.loop.do(fn) })
}
