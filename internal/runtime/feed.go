package runtime

import (
	"sort"
	"sync"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
)

// feed fans snapshots out to subscribers. A single goroutine publishes at a
// time; others leave the catching up to it, so subscribers see versions in order.
type feed struct {
	mu         sync.Mutex
	next       int
	fns        map[int]func(domain.Snapshot)
	published  uint64
	publishing bool
}

func (f *feed) add(fn func(domain.Snapshot)) ports.CancelFunc {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fns == nil {
		f.fns = make(map[int]func(domain.Snapshot))
	}
	id := f.next
	f.next++
	f.fns[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.fns, id)
	}
}

func (f *feed) publish(version func() uint64, snapshot func() domain.Snapshot) {
	f.mu.Lock()
	if f.publishing {
		f.mu.Unlock()
		return
	}
	f.publishing = true

	for {
		v := version()
		if v == f.published || len(f.fns) == 0 {
			f.published = v
			f.publishing = false
			f.mu.Unlock()
			return
		}
		f.published = v

		ids := make([]int, 0, len(f.fns))
		for id := range f.fns {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		fns := make([]func(domain.Snapshot), 0, len(ids))
		for _, id := range ids {
			fns = append(fns, f.fns[id])
		}
		f.mu.Unlock()

		snap := snapshot()
		for _, fn := range fns {
			fn(snap)
		}

		f.mu.Lock()
	}
}
