package guidepost

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/guidepost/internal/presentation/tui"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
)

// Runner drives a tour from a line-oriented terminal: it prints a card for every
// step the tour enters and maps typed commands onto tour commands.
// IO is injected so the loop can be tested and embedded in other frontends.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer transforms a markdown card before it is written.
// This allows terminal styling without coupling the core package to it.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run starts the tour if needed and blocks until it ends, the input is
// exhausted or ctx is done. Exhausting the input ends the tour.
//
// Headless runners ignore Input and simply follow the tour (useful with autopilot).
func (r *Runner) Run(ctx context.Context, tour *Tour) error {
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	if r.Input == nil && !r.Headless {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}

	var (
		mu      sync.Mutex
		lastKey string
		once    sync.Once
		done    = make(chan struct{})
	)
	show := func(s domain.Snapshot) {
		key := fmt.Sprint(s.Index)
		if s.Status == domain.StatusEnded {
			key = "ended"
		}
		mu.Lock()
		defer mu.Unlock()
		if s.Status == domain.StatusNotStarted || key == lastKey {
			return
		}
		lastKey = key
		r.print(tui.StepCard(s))
		if s.Status == domain.StatusEnded {
			once.Do(func() { close(done) })
		}
	}

	cancel := tour.Subscribe(show)
	defer cancel()

	if !r.Headless {
		fmt.Fprintln(r.Output, tui.Help)
	}
	if err := tour.Start(ctx); err != nil {
		return fmt.Errorf("start tour: %w", err)
	}
	mu.Lock()
	shown := lastKey != ""
	mu.Unlock()
	if !shown {
		// Already running (resumed from the durable signal): nothing was published.
		show(tour.Snapshot())
	}

	var lines <-chan string
	if !r.Headless {
		stop := make(chan struct{})
		defer close(stop)
		lines = readLines(r.Input, stop)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return nil
		case line, ok := <-lines:
			if !ok {
				return tour.End(ctx)
			}
			quit, err := r.dispatch(ctx, tour, line)
			if err != nil {
				mu.Lock()
				fmt.Fprintf(r.Output, "! %v\n", err)
				mu.Unlock()
			}
			if quit {
				return nil
			}
		}
	}
}

// aliases maps what users type onto tour commands.
var aliases = map[string]string{
	"":         ports.CommandNext,
	"n":        ports.CommandNext,
	"next":     ports.CommandNext,
	"p":        ports.CommandPrevious,
	"prev":     ports.CommandPrevious,
	"previous": ports.CommandPrevious,
	"back":     ports.CommandPrevious,
	"pause":    ports.CommandPause,
	"resume":   ports.CommandResume,
	"a":        ports.CommandAutopilot,
	"auto":     ports.CommandAutopilot,
	"hold":     ports.CommandHold,
	"release":  ports.CommandRelease,
	"q":        ports.CommandEnd,
	"quit":     ports.CommandEnd,
	"exit":     ports.CommandEnd,
	"end":      ports.CommandEnd,
}

func (r *Runner) dispatch(ctx context.Context, tour *Tour, line string) (bool, error) {
	typed, err := SanitizeCommand(line)
	if err != nil {
		return false, err
	}
	command, ok := aliases[typed]
	if !ok {
		command = typed
	}
	if err := ports.Dispatch(ctx, tour, command); err != nil {
		if errors.Is(err, domain.ErrUnknownCommand) {
			return false, fmt.Errorf("%w: %q", err, typed)
		}
		return command == ports.CommandEnd, err
	}
	return command == ports.CommandEnd, nil
}

// print writes a card; the caller holds the output lock.
func (r *Runner) print(card string) {
	out := card
	if r.Renderer != nil {
		if rendered, err := r.Renderer(card); err == nil {
			out = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(out))
}

func readLines(in io.Reader, stop <-chan struct{}) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case ch <- scanner.Text():
			case <-stop:
				return
			}
		}
	}()
	return ch
}
