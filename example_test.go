package guidepost_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aretw0/guidepost"
	"github.com/aretw0/guidepost/internal/testutils"
	"github.com/aretw0/guidepost/pkg/adapters/memory"
	"github.com/aretw0/guidepost/pkg/clock"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/dsl"
	"github.com/aretw0/guidepost/pkg/ports"
)

// ExampleNew walks a two-step script over an in-memory host.
// A real host would plug its router and DOM bridge into ports.Host instead.
func ExampleNew() {
	// 1. Author the script.
	b := dsl.New("quickstart")
	b.Add("score").On("overview").Target("#score").Text("Compliance score", "")
	b.Add("inventory").On("models").Target("#inventory").Text("Model inventory", "")
	script, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	// 2. Describe the host: views, rendered elements and a router that navigates at once.
	host := testutils.NewHost("overview", "overview", "models")
	host.AutoNavigate(true)
	host.Add("overview", "#score", domain.Rect{X: 10, Y: 10, Width: 120, Height: 40})
	host.Add("models", "#inventory", domain.Rect{X: 10, Y: 80, Width: 300, Height: 200})

	// 3. Build the tour. The manual clock keeps autopilot from firing on its own.
	ctx := context.Background()
	store := memory.NewStore()
	tour, err := guidepost.New(ctx, script, ports.Host{Navigator: host, Query: host, Viewport: host},
		guidepost.WithSignalStore(store),
		guidepost.WithClock(clock.NewManual(time.Now())),
	)
	if err != nil {
		log.Fatal(err)
	}

	// 4. Drive it.
	if err := tour.Start(ctx); err != nil {
		log.Fatal(err)
	}
	s := tour.Snapshot()
	fmt.Printf("%s %s on %s, outline at %.0f,%.0f\n", s.Phase, s.Step.ID, host.CurrentView(), s.Highlight.Left, s.Highlight.Top)

	_ = tour.Next(ctx)
	s = tour.Snapshot()
	fmt.Printf("%s %s on %s\n", s.Phase, s.Step.ID, host.CurrentView())

	_ = tour.Next(ctx)
	active, _ := store.Active(ctx)
	fmt.Printf("%s, signal active: %v\n", tour.Snapshot().Status, active)
	// Output:
	// highlighted score on overview, outline at 2,2
	// highlighted inventory on models
	// ended, signal active: false
}
