package guidepost_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/guidepost"
	"github.com/aretw0/guidepost/pkg/clock"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards a buffer written from the tour loop and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTour(t *testing.T, opts ...guidepost.Option) *guidepost.Tour {
	t.Helper()
	base := []guidepost.Option{
		guidepost.WithClock(clock.NewManual(time.Now())),
		guidepost.WithAutopilot(false),
	}
	tour, err := guidepost.New(context.Background(), demoScript(), hostPorts(demoHost()), append(base, opts...)...)
	require.NoError(t, err)
	return tour
}

func TestRunner_WalksTheTour(t *testing.T) {
	tour := newTour(t)
	out := &syncBuffer{}
	r := &guidepost.Runner{
		Input:  strings.NewReader("n\n\nnext\n"),
		Output: out,
	}

	require.NoError(t, r.Run(context.Background(), tour))

	text := out.String()
	assert.Contains(t, text, "commands:")
	assert.Contains(t, text, "## Score")
	assert.Contains(t, text, "## Inventory")
	assert.Contains(t, text, "## Export")
	assert.Contains(t, text, "Tour finished")
	assert.Equal(t, 1, strings.Count(text, "## Inventory"))
	assert.Equal(t, domain.StatusEnded, tour.Snapshot().Status)
}

func TestRunner_Commands(t *testing.T) {
	tour := newTour(t)
	out := &syncBuffer{}
	r := &guidepost.Runner{
		Input:  strings.NewReader("n\np\na\npause\nresume\nhold\nrelease\nbogus\nq\nn\n"),
		Output: out,
	}

	require.NoError(t, r.Run(context.Background(), tour))

	text := out.String()
	assert.Equal(t, 2, strings.Count(text, "## Score"), "Previous re-enters the first step")
	assert.Contains(t, text, "unknown command")
	assert.Contains(t, text, `"bogus"`)
	assert.Contains(t, text, "Tour finished")
	assert.NotContains(t, text, "## Export")
	assert.Equal(t, domain.StatusEnded, tour.Snapshot().Status)
}

func TestRunner_EOFEndsTour(t *testing.T) {
	tour := newTour(t)
	out := &syncBuffer{}
	r := &guidepost.Runner{Input: strings.NewReader("n\n"), Output: out}

	require.NoError(t, r.Run(context.Background(), tour))
	assert.Equal(t, domain.StatusEnded, tour.Snapshot().Status)
	assert.Contains(t, out.String(), "Tour finished")
}

func TestRunner_HeadlessFollowsAutopilot(t *testing.T) {
	tour := newTour(t, guidepost.WithAutopilot(true), guidepost.WithAutoAdvance(10*time.Millisecond), guidepost.WithClock(clock.New()))
	out := &syncBuffer{}
	r := &guidepost.Runner{Output: out, Headless: true}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Run(ctx, tour))

	text := out.String()
	assert.NotContains(t, text, "commands:")
	assert.Contains(t, text, "## Export")
	assert.Contains(t, text, "Tour finished")
}

func TestRunner_Renderer(t *testing.T) {
	tour := newTour(t)
	out := &syncBuffer{}
	r := &guidepost.Runner{
		Input:    strings.NewReader("q\n"),
		Output:   out,
		Renderer: func(s string) (string, error) { return strings.ToUpper(s), nil },
	}

	require.NoError(t, r.Run(context.Background(), tour))
	assert.Contains(t, out.String(), "## SCORE")
}

func TestRunner_RequiresIO(t *testing.T) {
	tour := newTour(t)
	assert.Error(t, guidepost.NewRunner().Run(context.Background(), tour))
	assert.Error(t, (&guidepost.Runner{Output: &bytes.Buffer{}}).Run(context.Background(), tour))
}

func TestRunner_ContextCancel(t *testing.T) {
	tour := newTour(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &guidepost.Runner{Output: &syncBuffer{}, Headless: true}
	assert.ErrorIs(t, r.Run(ctx, tour), context.Canceled)
}
