package clock_test

import (
	"testing"
	"time"

	"github.com/aretw0/guidepost/pkg/clock"
	"github.com/stretchr/testify/assert"
)

func TestManual_FiresInDeadlineOrder(t *testing.T) {
	c := clock.NewManual(time.Unix(0, 0))
	var order []string

	c.AfterFunc(300*time.Millisecond, func() { order = append(order, "c") })
	c.AfterFunc(100*time.Millisecond, func() { order = append(order, "a") })
	c.AfterFunc(200*time.Millisecond, func() { order = append(order, "b") })

	c.Advance(250 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, c.Pending())

	c.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, c.Pending())
}

func TestManual_StopPreventsFire(t *testing.T) {
	c := clock.NewManual(time.Unix(0, 0))
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second Stop reports already stopped")

	c.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestManual_CallbackSchedulesWithinSameAdvance(t *testing.T) {
	start := time.Unix(0, 0)
	c := clock.NewManual(start)
	var at []time.Duration

	var tick func()
	tick = func() {
		at = append(at, c.Now().Sub(start))
		if len(at) < 3 {
			c.AfterFunc(500*time.Millisecond, tick)
		}
	}
	c.AfterFunc(500*time.Millisecond, tick)

	c.Advance(10 * time.Second)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second, 1500 * time.Millisecond}, at)
	assert.Equal(t, start.Add(10*time.Second), c.Now())
}

func TestManual_StopAfterFire(t *testing.T) {
	c := clock.NewManual(time.Unix(0, 0))
	timer := c.AfterFunc(0, func() {})
	c.Advance(0)
	assert.False(t, timer.Stop())
}
