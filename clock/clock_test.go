package clock_test

import (
	"testing"
	"time"

	"github.com/jsphweid/sightread/clock"
	"github.com/stretchr/testify/assert"
)

// fake advances only when told to, like a suspended audio context.
type fake struct {
	now  float64
	rate float64 // seconds advanced per second slept
}

func (f *fake) Seconds() float64 { return f.now }

func TestWallClockAdvances(t *testing.T) {
	assert := assert.New(t)
	w := clock.NewWall()
	a := w.Seconds()
	time.Sleep(5 * time.Millisecond)
	assert.Greater(w.Seconds(), a)
}

func TestProbeDetectsStalledClock(t *testing.T) {
	assert := assert.New(t)

	stalled := &fake{rate: 0}
	fallback := &fake{now: 99}
	m := clock.NewMonitor(stalled, fallback)
	m.SetSleep(func(d time.Duration) {
		stalled.now += stalled.rate * d.Seconds()
	})

	assert.False(m.UsingFallback())
	assert.True(m.Probe())
	assert.True(m.UsingFallback())
	assert.Equal(99.0, m.Seconds())

	// already on fallback: probing again is a no-op
	assert.False(m.Probe())
}

func TestProbeKeepsHealthyClock(t *testing.T) {
	assert := assert.New(t)

	healthy := &fake{rate: 1}
	m := clock.NewMonitor(healthy, &fake{})
	m.SetSleep(func(d time.Duration) {
		healthy.now += healthy.rate * d.Seconds()
	})

	assert.False(m.Probe())
	assert.False(m.UsingFallback())
}

func TestWaitForStable(t *testing.T) {
	assert := assert.New(t)

	healthy := &fake{rate: 1}
	m := clock.NewMonitor(healthy, &fake{})
	m.SetSleep(func(d time.Duration) {
		healthy.now += healthy.rate * d.Seconds()
	})
	assert.NoError(m.WaitForStable(0.05, 5))
}

func TestWaitForStableGivesUp(t *testing.T) {
	assert := assert.New(t)

	jumpy := &fake{rate: 10} // advances way faster than real time
	m := clock.NewMonitor(jumpy, &fake{})
	m.SetSleep(func(d time.Duration) {
		jumpy.now += jumpy.rate * d.Seconds()
	})
	assert.Error(m.WaitForStable(0.05, 5))
}
