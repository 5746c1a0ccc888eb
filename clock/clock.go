package clock

import (
	"fmt"
	"time"
)

// Clock is whatever drives attempt time. The audio context clock is
// preferred when one exists since scheduled playback is aligned to it;
// the wall clock is the fallback.
type Clock interface {
	Seconds() float64
}

type Wall struct {
	start time.Time
}

func NewWall() *Wall {
	return &Wall{start: time.Now()}
}

func (w *Wall) Seconds() float64 {
	return time.Since(w.start).Seconds()
}

const (
	stallProbeWait  = 200 * time.Millisecond
	stallMinDelta   = 0.01
	stableThreshold = 0.05
	stableAttempts  = 5
)

// Monitor wraps a preferred clock with stall detection. sleep is
// injectable for tests.
type Monitor struct {
	preferred Clock
	fallback  Clock
	sleep     func(time.Duration)

	usingFallback bool
}

func NewMonitor(preferred, fallback Clock) *Monitor {
	return &Monitor{preferred: preferred, fallback: fallback, sleep: time.Sleep}
}

func (m *Monitor) SetSleep(sleep func(time.Duration)) {
	m.sleep = sleep
}

func (m *Monitor) Seconds() float64 {
	if m.usingFallback {
		return m.fallback.Seconds()
	}
	return m.preferred.Seconds()
}

func (m *Monitor) UsingFallback() bool {
	return m.usingFallback
}

// Probe checks whether the preferred clock is actually advancing. A
// suspended audio context reports a frozen currentTime; when we see
// that, force the fallback so the attempt can proceed.
func (m *Monitor) Probe() bool {
	if m.usingFallback {
		return false
	}
	before := m.preferred.Seconds()
	m.sleep(stallProbeWait)
	if m.preferred.Seconds()-before < stallMinDelta {
		m.usingFallback = true
		return true
	}
	return false
}

// WaitForStable blocks until two consecutive reads of the active clock
// agree within the threshold, giving up after maxAttempts.
func (m *Monitor) WaitForStable(threshold float64, maxAttempts int) error {
	if threshold <= 0 {
		threshold = stableThreshold
	}
	if maxAttempts <= 0 {
		maxAttempts = stableAttempts
	}
	prev := m.Seconds()
	for i := 0; i < maxAttempts; i++ {
		m.sleep(stallProbeWait)
		now := m.Seconds()
		elapsed := now - prev
		expected := stallProbeWait.Seconds()
		if elapsed > 0 && elapsed-expected < threshold && expected-elapsed < threshold {
			return nil
		}
		prev = now
	}
	return fmt.Errorf("clock did not stabilize after %v attempts", maxAttempts)
}
