package timing_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jsphweid/sightread/duration"
	"github.com/jsphweid/sightread/pattern"
	"github.com/jsphweid/sightread/rhythm"
	"github.com/jsphweid/sightread/timing"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateBuckets(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		delta  float64
		rating timing.Rating
		credit float64
	}{
		{0, timing.Perfect, 1.0},
		{100, timing.Perfect, 1.0},
		{-100, timing.Perfect, 1.0},
		{101, timing.Good, 0.8},
		{-150, timing.Good, 0.8},
		{200, timing.Good, 0.8},
		{201, timing.Okay, 0.5},
		{-300, timing.Okay, 0.5},
		{301, timing.Late, 0.3},
		{-301, timing.Early, 0.3},
		{1000, timing.Late, 0.3},
	}

	for _, tt := range tests {
		rating, credit := timing.Evaluate(tt.delta)
		assert.Equal(tt.rating, rating, "delta %v", tt.delta)
		assert.Equal(tt.credit, credit, "delta %v", tt.delta)
	}
}

func TestEvaluateMonotone(t *testing.T) {
	assert := assert.New(t)

	// A smaller absolute delta never scores worse.
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		a := (rng.Float64() - 0.5) * 1200
		b := (rng.Float64() - 0.5) * 1200
		if math.Abs(a) > math.Abs(b) {
			a, b = b, a
		}
		_, ca := timing.Evaluate(a)
		_, cb := timing.Evaluate(b)
		assert.GreaterOrEqual(ca, cb)
	}
}

func TestWindows(t *testing.T) {
	assert := assert.New(t)

	events := []rhythm.Event{
		{Type: rhythm.NoteEvent, Notation: "q", SixteenthUnits: 4},
		{Type: rhythm.RestEvent, Notation: "q", SixteenthUnits: 4},
		{Type: rhythm.NoteEvent, Notation: "h", SixteenthUnits: 8},
	}
	b := pattern.NewBuilder(pattern.Config{
		Clef:         "treble",
		Tempo:        60, // one beat per second
		AllowedNotes: []string{"C4"},
	}, rand.New(rand.NewSource(0)))
	p := b.Build(events, duration.CommonTime())

	windows := timing.Windows(p, 4000)
	assert.Len(windows, 2) // rests produce no windows

	assert.Equal(4000.0, windows[0].NoteMs)
	assert.Equal(4000.0-timing.FirstNoteEarlyMs, windows[0].StartMs)
	assert.Equal(4000.0+timing.NoteLateMs, windows[0].EndMs)

	// second note lands two beats in
	assert.Equal(6000.0, windows[1].NoteMs)
	assert.Equal(6000.0-timing.NoteEarlyMs, windows[1].StartMs)
}

func TestMicCompensation(t *testing.T) {
	assert := assert.New(t)

	mc := timing.DefaultMicCompensation()

	// A mic hit 410ms "late" with zero stabilizer latency nets out to
	// zero once base latency and slop come off.
	d := mc.Adjust(410, 0, false)
	assert.Equal(0.0, d)

	// Residual beyond slop survives.
	d = mc.Adjust(600, 0, false)
	assert.InDelta(190, d, 1e-9)

	// Stabilizer latency shifts further.
	d = mc.Adjust(600, 100, false)
	assert.InDelta(90, d, 1e-9)

	// First-note grace forgives late mic hits.
	d = mc.Adjust(900, 0, true)
	assert.InDelta(90, d, 1e-9)
	d = mc.Adjust(900, 0, false)
	assert.InDelta(490, d, 1e-9)

	// Early deltas move toward zero, never past it.
	d = mc.Adjust(250, 0, false)
	assert.Equal(0.0, d)
}
