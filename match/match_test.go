package match_test

import (
	"testing"

	"github.com/jsphweid/sightread/match"
	"github.com/jsphweid/sightread/timing"
	"github.com/stretchr/testify/assert"
)

func windows(pitches []string, firstMs, spacingMs float64) []timing.Window {
	var res []timing.Window
	for i, p := range pitches {
		noteMs := firstMs + float64(i)*spacingMs
		early := timing.NoteEarlyMs
		if i == 0 {
			early = timing.FirstNoteEarlyMs
		}
		res = append(res, timing.Window{
			Index:   i,
			Pitch:   p,
			NoteMs:  noteMs,
			StartMs: noteMs - early,
			EndMs:   noteMs + timing.NoteLateMs,
		})
	}
	return res
}

func live(m *match.Matcher, in match.Input) *match.NoteResult {
	return m.HandleInput(in, match.PhasePerformance, match.GateLive)
}

func TestExactHitIsPerfect(t *testing.T) {
	assert := assert.New(t)
	m := match.New(windows([]string{"C4", "D4"}, 1000, 1000), match.DefaultConfig())

	r := live(m, match.Input{Pitch: "C4", AtMs: 1000, Source: match.SourceMidi})
	assert.NotNil(r)
	assert.Equal(timing.Perfect, r.Rating)
	assert.True(r.Finalized)
	assert.Equal(0.0, r.DeltaMs)
}

func TestEarliestPendingWindowWins(t *testing.T) {
	assert := assert.New(t)

	// Same pitch twice with overlapping windows: the hit goes to the
	// earlier one.
	m := match.New(windows([]string{"C4", "C4"}, 1000, 400), match.DefaultConfig())

	r := live(m, match.Input{Pitch: "C4", AtMs: 1250, Source: match.SourceMidi})
	assert.Equal(0, r.Index)

	r = live(m, match.Input{Pitch: "C4", AtMs: 1400, Source: match.SourceMidi})
	assert.Equal(1, r.Index)
}

func TestPitchMatchBeatsEarlierWrongWindow(t *testing.T) {
	assert := assert.New(t)

	m := match.New(windows([]string{"C4", "D4"}, 1000, 400), match.DefaultConfig())

	// D4 lands inside both windows; it scores against its own window,
	// not as a wrong pitch on the first.
	r := live(m, match.Input{Pitch: "D4", AtMs: 1250, Source: match.SourceMidi})
	assert.Equal(1, r.Index)
	assert.NotEqual(timing.WrongPitch, r.Rating)
}

func TestWrongPitchDoesNotFinalize(t *testing.T) {
	assert := assert.New(t)
	m := match.New(windows([]string{"C4"}, 1000, 1000), match.DefaultConfig())

	r := live(m, match.Input{Pitch: "F4", AtMs: 1000, Source: match.SourceMidi})
	assert.Equal(timing.WrongPitch, r.Rating)
	assert.False(r.Finalized)
	assert.Equal("F4", r.PlayedPitch)

	// the right note still scores
	r = live(m, match.Input{Pitch: "C4", AtMs: 1050, Source: match.SourceMidi})
	assert.Equal(timing.Perfect, r.Rating)
	assert.True(r.Finalized)
}

func TestUncorrectedWrongPitchOutlivesTheWindow(t *testing.T) {
	assert := assert.New(t)
	m := match.New(windows([]string{"C4", "D4"}, 1000, 1000), match.DefaultConfig())

	live(m, match.Input{Pitch: "F4", AtMs: 1000, Source: match.SourceMidi})

	// the window closes with the wrong attempt still on record; it
	// finalizes as wrong_pitch, not missed
	closed := m.Tick(1301+timing.MissToleranceMs, match.PhasePerformance)
	assert.Len(closed, 1)
	assert.Equal(timing.WrongPitch, closed[0].Rating)
	assert.Equal("F4", closed[0].PlayedPitch)
	assert.True(m.Results()[0].Finalized)
	assert.Equal(timing.WrongPitch, m.Results()[0].Rating)
}

func TestDebounceDropsDoubleTrigger(t *testing.T) {
	assert := assert.New(t)
	m := match.New(windows([]string{"C4", "C4"}, 1000, 1000), match.DefaultConfig())

	r := live(m, match.Input{Pitch: "C4", AtMs: 1000, Source: match.SourceMidi})
	assert.NotNil(r)

	// chatter 50ms later is swallowed, not scored on window 2
	r = live(m, match.Input{Pitch: "C4", AtMs: 1050, Source: match.SourceMidi})
	assert.Nil(r)
}

func TestFinalizedResultIsStable(t *testing.T) {
	assert := assert.New(t)
	m := match.New(windows([]string{"C4"}, 1000, 1000), match.DefaultConfig())

	r := live(m, match.Input{Pitch: "C4", AtMs: 1000, Source: match.SourceMidi})
	assert.Equal(timing.Perfect, r.Rating)

	// a later in-window repeat cannot change the finalized result
	r2 := live(m, match.Input{Pitch: "C4", AtMs: 1250, Source: match.SourceMidi})
	assert.True(r2 == nil || r2.Index != 0 || r2.Rating == timing.Perfect)
	assert.Equal(timing.Perfect, m.Results()[0].Rating)
	assert.Equal(0.0, m.Results()[0].DeltaMs)
}

func TestMissFinalizesAfterTolerance(t *testing.T) {
	assert := assert.New(t)
	m := match.New(windows([]string{"C4", "D4"}, 1000, 1000), match.DefaultConfig())

	missed := m.Tick(1300+timing.MissToleranceMs, match.PhasePerformance)
	assert.Empty(missed)

	missed = m.Tick(1301+timing.MissToleranceMs, match.PhasePerformance)
	assert.Len(missed, 1)
	assert.Equal(timing.Missed, missed[0].Rating)
	assert.Equal(0, missed[0].Index)
	assert.False(m.Results()[1].Finalized)
}

func TestGateBlocksInput(t *testing.T) {
	assert := assert.New(t)
	m := match.New(windows([]string{"C4"}, 1000, 1000), match.DefaultConfig())

	r := m.HandleInput(match.Input{Pitch: "C4", AtMs: 1000, Source: match.SourceMidi},
		match.PhaseCountIn, match.GateOff)
	assert.Nil(r)
	assert.False(m.Results()[0].Finalized)

	r = m.HandleInput(match.Input{Pitch: "C4", AtMs: 700, Source: match.SourceMidi},
		match.PhaseCountIn, match.GateEarlyWindow)
	assert.NotNil(r)
	assert.True(r.Finalized)
	assert.Equal(match.PhaseCountIn, r.Phase)
}

func TestMicOverridesCountInMiss(t *testing.T) {
	assert := assert.New(t)

	cfg := match.DefaultConfig()
	m := match.New(windows([]string{"C4"}, 1000, 1000), cfg)

	// the first window misses during the count-in
	m.Tick(2000, match.PhaseCountIn)
	assert.Equal(timing.Missed, m.Results()[0].Rating)

	// a mic hit arriving once the performance is live rescues it: the
	// player did play, the pipeline was just slow
	in := match.Input{Pitch: "C4", AtMs: 1000 + cfg.Mic.BaseLatencyMs, Source: match.SourceMic}
	r := m.HandleInput(in, match.PhasePerformance, match.GateLive)
	assert.NotNil(r)
	assert.Equal(timing.Perfect, r.Rating)

	// a midi hit cannot: keyboards have no pipeline excuse
	m2 := match.New(windows([]string{"C4"}, 1000, 1000), cfg)
	m2.Tick(2000, match.PhaseCountIn)
	r = m2.HandleInput(match.Input{Pitch: "C4", AtMs: 1300, Source: match.SourceMidi},
		match.PhasePerformance, match.GateLive)
	assert.Nil(r)
	assert.Equal(timing.Missed, m2.Results()[0].Rating)
}

func TestMicCompensationApplied(t *testing.T) {
	assert := assert.New(t)

	cfg := match.DefaultConfig()
	m := match.New(windows([]string{"C4", "D4"}, 1000, 1000), cfg)
	live(m, match.Input{Pitch: "C4", AtMs: 1000, Source: match.SourceMidi})

	// mic hit 350ms after the beat with 50ms stabilizer latency reads
	// as dead on once the pipeline is credited back
	in := match.Input{Pitch: "D4", AtMs: 2350, Source: match.SourceMic, StabilizerLatencyMs: 50}
	r := live(m, in)
	assert.NotNil(r)
	assert.Equal(1, r.Index)
	assert.Equal(timing.Perfect, r.Rating)
	assert.Equal(0.0, r.DeltaMs)
}

func TestAntiCheatBurst(t *testing.T) {
	assert := assert.New(t)

	m := match.New(windows([]string{"C4"}, 10000, 1000), match.DefaultConfig())
	assert.Equal(0.0, m.Penalty())

	// three wild notes inside a second, all far outside any window
	live(m, match.Input{Pitch: "F2", AtMs: 1000, Source: match.SourceMidi})
	live(m, match.Input{Pitch: "G2", AtMs: 1200, Source: match.SourceMidi})
	assert.False(m.CheatTripped())
	live(m, match.Input{Pitch: "A2", AtMs: 1400, Source: match.SourceMidi})

	assert.True(m.CheatTripped())
	assert.Equal(100.0, m.Penalty())

	// another burst stacks a second penalty
	live(m, match.Input{Pitch: "F2", AtMs: 3000, Source: match.SourceMidi})
	live(m, match.Input{Pitch: "G2", AtMs: 3100, Source: match.SourceMidi})
	live(m, match.Input{Pitch: "A2", AtMs: 3200, Source: match.SourceMidi})
	assert.Equal(200.0, m.Penalty())
}

func TestCorrectNoteResetsSuspicion(t *testing.T) {
	assert := assert.New(t)

	m := match.New(windows([]string{"C4", "D4"}, 1000, 1000), match.DefaultConfig())

	// wrong, right, wrong, wrong inside a second: the clean hit in the
	// middle keeps the stumbles from reading as a cheat burst
	live(m, match.Input{Pitch: "F4", AtMs: 900, Source: match.SourceMidi})
	r := live(m, match.Input{Pitch: "C4", AtMs: 1000, Source: match.SourceMidi})
	assert.Equal(timing.Perfect, r.Rating)
	live(m, match.Input{Pitch: "G2", AtMs: 1100, Source: match.SourceMidi})
	live(m, match.Input{Pitch: "A2", AtMs: 1200, Source: match.SourceMidi})

	assert.False(m.CheatTripped())
	assert.Equal(0.0, m.Penalty())
}

func TestSlowWrongNotesDoNotTrip(t *testing.T) {
	assert := assert.New(t)

	m := match.New(windows([]string{"C4"}, 10000, 1000), match.DefaultConfig())
	live(m, match.Input{Pitch: "F2", AtMs: 1000, Source: match.SourceMidi})
	live(m, match.Input{Pitch: "G2", AtMs: 2500, Source: match.SourceMidi})
	live(m, match.Input{Pitch: "A2", AtMs: 4000, Source: match.SourceMidi})
	assert.False(m.CheatTripped())
	assert.Equal(0.0, m.Penalty())
}

func TestAbortStopsScoring(t *testing.T) {
	assert := assert.New(t)

	m := match.New(windows([]string{"C4", "D4"}, 1000, 1000), match.DefaultConfig())
	live(m, match.Input{Pitch: "C4", AtMs: 1000, Source: match.SourceMidi})
	m.Abort()

	assert.Nil(live(m, match.Input{Pitch: "D4", AtMs: 2000, Source: match.SourceMidi}))
	assert.Empty(m.Tick(99999, match.PhasePerformance))
	assert.True(m.Aborted())

	m.FinalizeAll(match.PhasePerformance)
	assert.True(m.Done())
	assert.Equal(timing.Perfect, m.Results()[0].Rating)
	assert.Equal(timing.Missed, m.Results()[1].Rating)
}
