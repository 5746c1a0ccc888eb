package game

import (
	"math"

	"github.com/google/uuid"
	"github.com/jsphweid/sightread/clock"
	"github.com/jsphweid/sightread/match"
	"github.com/jsphweid/sightread/micinput"
	"github.com/jsphweid/sightread/pattern"
	"github.com/jsphweid/sightread/score"
	"github.com/jsphweid/sightread/timing"
)

type Phase string

const (
	PhaseSetup       Phase = "setup"
	PhaseDisplay     Phase = "display"
	PhaseCountIn     Phase = "count_in"
	PhasePerformance Phase = "performance"
	PhaseFeedback    Phase = "feedback"
)

type TimingState string

const (
	TimingOff         TimingState = "off"
	TimingEarlyWindow TimingState = "early_window"
	TimingLive        TimingState = "live"
)

type Config struct {
	CountInBeats int
	Mic          micinput.Config
	Match        match.Config
}

func DefaultConfig() Config {
	return Config{
		CountInBeats: 4,
		Mic:          micinput.DefaultConfig(),
		Match:        match.DefaultConfig(),
	}
}

// Attempt is one run at one exercise. All of its state lives here;
// nothing is shared with the previous attempt, so a new attempt can
// never see stale input from the old one.
type Attempt struct {
	ID      uuid.UUID
	Pattern pattern.Pattern

	cfg Config
	clk clock.Clock

	phase       Phase
	timingState TimingState

	startMs      float64
	earlyOpenMs  float64
	countInEndMs float64
	endMs        float64

	matcher    *match.Matcher
	stabilizer *micinput.Stabilizer
	summary    *score.Summary
}

func NewAttempt(p pattern.Pattern, clk clock.Clock, cfg Config) *Attempt {
	if cfg.CountInBeats <= 0 {
		cfg.CountInBeats = 4
	}
	a := &Attempt{
		ID:          uuid.New(),
		Pattern:     p,
		cfg:         cfg,
		clk:         clk,
		phase:       PhaseDisplay,
		timingState: TimingOff,
	}
	a.stabilizer = micinput.New(cfg.Mic, a.micNoteOn, nil)
	return a
}

func (a *Attempt) Phase() Phase             { return a.phase }
func (a *Attempt) TimingState() TimingState { return a.timingState }
func (a *Attempt) Matcher() *match.Matcher  { return a.matcher }

func (a *Attempt) nowMs() float64 {
	return a.clk.Seconds() * 1000
}

// Begin starts the count-in at the current clock reading and lays out
// the note windows against the count-in's end.
func (a *Attempt) Begin() {
	beatMs := a.Pattern.BeatDurationSeconds * 1000
	a.startMs = a.nowMs()
	a.countInEndMs = a.startMs + float64(a.cfg.CountInBeats)*beatMs

	// the early window opens before the count-in finishes so an eager
	// first note still scores, but never more than most of a beat early
	lead := math.Min(timing.FirstNoteEarlyMs, 0.8*beatMs)
	a.earlyOpenMs = a.countInEndMs - lead

	// the performance runs through the whole pattern, trailing rests
	// included, plus the late margin
	a.endMs = a.countInEndMs + a.Pattern.TotalBeats*beatMs + timing.NoteLateMs

	a.matcher = match.New(timing.Windows(a.Pattern, a.countInEndMs), a.cfg.Match)
	a.stabilizer.Reset()
	a.phase = PhaseCountIn
	a.timingState = TimingOff
}

// Tick drives all time-based transitions. Call it once per frame; it
// returns any notes newly finalized as missed.
func (a *Attempt) Tick() []match.NoteResult {
	now := a.nowMs()

	switch a.phase {
	case PhaseCountIn:
		if now >= a.earlyOpenMs && a.timingState == TimingOff {
			a.timingState = TimingEarlyWindow
		}
		if now >= a.countInEndMs {
			a.phase = PhasePerformance
			a.timingState = TimingLive
		}
	case PhasePerformance, PhaseFeedback:
	default:
		return nil
	}

	if a.matcher == nil || a.phase == PhaseFeedback {
		return nil
	}

	missed := a.matcher.Tick(now, a.matchPhase())
	if now >= a.endMs && a.matcher.Done() {
		a.finish()
	}
	return missed
}

// HandleMidi scores a note-on from a keyboard.
func (a *Attempt) HandleMidi(pitchName string) *match.NoteResult {
	return a.handleInput(match.Input{
		Pitch:  pitchName,
		AtMs:   a.nowMs(),
		Source: match.SourceMidi,
	})
}

// MicFrame feeds one pitch-detection frame through the stabilizer; a
// stabilized note lands in the matcher via micNoteOn.
func (a *Attempt) MicFrame(note string, level float64) {
	a.stabilizer.Frame(note, level, a.nowMs())
}

func (a *Attempt) micNoteOn(on micinput.NoteOn) {
	a.handleInput(match.Input{
		Pitch:               on.Note,
		AtMs:                on.AtMs,
		Source:              match.SourceMic,
		StabilizerLatencyMs: on.LatencyMs,
	})
}

func (a *Attempt) handleInput(in match.Input) *match.NoteResult {
	if a.matcher == nil {
		return nil
	}
	res := a.matcher.HandleInput(in, a.matchPhase(), a.gate())
	if a.matcher.CheatTripped() && a.phase != PhaseFeedback {
		// a burst of off-window inputs ends the run outright
		a.Abort()
		return res
	}
	if a.nowMs() >= a.endMs && a.matcher.Done() {
		a.finish()
	}
	return res
}

// Abort cuts the attempt short: remaining notes go down as missed and
// the summary is computed with whatever penalty has accrued.
func (a *Attempt) Abort() {
	if a.matcher != nil {
		a.matcher.Abort()
		a.matcher.FinalizeAll(a.matchPhase())
	}
	a.finish()
}

func (a *Attempt) finish() {
	a.phase = PhaseFeedback
	a.timingState = TimingOff
	if a.summary == nil && a.matcher != nil {
		s := score.Compute(a.matcher.Results(), a.matcher.Penalty())
		a.summary = &s
	}
}

// Summary is non-nil once the attempt reaches feedback.
func (a *Attempt) Summary() *score.Summary {
	return a.summary
}

func (a *Attempt) matchPhase() match.Phase {
	if a.phase == PhaseCountIn {
		return match.PhaseCountIn
	}
	return match.PhasePerformance
}

func (a *Attempt) gate() match.Gate {
	switch a.timingState {
	case TimingEarlyWindow:
		return match.GateEarlyWindow
	case TimingLive:
		return match.GateLive
	default:
		return match.GateOff
	}
}
