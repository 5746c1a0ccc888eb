package match

import (
	"github.com/jsphweid/sightread/timing"
)

type Phase string

const (
	PhaseCountIn     Phase = "count_in"
	PhasePerformance Phase = "performance"
)

// Gate mirrors the timing state the attempt is in. Input only scores
// when the gate agrees with the phase: early hits during the count-in
// need the early window open, performance hits need the live gate.
type Gate string

const (
	GateOff         Gate = "off"
	GateEarlyWindow Gate = "early_window"
	GateLive        Gate = "live"
)

type Source string

const (
	SourceMidi Source = "midi"
	SourceMic  Source = "mic"
)

type Input struct {
	Pitch  string
	AtMs   float64
	Source Source
	// StabilizerLatencyMs rides along on mic input.
	StabilizerLatencyMs float64
}

type NoteResult struct {
	Index         int
	ExpectedPitch string
	PlayedPitch   string
	Rating        timing.Rating
	DeltaMs       float64
	Finalized     bool
	Phase         Phase
	Source        Source
}

type Config struct {
	DebounceMs     float64
	Mic            timing.MicCompensation
	CheatWindowMs  float64
	CheatThreshold int
	CheatPenalty   float64
}

func DefaultConfig() Config {
	return Config{
		DebounceMs:     80,
		Mic:            timing.DefaultMicCompensation(),
		CheatWindowMs:  1000,
		CheatThreshold: 3,
		CheatPenalty:   100,
	}
}

type Matcher struct {
	cfg     Config
	windows []timing.Window
	results []NoteResult

	lastInputMs map[string]float64
	cheat       antiCheat
	aborted     bool
}

func New(windows []timing.Window, cfg Config) *Matcher {
	results := make([]NoteResult, len(windows))
	for i, w := range windows {
		results[i] = NoteResult{Index: i, ExpectedPitch: w.Pitch}
	}
	return &Matcher{
		cfg:         cfg,
		windows:     windows,
		results:     results,
		lastInputMs: make(map[string]float64),
		cheat: antiCheat{
			windowMs:  cfg.CheatWindowMs,
			threshold: cfg.CheatThreshold,
			penalty:   cfg.CheatPenalty,
		},
	}
}

func (m *Matcher) Results() []NoteResult {
	return m.results
}

func (m *Matcher) Penalty() float64 {
	return m.cheat.total
}

func (m *Matcher) CheatTripped() bool {
	return m.cheat.latched
}

func (m *Matcher) Aborted() bool {
	return m.aborted
}

// Abort stops all further scoring. Already-finalized results stand.
func (m *Matcher) Abort() {
	m.aborted = true
}

// Done reports whether every expected note has a finalized result.
func (m *Matcher) Done() bool {
	for _, r := range m.results {
		if !r.Finalized {
			return false
		}
	}
	return true
}

// HandleInput scores one played note against the expected windows.
// Returns the updated result, or nil when the input was ignored.
func (m *Matcher) HandleInput(in Input, phase Phase, gate Gate) *NoteResult {
	if m.aborted {
		return nil
	}

	if !gateOpen(phase, gate) {
		// Playing while nothing is scoreable is what cheaters mashing
		// keys look like.
		m.cheat.record(in.AtMs)
		return nil
	}

	if last, ok := m.lastInputMs[in.Pitch]; ok && in.AtMs-last < m.cfg.DebounceMs {
		return nil
	}
	m.lastInputMs[in.Pitch] = in.AtMs

	t := m.effectiveTime(in)

	pitchIdx := -1
	anyIdx := -1
	for i, w := range m.windows {
		if !m.pending(i, phase, in.Source) {
			continue
		}
		if !m.contains(w, t, in.Source) {
			continue
		}
		if anyIdx < 0 {
			anyIdx = i
		}
		if w.Pitch == in.Pitch && pitchIdx < 0 {
			pitchIdx = i
			break
		}
	}

	if pitchIdx < 0 && anyIdx < 0 {
		m.cheat.record(in.AtMs)
		return nil
	}

	if pitchIdx < 0 {
		// Wrong pitch is a failed attempt. The window stays open so
		// the right note can still land.
		r := &m.results[anyIdx]
		if !r.Finalized {
			r.Rating = timing.WrongPitch
			r.PlayedPitch = in.Pitch
			r.Phase = phase
			r.Source = in.Source
		}
		m.cheat.record(in.AtMs)
		return r
	}

	r := &m.results[pitchIdx]
	w := m.windows[pitchIdx]

	delta := in.AtMs - w.NoteMs
	if in.Source == SourceMic {
		delta = m.cfg.Mic.Adjust(delta, in.StabilizerLatencyMs, pitchIdx == 0)
	}
	rating, _ := timing.Evaluate(delta)

	r.PlayedPitch = in.Pitch
	r.Rating = rating
	r.DeltaMs = delta
	r.Finalized = true
	r.Phase = phase
	r.Source = in.Source
	// a real detection resets suspicion, so honest stumbles spread
	// around correct notes never accumulate into a penalty
	m.cheat.clearEvents()
	return r
}

// Tick finalizes misses. Call it every frame with the current clock
// reading; it returns the results newly finalized as missed.
func (m *Matcher) Tick(nowMs float64, phase Phase) []NoteResult {
	if m.aborted {
		return nil
	}
	var missed []NoteResult
	for i := range m.results {
		r := &m.results[i]
		if r.Finalized {
			continue
		}
		if nowMs > m.windows[i].EndMs+timing.MissToleranceMs {
			// an uncorrected wrong attempt keeps its rating; only
			// untouched notes go down as missed
			if r.Rating != timing.WrongPitch {
				r.Rating = timing.Missed
				r.Phase = phase
			}
			r.Finalized = true
			missed = append(missed, *r)
		}
	}
	return missed
}

// FinalizeAll marks every unfinished note missed, used when an attempt
// is cut short.
func (m *Matcher) FinalizeAll(phase Phase) {
	for i := range m.results {
		r := &m.results[i]
		if !r.Finalized {
			if r.Rating != timing.WrongPitch {
				r.Rating = timing.Missed
				r.Phase = phase
			}
			r.Finalized = true
		}
	}
}

func gateOpen(phase Phase, gate Gate) bool {
	switch phase {
	case PhaseCountIn:
		return gate == GateEarlyWindow
	case PhasePerformance:
		return gate == GateLive
	default:
		return false
	}
}

// pending reports whether window i can still accept input. A note
// already finalized as missed during the count-in may be rescued by a
// late-stabilizing mic hit once the performance is running.
func (m *Matcher) pending(i int, phase Phase, source Source) bool {
	r := m.results[i]
	if !r.Finalized {
		return true
	}
	return r.Rating == timing.Missed &&
		r.Phase == PhaseCountIn &&
		phase == PhasePerformance &&
		source == SourceMic
}

func (m *Matcher) effectiveTime(in Input) float64 {
	if in.Source == SourceMic {
		return in.AtMs - m.cfg.Mic.BaseLatencyMs - in.StabilizerLatencyMs
	}
	return in.AtMs
}

func (m *Matcher) contains(w timing.Window, t float64, source Source) bool {
	end := w.EndMs
	if source == SourceMic && w.Index == 0 {
		end += m.cfg.Mic.FirstNoteLateGraceMs
	}
	return t >= w.StartMs && t <= end
}

// antiCheat tracks suspicious events (wrong pitches and input outside
// any scoring window) over a sliding time window. Reaching the
// threshold adds a score penalty and latches.
type antiCheat struct {
	windowMs  float64
	threshold int
	penalty   float64

	events  []float64
	total   float64
	latched bool
}

func (a *antiCheat) clearEvents() {
	a.events = a.events[:0]
}

func (a *antiCheat) record(nowMs float64) bool {
	a.events = append(a.events, nowMs)
	kept := a.events[:0]
	for _, t := range a.events {
		if nowMs-t <= a.windowMs {
			kept = append(kept, t)
		}
	}
	a.events = kept
	if len(a.events) >= a.threshold {
		a.total += a.penalty
		a.latched = true
		a.events = a.events[:0]
		return true
	}
	return false
}
