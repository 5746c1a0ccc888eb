package timing

import (
	"math"

	"github.com/jsphweid/sightread/pattern"
	"github.com/jsphweid/sightread/rhythm"
)

const (
	FirstNoteEarlyMs = 500.0
	NoteEarlyMs      = 200.0
	NoteLateMs       = 300.0
	MissToleranceMs  = 200.0

	PerfectMs = 100.0
	GoodMs    = 200.0
	OkayMs    = 300.0
)

type Rating string

const (
	Perfect    Rating = "perfect"
	Good       Rating = "good"
	Okay       Rating = "okay"
	Early      Rating = "early"
	Late       Rating = "late"
	Missed     Rating = "missed"
	WrongPitch Rating = "wrong_pitch"
)

// Window is the accept interval around one expected note, in ms on the
// performance clock. StartMs may precede NoteMs by the early lead.
type Window struct {
	Index   int
	Pitch   string
	NoteMs  float64
	StartMs float64
	EndMs   float64
}

// Windows lays out expected note times for a pattern. offsetMs is where
// the first beat of the measure lands (i.e. the end of the count-in).
// Rests produce no windows.
func Windows(p pattern.Pattern, offsetMs float64) []Window {
	beatMs := p.BeatDurationSeconds * 1000
	unitMs := beatMs / float64(p.TimeSignature.UnitsPerBeat)

	var res []Window
	units := 0
	for _, n := range p.Notes {
		if n.Event.Type == rhythm.NoteEvent {
			noteMs := offsetMs + float64(units)*unitMs
			early := NoteEarlyMs
			if len(res) == 0 {
				early = FirstNoteEarlyMs
			}
			res = append(res, Window{
				Index:   len(res),
				Pitch:   n.Pitch,
				NoteMs:  noteMs,
				StartMs: noteMs - early,
				EndMs:   noteMs + NoteLateMs,
			})
		}
		units += n.Event.SixteenthUnits
	}
	return res
}

// Evaluate classifies a timing delta (actual - expected, ms) into a
// rating and its rhythm credit.
func Evaluate(deltaMs float64) (Rating, float64) {
	abs := math.Abs(deltaMs)
	switch {
	case abs <= PerfectMs:
		return Perfect, 1.0
	case abs <= GoodMs:
		return Good, 0.8
	case abs <= OkayMs:
		return Okay, 0.5
	case deltaMs < 0:
		return Early, 0.3
	default:
		return Late, 0.3
	}
}

// Credit returns the rhythm credit for an already-known rating.
func Credit(r Rating) float64 {
	switch r {
	case Perfect:
		return 1.0
	case Good:
		return 0.8
	case Okay:
		return 0.5
	case Early, Late:
		return 0.3
	default:
		return 0
	}
}

// MicCompensation adjusts deltas for the detection pipeline's lag before
// classification. Base latency covers the analyzer chain, the measured
// stabilizer latency rides on top, and the slop absorbs jitter that
// should not count against the player.
type MicCompensation struct {
	BaseLatencyMs        float64
	SlopMs               float64
	FirstNoteLateGraceMs float64
}

func DefaultMicCompensation() MicCompensation {
	return MicCompensation{
		BaseLatencyMs:        300,
		SlopMs:               110,
		FirstNoteLateGraceMs: 400,
	}
}

// Adjust shifts a raw delta by the known pipeline latency, then forgives
// up to SlopMs of the remainder. The first note of an attempt gets extra
// late grace since players settle in on it.
func (m MicCompensation) Adjust(deltaMs, stabilizerLatencyMs float64, firstNote bool) float64 {
	d := deltaMs - m.BaseLatencyMs - stabilizerLatencyMs
	if firstNote && d > 0 {
		d -= math.Min(d, m.FirstNoteLateGraceMs)
	}
	if d > 0 {
		d -= math.Min(d, m.SlopMs)
	} else {
		d += math.Min(-d, m.SlopMs)
	}
	return d
}
