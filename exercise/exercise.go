package exercise

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/jsphweid/sightread/duration"
	"github.com/jsphweid/sightread/match"
	"github.com/jsphweid/sightread/model"
	"github.com/jsphweid/sightread/pattern"
	"github.com/jsphweid/sightread/pitch"
	"github.com/jsphweid/sightread/rhythm"
	"github.com/jsphweid/sightread/score"
	"github.com/jsphweid/sightread/timing"
)

// FromRequest builds one exercise from request params. A non-zero seed
// makes the result reproducible; the same seed always yields the same
// exercise.
func FromRequest(req model.GenerateRequestBody) pattern.Pattern {
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	ts := duration.Resolve(req.TimeSignature)

	gcfg := rhythm.DefaultConfig()
	gcfg.Complex = req.Complex
	gcfg.AllowRests = !req.NoRests
	gcfg.EnabledPatterns = req.Patterns
	if len(req.NoteDurations) > 0 {
		gcfg.NotePool = req.NoteDurations
	}
	if len(req.RestDurations) > 0 {
		gcfg.RestPool = req.RestDurations
	}
	events := rhythm.NewGenerator(gcfg, rng).Measures(ts, req.Measures)

	bcfg := pattern.Config{
		Clef:         pitch.Clef(req.Clef),
		Tempo:        req.Tempo,
		Difficulty:   pattern.Difficulty(req.Difficulty),
		AllowedNotes: req.AllowedNotes,
	}
	return pattern.NewBuilder(bcfg, rng).Build(events, ts)
}

func ToResponse(p pattern.Pattern) model.GenerateResponse {
	res := model.GenerateResponse{
		EasyScore:     p.EasyScore,
		TimeSignature: p.TimeSignature.Name,
		Tempo:         p.Tempo,
		TotalBeats:    p.TotalBeats,
	}
	for _, n := range p.Notes {
		res.Events = append(res.Events, model.GeneratedEvent{
			Type:      string(n.Event.Type),
			Notation:  n.Event.Notation,
			Units:     n.Event.SixteenthUnits,
			Pitch:     n.Pitch,
			Clef:      string(n.Clef),
			PatternID: n.Event.PatternID,
			BeatIndex: n.Event.BeatIndex,
			BeatSpan:  n.Event.BeatSpan,
		})
	}
	return res
}

// ScoreOffline replays recorded notes against an exercise. Note times
// are ms from the start of the count-in; countInBeats beats pass before
// the first beat of the measure.
func ScoreOffline(p pattern.Pattern, notes []model.PlayedNote, countInBeats int, cfg match.Config) ([]match.NoteResult, score.Summary) {
	if countInBeats <= 0 {
		countInBeats = 4
	}
	beatMs := p.BeatDurationSeconds * 1000
	offsetMs := float64(countInBeats) * beatMs
	earlyOpenMs := offsetMs - math.Min(timing.FirstNoteEarlyMs, 0.8*beatMs)

	windows := timing.Windows(p, offsetMs)
	m := match.New(windows, cfg)

	sorted := make([]model.PlayedNote, len(notes))
	copy(sorted, notes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AtMs < sorted[j].AtMs })

	for _, n := range sorted {
		phase := match.PhasePerformance
		gate := match.GateLive
		if n.AtMs < offsetMs {
			phase = match.PhaseCountIn
			gate = match.GateOff
			if n.AtMs >= earlyOpenMs {
				gate = match.GateEarlyWindow
			}
		}
		m.Tick(n.AtMs, phase)
		source := match.SourceMidi
		if n.Source == "mic" {
			source = match.SourceMic
		}
		m.HandleInput(match.Input{
			Pitch:               pitch.Normalize(n.Pitch),
			AtMs:                n.AtMs,
			Source:              source,
			StabilizerLatencyMs: n.LatencyMs,
		}, phase, gate)
	}

	// sweep everything left as missed
	if len(windows) > 0 {
		m.Tick(windows[len(windows)-1].EndMs+timing.MissToleranceMs+1, match.PhasePerformance)
	}

	results := m.Results()
	return results, score.Compute(results, m.Penalty())
}
