package rhythm

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/jsphweid/sightread/duration"
	"golang.org/x/exp/slices"
)

type EventType string

const (
	NoteEvent EventType = "note"
	RestEvent EventType = "rest"
)

type Event struct {
	Type           EventType
	Notation       string
	SixteenthUnits int
	IsDotted       bool
	PatternID      string
	BeatIndex      int
	BeatSpan       int
}

type Config struct {
	// NotePool and RestPool hold vexflow codes ("q", "8", ...).
	NotePool   []string
	RestPool   []string
	AllowRests bool

	RestProbability       float64
	EighthPairProbability float64

	Complex bool
	// EnabledPatterns limits which archetypes may appear; nil means all.
	EnabledPatterns            []string
	SingleArchetypeProbability float64
	MultiArchetypeProbability  float64
}

func DefaultConfig() Config {
	return Config{
		NotePool:                   []string{"q", "8"},
		RestPool:                   []string{"q", "8"},
		AllowRests:                 true,
		RestProbability:            0.25,
		EighthPairProbability:      0.35,
		SingleArchetypeProbability: 0.4,
		MultiArchetypeProbability:  0.25,
	}
}

type Generator struct {
	cfg Config
	rng *rand.Rand
	seq int
}

func NewGenerator(cfg Config, rng *rand.Rand) *Generator {
	if len(cfg.NotePool) == 0 {
		cfg.NotePool = DefaultConfig().NotePool
	}
	if len(cfg.RestPool) == 0 {
		cfg.RestPool = DefaultConfig().RestPool
	}
	return &Generator{cfg: cfg, rng: rng}
}

func TotalUnits(events []Event) int {
	total := 0
	for _, e := range events {
		total += e.SixteenthUnits
	}
	return total
}

// Measure generates one measure of rhythm. The result always sums to
// exactly ts.MeasureUnits.
func (g *Generator) Measure(ts duration.TimeSignature) []Event {
	var events []Event
	units := 0

	for units < ts.MeasureUnits {
		beatIndex := units / ts.UnitsPerBeat
		atBeatStart := units%ts.UnitsPerBeat == 0
		beatsLeft := (ts.MeasureUnits - units) / ts.UnitsPerBeat

		// Archetypes and eighth pairs assume sixteenth-grid beats.
		if atBeatStart && ts.UnitsPerBeat == 4 {
			if multi := g.enabled(multiBeatArchetypes); g.cfg.Complex && beatsLeft >= 2 && len(multi) > 0 && g.rng.Float64() < g.cfg.MultiArchetypeProbability {
				arch := multi[g.rng.Intn(len(multi))]
				events = append(events, archetypeEvents(arch, g.nextPatternID(arch.ID), beatIndex)...)
				units += arch.Beats * ts.UnitsPerBeat
				continue
			}
			if single := g.enabled(singleBeatArchetypes); g.cfg.Complex && len(single) > 0 && g.rng.Float64() < g.cfg.SingleArchetypeProbability {
				arch := single[g.rng.Intn(len(single))]
				events = append(events, archetypeEvents(arch, g.nextPatternID(arch.ID), beatIndex)...)
				units += arch.Beats * ts.UnitsPerBeat
				continue
			}
			if slices.Contains(g.cfg.NotePool, "8") && g.rng.Float64() < g.cfg.EighthPairProbability {
				pair := Event{
					Type:           NoteEvent,
					Notation:       "8",
					SixteenthUnits: 2,
					PatternID:      g.nextPatternID("eighthPair"),
					BeatIndex:      beatIndex,
					BeatSpan:       1,
				}
				first, second := pair, pair
				// either half may rest, note/rest combos included,
				// as long as the measure does not open on a rest
				eighthRest := g.cfg.AllowRests && slices.Contains(g.cfg.RestPool, "8")
				if eighthRest && len(events) > 0 && g.rng.Float64() < g.cfg.RestProbability {
					first.Type = RestEvent
				}
				if eighthRest && g.rng.Float64() < g.cfg.RestProbability {
					second.Type = RestEvent
				}
				events = append(events, first, second)
				units += 4
				continue
			}
		}

		chosen, ok := g.pickPlain(ts, units, atBeatStart)
		if !ok {
			break
		}

		typ := NoteEvent
		if g.cfg.AllowRests && len(events) > 0 && slices.Contains(g.cfg.RestPool, chosen.Notation) && g.rng.Float64() < g.cfg.RestProbability {
			typ = RestEvent
		}
		events = append(events, Event{
			Type:           typ,
			Notation:       chosen.Notation,
			SixteenthUnits: chosen.SixteenthUnits,
			IsDotted:       chosen.IsDotted,
			BeatIndex:      beatIndex,
			BeatSpan:       beatSpan(chosen.SixteenthUnits, ts.UnitsPerBeat),
		})
		units += chosen.SixteenthUnits
	}

	return g.pad(events, ts)
}

// Measures chains n measures into one continuous phrase, offsetting
// beat indexes so timing windows line up across barlines.
func (g *Generator) Measures(ts duration.TimeSignature, n int) []Event {
	if n < 1 {
		n = 1
	}
	var all []Event
	for m := 0; m < n; m++ {
		for _, e := range g.Measure(ts) {
			e.BeatIndex += m * ts.Beats
			all = append(all, e)
		}
	}
	return all
}

func (g *Generator) enabled(pool []Archetype) []Archetype {
	if len(g.cfg.EnabledPatterns) == 0 {
		return pool
	}
	var out []Archetype
	for _, a := range pool {
		if slices.Contains(g.cfg.EnabledPatterns, a.ID) {
			out = append(out, a)
		}
	}
	return out
}

// pickPlain selects a pool duration that keeps the measure on the beat
// grid: within-beat fills never cross the beat boundary and multi-beat
// values only start on a beat.
func (g *Generator) pickPlain(ts duration.TimeSignature, units int, atBeatStart bool) (duration.Duration, bool) {
	unitsLeftInBeat := ts.UnitsPerBeat - units%ts.UnitsPerBeat
	unitsLeftInMeasure := ts.MeasureUnits - units

	var candidates []duration.Duration
	for _, code := range g.cfg.NotePool {
		d, ok := duration.ByNotation(code)
		if !ok || d.SixteenthUnits > unitsLeftInMeasure {
			continue
		}
		// Isolated eighths off the beat grid read badly; they only
		// enter via pairs and archetypes.
		if d.Notation == "8" {
			continue
		}
		if d.SixteenthUnits <= unitsLeftInBeat {
			candidates = append(candidates, d)
			continue
		}
		if atBeatStart && d.SixteenthUnits%ts.UnitsPerBeat == 0 {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return duration.Duration{}, false
	}
	return candidates[g.rng.Intn(len(candidates))], true
}

// nextPatternID mints an ID unique within this generator, so repeated
// insertions of the same figure stay distinguishable.
func (g *Generator) nextPatternID(name string) string {
	g.seq++
	return fmt.Sprintf("%v#%v", name, g.seq)
}

// ArchetypeName strips the per-insertion suffix off a pattern ID.
func ArchetypeName(patternID string) string {
	if i := strings.IndexByte(patternID, '#'); i >= 0 {
		return patternID[:i]
	}
	return patternID
}

func archetypeEvents(arch Archetype, id string, beatIndex int) []Event {
	var res []Event
	for _, code := range arch.Notations {
		d, _ := duration.ByNotation(code)
		res = append(res, Event{
			Type:           NoteEvent,
			Notation:       d.Notation,
			SixteenthUnits: d.SixteenthUnits,
			IsDotted:       d.IsDotted,
			PatternID:      id,
			BeatIndex:      beatIndex,
			BeatSpan:       arch.Beats,
		})
	}
	return res
}

func beatSpan(units, unitsPerBeat int) int {
	span := units / unitsPerBeat
	if span < 1 {
		return 1
	}
	return span
}

// pad tops a short measure up to its exact unit count: quarter rests for
// each whole missing beat, sixteenth notes for the rest.
func (g *Generator) pad(events []Event, ts duration.TimeSignature) []Event {
	units := TotalUnits(events)
	for ts.MeasureUnits-units >= 4 {
		beatIndex := units / ts.UnitsPerBeat
		typ := RestEvent
		if len(events) == 0 || !g.cfg.AllowRests {
			typ = NoteEvent
		}
		events = append(events, Event{
			Type:           typ,
			Notation:       "q",
			SixteenthUnits: 4,
			BeatIndex:      beatIndex,
			BeatSpan:       1,
		})
		units += 4
	}
	for units < ts.MeasureUnits {
		beatIndex := units / ts.UnitsPerBeat
		events = append(events, Event{
			Type:           NoteEvent,
			Notation:       "16",
			SixteenthUnits: 1,
			BeatIndex:      beatIndex,
			BeatSpan:       1,
		})
		units++
	}
	return events
}
