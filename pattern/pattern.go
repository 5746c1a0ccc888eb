package pattern

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/jsphweid/sightread/duration"
	"github.com/jsphweid/sightread/pitch"
	"github.com/jsphweid/sightread/rhythm"
	"golang.org/x/exp/slices"
)

type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

type Note struct {
	Pitch string
	Clef  pitch.Clef
	Event rhythm.Event
}

type Pattern struct {
	Notes               []Note
	EasyScore           string
	TimeSignature       duration.TimeSignature
	Tempo               int
	TotalBeats          float64
	BeatDurationSeconds float64
}

type Config struct {
	Clef       pitch.Clef
	Tempo      int
	Difficulty Difficulty

	// AllowedNotes holds tokens: clef-qualified ("treble:C4"), direct
	// pitches ("C4") or bare legacy letter names ("C" means octave 4).
	AllowedNotes []string

	// FrequencyWeights biases candidate ordering toward pitches the
	// student should see more often.
	FrequencyWeights map[string]int
}

type Builder struct {
	cfg Config
	rng *rand.Rand
}

func NewBuilder(cfg Config, rng *rand.Rand) *Builder {
	if cfg.Clef == "" {
		cfg.Clef = pitch.Treble
	}
	if cfg.Tempo <= 0 {
		cfg.Tempo = 80
	}
	if cfg.Tempo < 40 {
		cfg.Tempo = 40
	}
	if cfg.Tempo > 240 {
		cfg.Tempo = 240
	}
	return &Builder{cfg: cfg, rng: rng}
}

// Build assigns pitches to a generated rhythm. On the grand staff each
// beat is assigned one staff up front; every figure anchored to that
// beat draws its pitches from that staff's register.
func (b *Builder) Build(events []rhythm.Event, ts duration.TimeSignature) Pattern {
	candidates := b.candidates()

	var notes []Note
	prevIdx := -1
	table := pitch.NotesForClef(b.cfg.Clef)
	staffFor := map[int]pitch.Clef{}
	staff := func(beat int) pitch.Clef {
		if c, ok := staffFor[beat]; ok {
			return c
		}
		c := pitch.Treble
		if b.rng.Float64() < 0.5 {
			c = pitch.Bass
		}
		staffFor[beat] = c
		return c
	}

	for _, e := range events {
		clef := b.cfg.Clef
		if clef == pitch.Both {
			clef = staff(e.BeatIndex)
		}
		if e.Type == rhythm.RestEvent {
			notes = append(notes, Note{Clef: clef, Event: e})
			continue
		}
		pool := candidates
		if b.cfg.Clef == pitch.Both {
			if staffPool := onStaff(candidates, clef); len(staffPool) > 0 {
				pool = staffPool
			}
		}
		if b.cfg.Difficulty == Beginner && prevIdx >= 0 {
			stepwise := nearbyNotes(pool, table, prevIdx)
			if len(stepwise) > 0 {
				pool = stepwise
			}
		}
		name := pool[b.rng.Intn(len(pool))]
		prevIdx = slices.Index(table, name)
		if !pitch.IsValidForClef(name, clef) {
			clef = pitch.InferClef(name)
		}
		notes = append(notes, Note{Pitch: name, Clef: clef, Event: e})
	}

	totalBeats := float64(rhythm.TotalUnits(events)) / float64(ts.UnitsPerBeat)
	return Pattern{
		Notes:               notes,
		EasyScore:           easyScore(notes),
		TimeSignature:       ts,
		Tempo:               b.cfg.Tempo,
		TotalBeats:          totalBeats,
		BeatDurationSeconds: 60.0 / float64(b.cfg.Tempo),
	}
}

// candidates resolves the allowed-note tokens against the clef tables,
// dropping anything unplayable. An empty result falls back to the first
// five notes of the clef table.
func (b *Builder) candidates() []string {
	var res []string
	for _, token := range b.cfg.AllowedNotes {
		name, clef := parseToken(token)
		if name == "" {
			continue
		}
		if clef != "" && clef != b.cfg.Clef && b.cfg.Clef != pitch.Both {
			continue
		}
		target := b.cfg.Clef
		if clef != "" {
			target = clef
		}
		if !pitch.IsValidForClef(name, target) {
			continue
		}
		if !slices.Contains(res, name) {
			res = append(res, name)
		}
	}
	if len(res) == 0 {
		table := pitch.NotesForClef(b.cfg.Clef)
		res = append(res, table[:5]...)
	}
	if len(b.cfg.FrequencyWeights) > 0 {
		sort.SliceStable(res, func(i, j int) bool {
			return b.cfg.FrequencyWeights[res[i]] > b.cfg.FrequencyWeights[res[j]]
		})
	}
	return res
}

func parseToken(token string) (string, pitch.Clef) {
	t := strings.TrimSpace(token)
	if t == "" {
		return "", ""
	}
	if i := strings.IndexByte(t, ':'); i >= 0 {
		clef := pitch.Clef(strings.ToLower(t[:i]))
		if clef != pitch.Treble && clef != pitch.Bass {
			return "", ""
		}
		return pitch.Normalize(t[i+1:]), clef
	}
	name := pitch.Normalize(t)
	// Bare legacy names like "C" read as octave 4.
	if len(name) == 1 {
		name += "4"
	}
	return name, ""
}

// nearbyNotes keeps candidates within one table index of the previous
// pitch so beginners move stepwise.
func nearbyNotes(candidates, table []string, prevIdx int) []string {
	var res []string
	for _, name := range candidates {
		idx := slices.Index(table, name)
		if idx < 0 {
			continue
		}
		diff := idx - prevIdx
		if diff >= -1 && diff <= 1 {
			res = append(res, name)
		}
	}
	return res
}

// onStaff filters candidates to pitches readable on one staff.
func onStaff(candidates []string, clef pitch.Clef) []string {
	var res []string
	for _, name := range candidates {
		if pitch.IsValidForClef(name, clef) {
			res = append(res, name)
		}
	}
	return res
}

// easyScore renders the pattern in vexflow EasyScore syntax, e.g.
// "C4/q, B4/q/r". Rests sit on the staff midline.
func easyScore(notes []Note) string {
	var parts []string
	for _, n := range notes {
		if n.Event.Type == rhythm.RestEvent {
			placeholder := "B4"
			if n.Clef == pitch.Bass {
				placeholder = "D3"
			}
			parts = append(parts, fmt.Sprintf("%v/%v/r", placeholder, n.Event.Notation))
			continue
		}
		parts = append(parts, fmt.Sprintf("%v/%v", n.Pitch, n.Event.Notation))
	}
	return strings.Join(parts, ", ")
}
