package duration

import (
	"fmt"
	"strconv"
	"strings"
)

// Everything is measured in sixteenth units. A quarter note is 4.
type Duration struct {
	Name           string
	Notation       string
	SixteenthUnits int
	IsDotted       bool
}

var All = []Duration{
	{Name: "whole", Notation: "w", SixteenthUnits: 16},
	{Name: "dottedHalf", Notation: "h.", SixteenthUnits: 12, IsDotted: true},
	{Name: "half", Notation: "h", SixteenthUnits: 8},
	{Name: "dottedQuarter", Notation: "q.", SixteenthUnits: 6, IsDotted: true},
	{Name: "quarter", Notation: "q", SixteenthUnits: 4},
	{Name: "dottedEighth", Notation: "8.", SixteenthUnits: 3, IsDotted: true},
	{Name: "eighth", Notation: "8", SixteenthUnits: 2},
	{Name: "sixteenth", Notation: "16", SixteenthUnits: 1},
}

func ByNotation(code string) (Duration, bool) {
	for _, d := range All {
		if d.Notation == code {
			return d, true
		}
	}
	return Duration{}, false
}

func ByName(name string) (Duration, bool) {
	for _, d := range All {
		if d.Name == name {
			return d, true
		}
	}
	return Duration{}, false
}

// Beat indices below refer to whole beats within one measure, 0-based.
type TimeSignature struct {
	Name         string
	Beats        int
	MeasureUnits int
	UnitsPerBeat int
	StrongBeats  []int
	MediumBeats  []int
	WeakBeats    []int
	IsCompound   bool
}

var grids = map[string]TimeSignature{
	"4/4": {
		Name:         "4/4",
		Beats:        4,
		MeasureUnits: 16,
		UnitsPerBeat: 4,
		StrongBeats:  []int{0},
		MediumBeats:  []int{2},
		WeakBeats:    []int{1, 3},
	},
	"3/4": {
		Name:         "3/4",
		Beats:        3,
		MeasureUnits: 12,
		UnitsPerBeat: 4,
		StrongBeats:  []int{0},
		WeakBeats:    []int{1, 2},
	},
	"2/4": {
		Name:         "2/4",
		Beats:        2,
		MeasureUnits: 8,
		UnitsPerBeat: 4,
		StrongBeats:  []int{0},
		WeakBeats:    []int{1},
	},
	"6/8": {
		Name:         "6/8",
		Beats:        2,
		MeasureUnits: 12,
		UnitsPerBeat: 6,
		StrongBeats:  []int{0},
		MediumBeats:  []int{1},
		IsCompound:   true,
	},
}

var aliases = map[string]string{
	"common": "4/4",
	"c":      "4/4",
	"waltz":  "3/4",
	"march":  "2/4",
}

// Resolve accepts "4/4" style strings or loose named inputs ("common",
// "waltz"). Numeric signatures outside the curated grids are
// synthesized; anything unparseable falls back to common time.
func Resolve(input string) TimeSignature {
	key := strings.TrimSpace(strings.ToLower(input))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	if ts, ok := grids[key]; ok {
		return ts
	}
	if i := strings.IndexByte(key, '/'); i >= 0 {
		beats, berr := strconv.Atoi(key[:i])
		sub, serr := strconv.Atoi(key[i+1:])
		if berr == nil && serr == nil {
			return ResolveLoose(beats, sub)
		}
	}
	return grids["4/4"]
}

// ResolveLoose synthesizes a grid from a loose {beats, subdivision}
// pair such as 5/4 or 9/8. Denominator-8 signatures whose count divides
// by three group into compound beats of six units.
func ResolveLoose(beats, subdivision int) TimeSignature {
	if beats < 1 || subdivision < 1 || 16%subdivision != 0 {
		return grids["4/4"]
	}
	name := fmt.Sprintf("%v/%v", beats, subdivision)
	if ts, ok := grids[name]; ok {
		return ts
	}

	unitsPerSub := 16 / subdivision
	ts := TimeSignature{
		Name:         name,
		Beats:        beats,
		MeasureUnits: beats * unitsPerSub,
		UnitsPerBeat: unitsPerSub,
		StrongBeats:  []int{0},
	}
	if subdivision == 8 && beats%3 == 0 {
		ts.Beats = beats / 3
		ts.UnitsPerBeat = 6
		ts.IsCompound = true
	}
	for i := 1; i < ts.Beats; i++ {
		if ts.Beats%2 == 0 && i == ts.Beats/2 {
			ts.MediumBeats = append(ts.MediumBeats, i)
		} else {
			ts.WeakBeats = append(ts.WeakBeats, i)
		}
	}
	return ts
}

func CommonTime() TimeSignature {
	return grids["4/4"]
}
