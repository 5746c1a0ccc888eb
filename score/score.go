package score

import (
	"math"
	"sort"

	"github.com/jsphweid/sightread/match"
	"github.com/jsphweid/sightread/timing"
)

const (
	pitchWeight  = 0.7
	rhythmWeight = 0.3
)

type PitchStats struct {
	Attempts      int     `json:"attempts"`
	Correct       int     `json:"correct"`
	AvgAbsDeltaMs float64 `json:"avg_abs_delta_ms"`
}

type Summary struct {
	PitchAccuracy  float64               `json:"pitch_accuracy"`
	RhythmAccuracy float64               `json:"rhythm_accuracy"`
	Overall        float64               `json:"overall"`
	Penalty        float64               `json:"penalty"`
	PerPitch       map[string]PitchStats `json:"per_pitch"`
	FocusNotes     []string              `json:"focus_notes"`
}

// RoundedOverall is the whole-number score handed to persistence.
func (s Summary) RoundedOverall() int {
	return int(math.Round(s.Overall))
}

// Compute aggregates finalized note results into the attempt score.
// Pitch accuracy is the share of notes the player actually hit; rhythm
// accuracy only credits tight (perfect or good) hits.
func Compute(results []match.NoteResult, penalty float64) Summary {
	total := len(results)
	if total == 0 {
		return Summary{PerPitch: map[string]PitchStats{}}
	}

	correct := 0
	tight := 0
	perPitch := make(map[string]PitchStats)

	for _, r := range results {
		stats := perPitch[r.ExpectedPitch]
		stats.Attempts++
		if hit(r.Rating) {
			correct++
			stats.Correct++
			stats.AvgAbsDeltaMs += math.Abs(r.DeltaMs)
		}
		if r.Rating == timing.Perfect || r.Rating == timing.Good {
			tight++
		}
		perPitch[r.ExpectedPitch] = stats
	}

	for name, stats := range perPitch {
		if stats.Correct > 0 {
			stats.AvgAbsDeltaMs /= float64(stats.Correct)
			perPitch[name] = stats
		}
	}

	pitchAcc := 100 * float64(correct) / float64(total)
	rhythmAcc := 100 * float64(tight) / float64(total)
	overall := math.Max(0, pitchWeight*pitchAcc+rhythmWeight*rhythmAcc-penalty)

	return Summary{
		PitchAccuracy:  pitchAcc,
		RhythmAccuracy: rhythmAcc,
		Overall:        overall,
		Penalty:        penalty,
		PerPitch:       perPitch,
		FocusNotes:     focusNotes(perPitch),
	}
}

func hit(r timing.Rating) bool {
	switch r {
	case timing.Perfect, timing.Good, timing.Okay, timing.Early, timing.Late:
		return true
	default:
		return false
	}
}

// focusNotes ranks pitches the player struggled with most, up to three,
// for the post-attempt coaching screen. Worst hit rate first, loosest
// timing breaking ties.
func focusNotes(perPitch map[string]PitchStats) []string {
	type ranked struct {
		name    string
		hitRate float64
		avgAbs  float64
	}
	var rs []ranked
	for name, stats := range perPitch {
		if stats.Attempts == 0 {
			continue
		}
		rate := float64(stats.Correct) / float64(stats.Attempts)
		if rate == 1 && stats.AvgAbsDeltaMs <= timing.PerfectMs {
			continue
		}
		rs = append(rs, ranked{name: name, hitRate: rate, avgAbs: stats.AvgAbsDeltaMs})
	}
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].hitRate != rs[j].hitRate {
			return rs[i].hitRate < rs[j].hitRate
		}
		if rs[i].avgAbs != rs[j].avgAbs {
			return rs[i].avgAbs > rs[j].avgAbs
		}
		return rs[i].name < rs[j].name
	})
	var res []string
	for i := 0; i < len(rs) && i < 3; i++ {
		res = append(res, rs[i].name)
	}
	return res
}
