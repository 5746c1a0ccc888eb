package score_test

import (
	"testing"

	"github.com/jsphweid/sightread/match"
	"github.com/jsphweid/sightread/score"
	"github.com/jsphweid/sightread/timing"
	"github.com/stretchr/testify/assert"
)

func result(pitch string, rating timing.Rating, delta float64) match.NoteResult {
	return match.NoteResult{
		ExpectedPitch: pitch,
		PlayedPitch:   pitch,
		Rating:        rating,
		DeltaMs:       delta,
		Finalized:     true,
	}
}

func TestPerfectRunScoresHundred(t *testing.T) {
	assert := assert.New(t)

	results := []match.NoteResult{
		result("C4", timing.Perfect, 10),
		result("D4", timing.Perfect, -20),
		result("E4", timing.Perfect, 0),
	}
	s := score.Compute(results, 0)

	assert.Equal(100.0, s.PitchAccuracy)
	assert.Equal(100.0, s.RhythmAccuracy)
	assert.Equal(100.0, s.Overall)
	assert.Empty(s.FocusNotes)
}

func TestAccuracyWeights(t *testing.T) {
	assert := assert.New(t)

	// all notes hit, but half only loosely
	results := []match.NoteResult{
		result("C4", timing.Perfect, 0),
		result("D4", timing.Good, 150),
		result("E4", timing.Okay, 250),
		result("F4", timing.Late, 400),
	}
	s := score.Compute(results, 0)

	assert.Equal(100.0, s.PitchAccuracy)
	assert.Equal(50.0, s.RhythmAccuracy) // only perfect and good count
	assert.InDelta(0.7*100+0.3*50, s.Overall, 1e-9)
}

func TestMissesHurtPitchAccuracy(t *testing.T) {
	assert := assert.New(t)

	results := []match.NoteResult{
		result("C4", timing.Perfect, 0),
		result("D4", timing.Missed, 0),
		result("E4", timing.Missed, 0),
		result("F4", timing.Perfect, 0),
	}
	s := score.Compute(results, 0)

	assert.Equal(50.0, s.PitchAccuracy)
	assert.Equal(50.0, s.RhythmAccuracy)
}

func TestPenaltySubtractsAndFloorsAtZero(t *testing.T) {
	assert := assert.New(t)

	results := []match.NoteResult{result("C4", timing.Perfect, 0)}

	s := score.Compute(results, 30)
	assert.Equal(70.0, s.Overall)
	assert.Equal(30.0, s.Penalty)

	s = score.Compute(results, 500)
	assert.Equal(0.0, s.Overall)
}

func TestRoundedOverall(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(67, score.Summary{Overall: 66.5}.RoundedOverall())
	assert.Equal(66, score.Summary{Overall: 66.4}.RoundedOverall())
}

func TestEmptyResults(t *testing.T) {
	assert := assert.New(t)
	s := score.Compute(nil, 0)
	assert.Equal(0.0, s.Overall)
	assert.Empty(s.PerPitch)
}

func TestPerPitchBreakdown(t *testing.T) {
	assert := assert.New(t)

	results := []match.NoteResult{
		result("C4", timing.Perfect, 40),
		result("C4", timing.Good, -160),
		result("D4", timing.Missed, 0),
	}
	s := score.Compute(results, 0)

	c4 := s.PerPitch["C4"]
	assert.Equal(2, c4.Attempts)
	assert.Equal(2, c4.Correct)
	assert.InDelta(100, c4.AvgAbsDeltaMs, 1e-9)

	d4 := s.PerPitch["D4"]
	assert.Equal(1, d4.Attempts)
	assert.Equal(0, d4.Correct)
}

func TestFocusNotesRankWorstFirst(t *testing.T) {
	assert := assert.New(t)

	results := []match.NoteResult{
		result("C4", timing.Perfect, 10),
		result("D4", timing.Missed, 0),
		result("D4", timing.Missed, 0),
		result("E4", timing.Missed, 0),
		result("E4", timing.Perfect, 20),
		result("F4", timing.Okay, 250),
	}
	s := score.Compute(results, 0)

	assert.NotEmpty(s.FocusNotes)
	assert.Equal("D4", s.FocusNotes[0]) // zero hit rate is worst
	assert.Contains(s.FocusNotes, "E4")
	assert.NotContains(s.FocusNotes, "C4")
	assert.LessOrEqual(len(s.FocusNotes), 3)
}
