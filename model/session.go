package model

import "github.com/jsphweid/sightread/score"

// ExerciseResult is one scored exercise inside a session.
type ExerciseResult struct {
	EasyScore string
	Tempo     int
	Clef      string
	Attempts  int
	Summary   score.Summary
}

// SessionRecord is what gets persisted when a session ends.
type SessionRecord struct {
	ID          string
	StartedAt   int64
	FinishedAt  int64
	Exercises   []ExerciseResult
	AverageOver float64
	Victory     bool
}
