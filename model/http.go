package model

import "github.com/jsphweid/sightread/score"

type GenerateRequestBody struct {
	Tempo         int    `json:"tempo,omitempty"`
	TimeSignature string `json:"time_signature,omitempty"`
	Clef          string `json:"clef,omitempty"`
	Difficulty    string `json:"difficulty,omitempty"`
	Complex       bool   `json:"complex"`
	Measures      int    `json:"measures,omitempty"`
	Seed          int64  `json:"seed,omitempty"`

	AllowedNotes []string `json:"allowed_notes,omitempty"`

	// NoRests suppresses rests entirely; the pools override which
	// vexflow codes the generator may pick from.
	NoRests       bool     `json:"no_rests,omitempty"`
	NoteDurations []string `json:"note_durations,omitempty"`
	RestDurations []string `json:"rest_durations,omitempty"`

	// Patterns limits the complex archetypes by id, e.g.
	// "dottedEighthSixteenth".
	Patterns []string `json:"patterns,omitempty"`
}

type GeneratedEvent struct {
	Type      string `json:"type"`
	Notation  string `json:"notation"`
	Units     int    `json:"units"`
	Pitch     string `json:"pitch,omitempty"`
	Clef      string `json:"clef,omitempty"`
	PatternID string `json:"pattern_id,omitempty"`
	BeatIndex int    `json:"beat_index"`
	BeatSpan  int    `json:"beat_span"`
}

type GenerateResponse struct {
	EasyScore     string           `json:"easy_score"`
	TimeSignature string           `json:"time_signature"`
	Tempo         int              `json:"tempo"`
	TotalBeats    float64          `json:"total_beats"`
	Events        []GeneratedEvent `json:"events"`
}

// PlayedNote is a recorded input for offline scoring: time in ms from
// the start of the count-in.
type PlayedNote struct {
	Pitch     string  `json:"pitch"`
	AtMs      float64 `json:"at_ms"`
	Source    string  `json:"source,omitempty"`
	LatencyMs float64 `json:"latency_ms,omitempty"`
}

type ScoreRequestBody struct {
	Exercise GenerateRequestBody `json:"exercise"`
	Notes    []PlayedNote        `json:"notes"`
}

type NoteResultBody struct {
	Index    int     `json:"index"`
	Expected string  `json:"expected"`
	Played   string  `json:"played,omitempty"`
	Rating   string  `json:"rating"`
	DeltaMs  float64 `json:"delta_ms"`
}

type ScoreResponse struct {
	Results []NoteResultBody `json:"results"`
	Summary score.Summary    `json:"summary"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
