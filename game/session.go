package game

import (
	"github.com/google/uuid"
	"github.com/jsphweid/sightread/clock"
	"github.com/jsphweid/sightread/pattern"
	"github.com/jsphweid/sightread/score"
)

const (
	ExercisesPerSession = 10
	VictoryThreshold    = 70.0
)

// Session runs a fixed number of exercises and decides victory.
type Session struct {
	ID uuid.UUID

	cfg      Config
	clk      clock.Clock
	generate func() pattern.Pattern

	current   *Attempt
	completed []score.Summary
}

func NewSession(generate func() pattern.Pattern, clk clock.Clock, cfg Config) *Session {
	return &Session{
		ID:       uuid.New(),
		cfg:      cfg,
		clk:      clk,
		generate: generate,
	}
}

func (s *Session) Current() *Attempt {
	return s.current
}

// NextExercise generates a fresh pattern and starts a new attempt.
func (s *Session) NextExercise() *Attempt {
	s.current = NewAttempt(s.generate(), s.clk, s.cfg)
	return s.current
}

// TryAgain reuses the current pattern in a brand-new attempt.
func (s *Session) TryAgain() *Attempt {
	if s.current == nil {
		return s.NextExercise()
	}
	s.current = NewAttempt(s.current.Pattern, s.clk, s.cfg)
	return s.current
}

// DispatchMidi routes keyboard input to the current attempt, dropping
// anything tagged with a superseded attempt ID. Async device callbacks
// registered during an old attempt die here instead of corrupting the
// new one.
func (s *Session) DispatchMidi(attemptID uuid.UUID, pitchName string) bool {
	if s.current == nil || s.current.ID != attemptID {
		return false
	}
	s.current.HandleMidi(pitchName)
	return true
}

// DispatchMicFrame routes a detection frame the same way.
func (s *Session) DispatchMicFrame(attemptID uuid.UUID, note string, level float64) bool {
	if s.current == nil || s.current.ID != attemptID {
		return false
	}
	s.current.MicFrame(note, level)
	return true
}

// RecordCurrent banks the current attempt's summary as the exercise
// outcome. Only call once the attempt reached feedback.
func (s *Session) RecordCurrent() bool {
	if s.current == nil || s.current.Summary() == nil {
		return false
	}
	s.completed = append(s.completed, *s.current.Summary())
	return true
}

func (s *Session) Completed() []score.Summary {
	return s.completed
}

func (s *Session) Done() bool {
	return len(s.completed) >= ExercisesPerSession
}

func (s *Session) Average() float64 {
	if len(s.completed) == 0 {
		return 0
	}
	total := 0.0
	for _, sum := range s.completed {
		total += sum.Overall
	}
	return total / float64(len(s.completed))
}

func (s *Session) Victory() bool {
	return s.Done() && s.Average() >= VictoryThreshold
}
