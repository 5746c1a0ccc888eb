package micinput

// The stabilizer sits between a pitch detector and the matcher. Raw
// detection frames flap between neighboring notes and drop out
// mid-sustain, so a note only counts once it has held for enough
// consecutive frames, and note-off comes from sustained silence rather
// than a single dropped frame.

type Config struct {
	// OnFrames is how many consecutive frames of one note open it.
	OnFrames int
	// ChangeFrames is the (stricter) count to switch away from a
	// sounding note.
	ChangeFrames int
	// OffMs of continuous silence ends the sounding note.
	OffMs float64
	// MinInterOnMs suppresses retriggers right after a note-on.
	MinInterOnMs float64
	// LevelThreshold is the input level below which a frame reads as
	// silence.
	LevelThreshold float64
}

func DefaultConfig() Config {
	return Config{
		OnFrames:       5,
		ChangeFrames:   6,
		OffMs:          140,
		MinInterOnMs:   80,
		LevelThreshold: 0.01,
	}
}

// NoisyConfig trades latency for stability in rooms with bleed.
func NoisyConfig() Config {
	cfg := DefaultConfig()
	cfg.OnFrames = 7
	cfg.ChangeFrames = 9
	cfg.OffMs = 200
	cfg.LevelThreshold = 0.02
	return cfg
}

// FastConfig favors latency for quiet rooms and good mics.
func FastConfig() Config {
	cfg := DefaultConfig()
	cfg.OnFrames = 3
	cfg.ChangeFrames = 4
	cfg.OffMs = 100
	return cfg
}

func ConfigByName(name string) Config {
	switch name {
	case "noisy":
		return NoisyConfig()
	case "fast":
		return FastConfig()
	default:
		return DefaultConfig()
	}
}

type NoteOn struct {
	Note string
	AtMs float64
	// LatencyMs is how long the note took to stabilize; the matcher
	// credits it back when classifying timing.
	LatencyMs float64
}

type Stabilizer struct {
	cfg Config

	onNoteOn  func(NoteOn)
	onNoteOff func(atMs float64)

	activeNote         string
	candidateNote      string
	candidateFrames    int
	candidateStartedMs float64
	lastOnMs           float64
	silenceStartMs     float64
	inSilence          bool
}

func New(cfg Config, onNoteOn func(NoteOn), onNoteOff func(atMs float64)) *Stabilizer {
	s := &Stabilizer{cfg: cfg, onNoteOn: onNoteOn, onNoteOff: onNoteOff}
	s.Reset()
	return s
}

// Reset clears all tracking state. Every new attempt must reset, or a
// candidate from the previous attempt bleeds into the first note.
func (s *Stabilizer) Reset() {
	s.activeNote = ""
	s.candidateNote = ""
	s.candidateFrames = 0
	s.candidateStartedMs = 0
	s.lastOnMs = -1 << 20
	s.silenceStartMs = 0
	s.inSilence = false
}

func (s *Stabilizer) ActiveNote() string {
	return s.activeNote
}

// Frame feeds one detection frame. note is the detected pitch name (may
// be empty), level the signal level, nowMs the frame timestamp.
func (s *Stabilizer) Frame(note string, level float64, nowMs float64) {
	if level < s.cfg.LevelThreshold || note == "" {
		s.silentFrame(nowMs)
		return
	}
	s.inSilence = false

	if note == s.activeNote {
		s.candidateNote = ""
		s.candidateFrames = 0
		return
	}

	if note != s.candidateNote {
		s.candidateNote = note
		s.candidateFrames = 1
		s.candidateStartedMs = nowMs
		return
	}

	s.candidateFrames++
	needed := s.cfg.OnFrames
	if s.activeNote != "" {
		needed = s.cfg.ChangeFrames
	}
	if s.candidateFrames < needed {
		return
	}
	if nowMs-s.lastOnMs < s.cfg.MinInterOnMs {
		return
	}

	s.activeNote = note
	s.lastOnMs = nowMs
	latency := nowMs - s.candidateStartedMs
	s.candidateNote = ""
	s.candidateFrames = 0
	if s.onNoteOn != nil {
		s.onNoteOn(NoteOn{Note: note, AtMs: nowMs, LatencyMs: latency})
	}
}

func (s *Stabilizer) silentFrame(nowMs float64) {
	s.candidateNote = ""
	s.candidateFrames = 0
	if s.activeNote == "" {
		return
	}
	if !s.inSilence {
		s.inSilence = true
		s.silenceStartMs = nowMs
		return
	}
	if nowMs-s.silenceStartMs >= s.cfg.OffMs {
		s.activeNote = ""
		s.inSilence = false
		if s.onNoteOff != nil {
			s.onNoteOff(nowMs)
		}
	}
}
