package midi

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jsphweid/sightread/constants"
	"github.com/jsphweid/sightread/model"
	"github.com/jsphweid/sightread/pattern"
	"github.com/jsphweid/sightread/pitch"
	"github.com/jsphweid/sightread/rhythm"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// WriteExercise renders a pattern as a standard MIDI file: a tempo
// track carrying meter and tempo meta, then one track of the notes.
func WriteExercise(p pattern.Pattern, path string) error {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(constants.TicksPerQuarter)

	num, den := meter(p.TimeSignature.Name)

	var meta smf.Track
	meta.Add(0, smf.MetaMeter(num, den))
	meta.Add(0, smf.MetaTempo(float64(p.Tempo)))
	meta.Close(0)
	if err := sm.Add(meta); err != nil {
		return fmt.Errorf("could not add tempo track: %w", err)
	}

	ticksPerUnit := uint32(constants.TicksPerQuarter / 4)

	var track smf.Track
	var restTicks uint32
	for _, n := range p.Notes {
		ticks := uint32(n.Event.SixteenthUnits) * ticksPerUnit
		if n.Event.Type == rhythm.RestEvent {
			restTicks += ticks
			continue
		}
		key, err := pitch.MidiNumber(n.Pitch)
		if err != nil {
			return fmt.Errorf("unplayable pitch %v: %w", n.Pitch, err)
		}
		track.Add(restTicks, midi.NoteOn(0, key, 100))
		track.Add(ticks, midi.NoteOff(0, key))
		restTicks = 0
	}
	track.Close(restTicks)
	if err := sm.Add(track); err != nil {
		return fmt.Errorf("could not add note track: %w", err)
	}

	return sm.WriteFile(path)
}

// ReadPerformance parses a recorded MIDI file into played notes with ms
// offsets from the start of the file, for offline scoring.
func ReadPerformance(path string) (notes []model.PlayedNote, e error) {
	// the smf parser panics on some malformed files
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading midi file: %w", err)
	}
	sm, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, fmt.Errorf("error parsing midi file: %w", err)
	}

	ticks, ok := sm.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errors.New("unsupported time format, expected metric ticks")
	}

	bpm := 120.0
	if changes := sm.TempoChanges(); len(changes) > 0 {
		bpm = changes[0].BPM
	}
	msPerTick := 60000.0 / bpm / float64(ticks)

	for _, track := range sm.Tracks {
		var absTicks uint64
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			var ch, key, vel uint8
			if evt.Message.GetNoteOn(&ch, &key, &vel) {
				// noteoff is sometimes encoded as noteon with velocity 0
				if vel == 0 {
					continue
				}
				notes = append(notes, model.PlayedNote{
					Pitch: pitch.NameFromMidi(key),
					AtMs:  float64(absTicks) * msPerTick,
				})
			}
		}
	}
	return notes, nil
}

func meter(name string) (uint8, uint8) {
	parts := strings.SplitN(name, "/", 2)
	if len(parts) != 2 {
		return 4, 4
	}
	num, err1 := strconv.Atoi(parts[0])
	den, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || num <= 0 || den <= 0 {
		return 4, 4
	}
	return uint8(num), uint8(den)
}
