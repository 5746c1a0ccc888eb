package pitch

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

type Clef string

const (
	Treble Clef = "treble"
	Bass   Clef = "bass"
	Both   Clef = "both"
)

// Natural notes playable on each staff without ledger-line extremes.
var TrebleNotes = []string{
	"G3", "A3", "B3",
	"C4", "D4", "E4", "F4", "G4", "A4", "B4",
	"C5", "D5", "E5", "F5", "G5", "A5", "B5",
	"C6",
}

var BassNotes = []string{
	"B1",
	"C2", "D2", "E2", "F2", "G2", "A2", "B2",
	"C3", "D3", "E3", "F3", "G3", "A3", "B3",
	"C4", "D4", "E4", "F4",
}

var semitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

var sharpNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// MidiNumber parses names like "C4", "F#3" or "Bb2". Middle C is 60.
func MidiNumber(name string) (uint8, error) {
	if len(name) < 2 {
		return 0, fmt.Errorf("bad note name: %v", name)
	}
	letter := name[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	semi, ok := semitones[letter]
	if !ok {
		return 0, fmt.Errorf("bad note name: %v", name)
	}
	rest := name[1:]
	for len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		if rest[0] == '#' {
			semi++
		} else {
			semi--
		}
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("bad note name: %v", name)
	}
	num := 12*(octave+1) + semi
	if num < 0 || num > 127 {
		return 0, fmt.Errorf("note out of midi range: %v", name)
	}
	return uint8(num), nil
}

// NameFromMidi uses sharp spellings for the accidentals.
func NameFromMidi(num uint8) string {
	return fmt.Sprintf("%v%v", sharpNames[num%12], int(num)/12-1)
}

func Frequency(name string) (float64, error) {
	num, err := MidiNumber(name)
	if err != nil {
		return 0, err
	}
	return 440 * math.Pow(2, (float64(num)-69)/12), nil
}

// NearestNote maps a detected frequency to the closest equal-tempered
// note name. Returns empty string for junk input.
func NearestNote(freqHz float64) string {
	if freqHz <= 0 {
		return ""
	}
	num := math.Round(69 + 12*math.Log2(freqHz/440))
	if num < 0 || num > 127 {
		return ""
	}
	return NameFromMidi(uint8(num))
}

func Octave(name string) int {
	num, err := MidiNumber(name)
	if err != nil {
		return 0
	}
	return int(num)/12 - 1
}

// InferClef decides the staff for a pitch when the exercise uses both
// clefs. Octave 4 and up reads on treble.
func InferClef(name string) Clef {
	if Octave(name) >= 4 {
		return Treble
	}
	return Bass
}

func NotesForClef(clef Clef) []string {
	switch clef {
	case Bass:
		return BassNotes
	case Both:
		res := make([]string, 0, len(BassNotes)+len(TrebleNotes))
		res = append(res, BassNotes...)
		for _, n := range TrebleNotes {
			if !slices.Contains(res, n) {
				res = append(res, n)
			}
		}
		return res
	default:
		return TrebleNotes
	}
}

func IsValidForClef(name string, clef Clef) bool {
	return slices.Contains(NotesForClef(clef), name)
}

// Normalize uppercases the letter and strips whitespace so user-supplied
// tokens like " c4" still resolve.
func Normalize(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
