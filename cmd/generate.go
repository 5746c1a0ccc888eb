package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/jsphweid/sightread/exercise"
	"github.com/jsphweid/sightread/midi"
	"github.com/jsphweid/sightread/model"
	"github.com/spf13/cobra"
)

var generateFlags struct {
	tempo    int
	timeSig  string
	clef     string
	diff     string
	complex  bool
	measures int
	noRests  bool
	patterns []string
	seed     int64
	count    int
	notes    []string
	midiOut  string
	asJSON   bool
}

func init() {
	generateCmd.Flags().IntVar(&generateFlags.tempo, "tempo", 80, "tempo in bpm")
	generateCmd.Flags().StringVar(&generateFlags.timeSig, "time", "4/4", "time signature")
	generateCmd.Flags().StringVar(&generateFlags.clef, "clef", "treble", "treble, bass or both")
	generateCmd.Flags().StringVar(&generateFlags.diff, "difficulty", "", "beginner or intermediate")
	generateCmd.Flags().BoolVar(&generateFlags.complex, "complex", false, "allow syncopated figures")
	generateCmd.Flags().IntVar(&generateFlags.measures, "measures", 1, "measures per exercise")
	generateCmd.Flags().BoolVar(&generateFlags.noRests, "no-rests", false, "never generate rests")
	generateCmd.Flags().StringSliceVar(&generateFlags.patterns, "patterns", nil, "limit complex figures by id")
	generateCmd.Flags().Int64Var(&generateFlags.seed, "seed", 0, "rng seed, 0 means random")
	generateCmd.Flags().IntVar(&generateFlags.count, "count", 1, "number of exercises")
	generateCmd.Flags().StringSliceVar(&generateFlags.notes, "notes", nil, "allowed note tokens")
	generateCmd.Flags().StringVar(&generateFlags.midiOut, "midi", "", "write the exercise as a midi file")
	generateCmd.Flags().BoolVar(&generateFlags.asJSON, "json", false, "print full json instead of easyscore")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generates exercises",
	Long:  `Generates exercises`,
	Run: func(cmd *cobra.Command, args []string) {
		generate()
	},
}

func generate() {
	for i := 0; i < generateFlags.count; i++ {
		seed := generateFlags.seed
		if seed != 0 {
			seed += int64(i)
		}
		p := exercise.FromRequest(model.GenerateRequestBody{
			Tempo:         generateFlags.tempo,
			TimeSignature: generateFlags.timeSig,
			Clef:          generateFlags.clef,
			Difficulty:    generateFlags.diff,
			Complex:       generateFlags.complex,
			Measures:      generateFlags.measures,
			NoRests:       generateFlags.noRests,
			Patterns:      generateFlags.patterns,
			Seed:          seed,
			AllowedNotes:  generateFlags.notes,
		})

		if generateFlags.asJSON {
			data, err := json.MarshalIndent(exercise.ToResponse(p), "", "  ")
			if err != nil {
				panic("Could not marshal exercise: " + err.Error())
			}
			fmt.Println(string(data))
		} else {
			fmt.Printf("%v @ %v bpm [%v]\n", p.TimeSignature.Name, p.Tempo, p.EasyScore)
		}

		if generateFlags.midiOut != "" {
			path := generateFlags.midiOut
			if generateFlags.count > 1 {
				path = fmt.Sprintf("%v.%v.mid", path, i)
			}
			if err := midi.WriteExercise(p, path); err != nil {
				panic("Could not write midi file: " + err.Error())
			}
			fmt.Printf("wrote %v\n", path)
		}
	}
}
