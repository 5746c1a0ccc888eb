package cmd

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/jsphweid/sightread/clock"
	"github.com/jsphweid/sightread/constants"
	"github.com/jsphweid/sightread/db"
	"github.com/jsphweid/sightread/exercise"
	"github.com/jsphweid/sightread/game"
	"github.com/jsphweid/sightread/match"
	smidi "github.com/jsphweid/sightread/midi"
	"github.com/jsphweid/sightread/model"
	"github.com/jsphweid/sightread/pattern"
	"github.com/jsphweid/sightread/pitch"
	"github.com/jsphweid/sightread/score"
	"github.com/jsphweid/sightread/store"
	"github.com/jsphweid/sightread/util"
	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

var playFlags struct {
	tempo    int
	timeSig  string
	clef     string
	complex  bool
	measures int
	seed     int64
	notes    []string
	countIn  int
	port     int
	replay   string
	save     bool
	remote   bool
}

func init() {
	playCmd.Flags().IntVar(&playFlags.tempo, "tempo", 80, "tempo in bpm")
	playCmd.Flags().StringVar(&playFlags.timeSig, "time", "4/4", "time signature")
	playCmd.Flags().StringVar(&playFlags.clef, "clef", "treble", "treble, bass or both")
	playCmd.Flags().BoolVar(&playFlags.complex, "complex", false, "allow syncopated figures")
	playCmd.Flags().IntVar(&playFlags.measures, "measures", 1, "measures per exercise")
	playCmd.Flags().Int64Var(&playFlags.seed, "seed", 0, "rng seed, 0 means random")
	playCmd.Flags().StringSliceVar(&playFlags.notes, "notes", nil, "allowed note tokens")
	playCmd.Flags().IntVar(&playFlags.countIn, "count-in", 4, "count-in beats")
	playCmd.Flags().IntVar(&playFlags.port, "port", 0, "midi input port")
	playCmd.Flags().StringVar(&playFlags.replay, "replay", "", "score a recorded midi file instead of listening")
	playCmd.Flags().BoolVar(&playFlags.save, "save", false, "store the result as a session file")
	playCmd.Flags().BoolVar(&playFlags.remote, "remote", false, "also push the score to dynamodb")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Runs a live attempt from a midi input",
	Long:  `Runs a live attempt from a midi input`,
	Run: func(cmd *cobra.Command, args []string) {
		play()
	},
}

func play() {
	p := exercise.FromRequest(model.GenerateRequestBody{
		Tempo:         playFlags.tempo,
		TimeSignature: playFlags.timeSig,
		Clef:          playFlags.clef,
		Complex:       playFlags.complex,
		Measures:      playFlags.measures,
		Seed:          playFlags.seed,
		AllowedNotes:  playFlags.notes,
	})
	fmt.Printf("%v @ %v bpm [%v]\n", p.TimeSignature.Name, p.Tempo, p.EasyScore)

	if playFlags.replay != "" {
		notes, err := smidi.ReadPerformance(playFlags.replay)
		if err != nil {
			panic("Could not read performance: " + err.Error())
		}
		results, summary := exercise.ScoreOffline(p, notes, playFlags.countIn, match.DefaultConfig())
		printResults(results, summary)
		maybeStore(p, summary)
		return
	}

	playLive(p)
}

func playLive(p pattern.Pattern) {
	defer gomidi.CloseDriver()

	in, err := gomidi.InPort(playFlags.port)
	if err != nil {
		fmt.Printf("No midi input on port %v: %v\n", playFlags.port, err)
		return
	}

	cfg := game.DefaultConfig()
	cfg.CountInBeats = playFlags.countIn

	clk := clock.NewMonitor(clock.NewWall(), clock.NewWall())
	a := game.NewAttempt(p, clk, cfg)

	// midi callbacks land on the driver's goroutine
	var mu sync.Mutex
	redraw := debounce.New(50 * time.Millisecond)

	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		var ch, key, vel uint8
		if !msg.GetNoteStart(&ch, &key, &vel) {
			return
		}
		mu.Lock()
		res := a.HandleMidi(pitch.NameFromMidi(key))
		mu.Unlock()
		if res != nil {
			redraw(func() { printProgress(a) })
		}
	}, gomidi.HandleError(func(err error) {
		log.Printf("midi error: %v", err)
	}))
	if err != nil {
		fmt.Printf("Could not listen on midi port: %v\n", err)
		return
	}
	defer stop()

	fmt.Printf("count-in: %v beats\n", playFlags.countIn)
	mu.Lock()
	a.Begin()
	mu.Unlock()

	for {
		mu.Lock()
		a.Tick()
		done := a.Phase() == game.PhaseFeedback
		mu.Unlock()
		if done {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	printResults(a.Matcher().Results(), *a.Summary())
	maybeStore(p, *a.Summary())
}

func printProgress(a *game.Attempt) {
	finalized := 0
	results := a.Matcher().Results()
	for _, r := range results {
		if r.Finalized {
			finalized++
		}
	}
	fmt.Printf("  %v/%v notes\n", finalized, len(results))
}

func printResults(results []match.NoteResult, summary score.Summary) {
	for _, r := range results {
		if r.PlayedPitch != "" && r.PlayedPitch != r.ExpectedPitch {
			fmt.Printf("%3d. %-4v %-12v (played %v)\n", r.Index+1, r.ExpectedPitch, r.Rating, r.PlayedPitch)
			continue
		}
		fmt.Printf("%3d. %-4v %-12v %+.0fms\n", r.Index+1, r.ExpectedPitch, r.Rating, r.DeltaMs)
	}
	fmt.Printf("pitch: %.1f%%  rhythm: %.1f%%  overall: %.1f\n",
		summary.PitchAccuracy, summary.RhythmAccuracy, summary.Overall)
	if summary.Penalty > 0 {
		fmt.Printf("penalty: %.0f\n", summary.Penalty)
	}
	if len(summary.FocusNotes) > 0 {
		fmt.Printf("work on: %v\n", summary.FocusNotes)
	}
}

func maybeStore(p pattern.Pattern, summary score.Summary) {
	if !playFlags.save {
		return
	}
	util.EnsureDataDir()
	now := time.Now().Unix()
	rec := model.SessionRecord{
		ID:         uuid.NewString(),
		StartedAt:  now,
		FinishedAt: now,
		Exercises: []model.ExerciseResult{{
			EasyScore: p.EasyScore,
			Tempo:     p.Tempo,
			Clef:      playFlags.clef,
			Attempts:  1,
			Summary:   summary,
		}},
		AverageOver: summary.Overall,
		Victory:     summary.Overall >= game.VictoryThreshold,
	}
	path, err := store.WriteSession(constants.GetDataDir(), rec)
	if err != nil {
		panic("Could not store session: " + err.Error())
	}
	fmt.Printf("stored %v\n", path)

	if playFlags.remote {
		if err := db.PutSessionScore(rec); err != nil {
			log.Printf("could not push score: %v", err)
		}
	}
}
