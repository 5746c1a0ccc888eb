package cmd

import (
	"fmt"

	"github.com/jsphweid/sightread/store"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspects a session file",
	Long:  `Inspects a session file`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		inspect(args[0])
	},
}

func inspect(path string) {
	rec, err := store.ReadSession(path)
	if err != nil {
		panic("Could not read session: " + err.Error())
	}
	fmt.Printf("id: %v\n", rec.ID)
	fmt.Printf("started: %v finished: %v\n", rec.StartedAt, rec.FinishedAt)
	fmt.Printf("average: %.1f victory: %v\n", rec.AverageOver, rec.Victory)
	for i, ex := range rec.Exercises {
		fmt.Printf("exercise %v: [%v] @ %v bpm, %v attempt(s)\n", i+1, ex.EasyScore, ex.Tempo, ex.Attempts)
		fmt.Printf("  pitch %.1f rhythm %.1f overall %.1f\n",
			ex.Summary.PitchAccuracy, ex.Summary.RhythmAccuracy, ex.Summary.Overall)
		if len(ex.Summary.FocusNotes) > 0 {
			fmt.Printf("  focus: %v\n", ex.Summary.FocusNotes)
		}
	}
}
