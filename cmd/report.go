package cmd

import (
	"fmt"
	"sort"

	"github.com/jsphweid/sightread/constants"
	"github.com/jsphweid/sightread/db"
	"github.com/jsphweid/sightread/model"
	"github.com/jsphweid/sightread/store"
	"github.com/jsphweid/sightread/util"
	"github.com/spf13/cobra"
)

var reportRemote bool

func init() {
	reportCmd.Flags().BoolVar(&reportRemote, "remote", false, "cross-check against dynamodb")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarizes stored sessions",
	Long:  `Summarizes stored sessions`,
	Run: func(cmd *cobra.Command, args []string) {
		report()
	},
}

type sessionsReport struct {
	numSessions  int
	numExercises int
	avgOverall   float64
	victories    int
	focusCounts  map[string]int
}

func analyzeSessions(recs []model.SessionRecord) sessionsReport {
	report := sessionsReport{focusCounts: make(map[string]int)}

	var overallSum float64
	for _, rec := range recs {
		report.numSessions++
		report.numExercises += len(rec.Exercises)
		overallSum += rec.AverageOver
		if rec.Victory {
			report.victories++
		}
		for _, ex := range rec.Exercises {
			for _, note := range ex.Summary.FocusNotes {
				report.focusCounts[note]++
			}
		}
	}
	if report.numSessions > 0 {
		report.avgOverall = overallSum / float64(report.numSessions)
	}
	return report
}

func report() {
	recs := store.ReadAll(constants.GetDataDir())
	r := analyzeSessions(recs)

	fmt.Printf("sessions: %v\n", r.numSessions)
	fmt.Printf("exercises: %v\n", r.numExercises)
	fmt.Printf("avg overall: %.1f\n", r.avgOverall)
	fmt.Printf("victories: %v\n", r.victories)

	focus := util.GetKeys(r.focusCounts)
	sort.Slice(focus, func(i, j int) bool {
		return r.focusCounts[focus[i]] > r.focusCounts[focus[j]]
	})
	if len(focus) > 5 {
		focus = focus[:5]
	}
	for _, note := range focus {
		fmt.Printf("  trouble note %v: %v times\n", note, r.focusCounts[note])
	}

	if reportRemote {
		var ids []string
		for _, rec := range recs {
			ids = append(ids, rec.ID)
			if len(ids) == 10 {
				break
			}
		}
		stored := db.GetSessionScores(ids)
		fmt.Printf("dynamodb has %v of %v checked\n", len(stored), len(ids))
	}
}
