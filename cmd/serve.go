package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jsphweid/sightread/constants"
	"github.com/jsphweid/sightread/exercise"
	"github.com/jsphweid/sightread/match"
	"github.com/jsphweid/sightread/model"
	"github.com/jsphweid/sightread/store"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the exercise api",
	Long:  `Serves the exercise api`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}

// HandleGenerateExercise builds one exercise from posted params. The
// staff renderer consumes the easyscore string directly.
func HandleGenerateExercise(w http.ResponseWriter, r *http.Request) {
	reqBody, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, 400, "could not read request body")
		return
	}

	var input model.GenerateRequestBody
	if err := json.Unmarshal(reqBody, &input); err != nil {
		writeError(w, 400, "could not unmarshal request body: "+err.Error())
		return
	}

	p := exercise.FromRequest(input)
	json.NewEncoder(w).Encode(exercise.ToResponse(p))
}

// HandleScoreAttempt scores a recorded attempt offline. The exercise is
// regenerated from its seed so the client only ships the note events.
func HandleScoreAttempt(w http.ResponseWriter, r *http.Request) {
	reqBody, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, 400, "could not read request body")
		return
	}

	var input model.ScoreRequestBody
	if err := json.Unmarshal(reqBody, &input); err != nil {
		writeError(w, 400, "could not unmarshal request body: "+err.Error())
		return
	}
	if input.Exercise.Seed == 0 {
		writeError(w, 400, "a seed is required to rebuild the exercise")
		return
	}

	p := exercise.FromRequest(input.Exercise)
	results, summary := exercise.ScoreOffline(p, input.Notes, 4, match.DefaultConfig())

	res := model.ScoreResponse{Summary: summary}
	for _, r := range results {
		res.Results = append(res.Results, model.NoteResultBody{
			Index:    r.Index,
			Expected: r.ExpectedPitch,
			Played:   r.PlayedPitch,
			Rating:   string(r.Rating),
			DeltaMs:  r.DeltaMs,
		})
	}
	json.NewEncoder(w).Encode(res)
}

// HandleGetSession returns one stored session record.
func HandleGetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := store.FindByID(constants.GetDataDir(), id)
	if err != nil {
		writeError(w, 404, fmt.Sprintf("no session %v", id))
		return
	}
	json.NewEncoder(w).Encode(rec)
}

func serve() {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/exercises", HandleGenerateExercise).Methods("POST")
	router.HandleFunc("/attempts/score", HandleScoreAttempt).Methods("POST")
	router.HandleFunc("/sessions/{id}", HandleGetSession).Methods("GET")

	handler := cors.Default().Handler(router)
	log.Fatal(http.ListenAndServe(constants.GetServeAddr(), handler))
}
