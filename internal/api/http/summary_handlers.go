package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/markbook-app/markbook/internal/aigrade"
	"github.com/markbook-app/markbook/internal/cohort"
	"github.com/markbook-app/markbook/internal/quiz"
)

// GET /quizzes/{quizID}/summary?group=...
// The summary is a projection: recomputed on every read, never stored.
func SummaryHandler(svc *cohort.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := svc.Summarize(r.Context(), chi.URLParam(r, "quizID"), r.URL.Query().Get("group"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, sum)
	}
}

// POST /quizzes/{quizID}/ai-grade?group=...
// Runs the external model over every ungraded answer in the cohort and
// persists the suggestions. Returns 503 when no model is configured.
func AIGradeCohortHandler(svc *aigrade.Service, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			http.Error(w, "no grading model configured", http.StatusServiceUnavailable)
			return
		}
		quizID := chi.URLParam(r, "quizID")
		qz, err := store.GetQuiz(r.Context(), quizID)
		if err != nil {
			httpError(w, err)
			return
		}
		records, err := store.ListResponses(r.Context(), quizID, r.URL.Query().Get("group"))
		if err != nil {
			httpError(w, err)
			return
		}
		// Rubric and calibration in the body are optional.
		var req struct {
			Rubric      map[string]aigrade.Rubric `json:"rubric"`
			Calibration []aigrade.Example         `json:"calibrationExamples"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gc := aigrade.Context{Quiz: qz, Rubric: req.Rubric, Calibration: req.Calibration}
		n, err := svc.GradeCohort(r.Context(), gc, records, store.PutResponse)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, map[string]int{"graded": n})
	}
}
