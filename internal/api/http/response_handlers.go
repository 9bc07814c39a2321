package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/markbook-app/markbook/internal/audit"
	"github.com/markbook-app/markbook/internal/auth"
	"github.com/markbook-app/markbook/internal/quiz"
	"github.com/markbook-app/markbook/internal/review"
	"github.com/markbook-app/markbook/internal/roster"
)

// Names resolves student IDs to display names for review screens.
// Presentation only; a nil roster falls back to raw IDs.
type Names struct{ Roster *roster.Roster }

func (n Names) displayName(studentID string) string {
	if n.Roster == nil {
		return studentID
	}
	return n.Roster.DisplayName(studentID)
}

// POST /quizzes/{quizID}/responses
// { "studentId": "...", "groupKey": "...", "answers": [ ... ] }
func ImportResponseHandler(svc *review.Service, trail *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StudentID string `json:"studentId"`
			GroupKey  string `json:"groupKey,omitempty"`
			Answers   []any  `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.StudentID == "" {
			http.Error(w, "studentId required", http.StatusBadRequest)
			return
		}
		rec, err := svc.ImportResponse(r.Context(), chi.URLParam(r, "quizID"), req.StudentID, req.GroupKey, req.Answers)
		if err != nil {
			httpError(w, err)
			return
		}
		_ = trail.Append(r.Context(), audit.Event{
			Actor: auth.Subject(r.Context()), Action: audit.ActionImport,
			QuizID: rec.QuizID, StudentID: rec.StudentID,
		})
		writeJSON(w, rec)
	}
}

// GET /responses/{quizID}/{studentID}/audit
func AuditTrailHandler(trail *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := trail.Recent(r.Context(), chi.URLParam(r, "quizID"), chi.URLParam(r, "studentID"), 50)
		if err != nil {
			httpError(w, err)
			return
		}
		if events == nil {
			events = []audit.Event{}
		}
		writeJSON(w, events)
	}
}

type responseListItem struct {
	quiz.ResponseRecord
	DisplayName string `json:"displayName,omitempty"`
}

// GET /quizzes/{quizID}/responses?group=...
func ListResponsesHandler(store quiz.Store, names Names) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := store.ListResponses(r.Context(), chi.URLParam(r, "quizID"), r.URL.Query().Get("group"))
		if err != nil {
			httpError(w, err)
			return
		}
		out := make([]responseListItem, 0, len(recs))
		for _, rec := range recs {
			out = append(out, responseListItem{ResponseRecord: rec, DisplayName: names.displayName(rec.StudentID)})
		}
		writeJSON(w, out)
	}
}

// GET /responses/{quizID}/{studentID}
func GetResponseHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := store.GetResponse(r.Context(), chi.URLParam(r, "quizID"), chi.URLParam(r, "studentID"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, rec)
	}
}
