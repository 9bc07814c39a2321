package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/markbook-app/markbook/internal/quiz"
	"github.com/markbook-app/markbook/internal/review"
)

// POST /quizzes
//
// Creates a quiz with a server-minted ID. Clients that already have an
// ID (re-imports, syncs) use PUT instead.
func CreateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		q.ID = uuid.NewString()
		if err := store.PutQuiz(r.Context(), q); err != nil {
			httpError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(q)
	}
}

// PUT /quizzes/{quizID}
func PutQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		q.ID = chi.URLParam(r, "quizID")
		if q.ID == "" {
			http.Error(w, "quizID required", http.StatusBadRequest)
			return
		}
		if err := store.PutQuiz(r.Context(), q); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, q)
	}
}

// GET /quizzes/{quizID}
func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, q)
	}
}

// GET /quizzes
func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := store.ListQuizzes(r.Context())
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, qs)
	}
}

// POST /quizzes/{quizID}/attempts
// { "answers": [ ... ] }
//
// Grades one quiz-taking session and appends the snapshot to the
// quiz's attempt history. Returns the graded attempt.
func SubmitAttemptHandler(svc *review.Service, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers []any `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		quizID := chi.URLParam(r, "quizID")
		att, err := svc.BuildAttempt(r.Context(), quizID, req.Answers)
		if err != nil {
			httpError(w, err)
			return
		}
		if _, err := store.AppendAttempt(r.Context(), quizID, att); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, att)
	}
}
