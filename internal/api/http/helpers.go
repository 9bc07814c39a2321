package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/markbook-app/markbook/internal/quiz"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// statusForErr maps domain errors onto HTTP statuses: missing referents
// are 404, rejected grading preconditions are 422, the rest is a 500.
func statusForErr(err error) int {
	switch {
	case errors.Is(err, quiz.ErrQuizNotFound), errors.Is(err, quiz.ErrResponseNotFound):
		return http.StatusNotFound
	case errors.Is(err, quiz.ErrScoreOutOfRange),
		errors.Is(err, quiz.ErrNoSuchAnswer),
		errors.Is(err, quiz.ErrNoAIGrade):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func httpError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusForErr(err))
}
