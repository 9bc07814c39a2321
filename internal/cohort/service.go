package cohort

import (
	"context"

	"github.com/markbook-app/markbook/internal/quiz"
)

// QuizSource looks quiz documents up by ID.
type QuizSource interface {
	GetQuiz(ctx context.Context, id string) (quiz.Quiz, error)
}

// ResponseSource enumerates the cohort: every response record for one
// quiz sharing a grouping key. Storage layout (folder, table, memory)
// is the implementation's business.
type ResponseSource interface {
	ListResponses(ctx context.Context, quizID, groupKey string) ([]quiz.ResponseRecord, error)
}

// Service recomputes the cohort summary per read.
type Service struct {
	quizzes   QuizSource
	responses ResponseSource
}

func NewService(quizzes QuizSource, responses ResponseSource) *Service {
	return &Service{quizzes: quizzes, responses: responses}
}

// Summarize aggregates the cohort for one quiz and grouping key.
func (s *Service) Summarize(ctx context.Context, quizID, groupKey string) (Summary, error) {
	qz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return Summary{}, err
	}
	records, err := s.responses.ListResponses(ctx, quizID, groupKey)
	if err != nil {
		return Summary{}, err
	}
	return Aggregate(qz, records), nil
}
