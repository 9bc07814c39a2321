package quiz

import "context"

// Store is the persistence boundary for quiz documents and response
// records. The grading core never touches storage directly; mutation
// services call PutResponse after each grade update and aggregation
// reads through ListResponses.
type Store interface {
	PutQuiz(ctx context.Context, q Quiz) error
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	ListQuizzes(ctx context.Context) ([]Quiz, error)

	// AppendAttempt records a new quiz-taking session on a quiz.
	// Attempt history is append-only.
	AppendAttempt(ctx context.Context, quizID string, a Attempt) (Quiz, error)

	PutResponse(ctx context.Context, rec ResponseRecord) error
	GetResponse(ctx context.Context, quizID, studentID string) (ResponseRecord, error)
	// ListResponses enumerates the cohort: all response records for one
	// quiz sharing a grouping key. Empty groupKey matches every group.
	ListResponses(ctx context.Context, quizID, groupKey string) ([]ResponseRecord, error)
}
