package quiz

import "errors"

var (
	// ErrQuizNotFound indicates the quiz document could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrResponseNotFound indicates no response record exists for the
	// quiz/student pair.
	ErrResponseNotFound = errors.New("response record not found")
	// ErrNoSuchAnswer is returned when a grading mutation targets a
	// question index the record has no answer for.
	ErrNoSuchAnswer = errors.New("no answer at question index")
	// ErrScoreOutOfRange is returned when a submitted score falls
	// outside [0, points]; the record is left unmutated.
	ErrScoreOutOfRange = errors.New("score outside [0, points]")
	// ErrNoAIGrade is returned when approving an AI grade that was
	// never attached.
	ErrNoAIGrade = errors.New("no AI grade to approve")
)
