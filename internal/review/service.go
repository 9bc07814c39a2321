package review

import (
	"context"
	"sort"
	"time"

	"github.com/markbook-app/markbook/internal/grading"
	"github.com/markbook-app/markbook/internal/quiz"
)

// QuizSource looks quiz documents up by ID.
type QuizSource interface {
	GetQuiz(ctx context.Context, id string) (quiz.Quiz, error)
}

// ResponseStore is the slice of persistence the service needs: each
// grading mutation is one read-modify-write of one record ending in a
// save.
type ResponseStore interface {
	GetResponse(ctx context.Context, quizID, studentID string) (quiz.ResponseRecord, error)
	PutResponse(ctx context.Context, rec quiz.ResponseRecord) error
}

// Service wires the resolver's pure mutations to quiz lookup and
// persistence. It holds no record state of its own; concurrent edits
// to the same record are last-write-wins at the store.
type Service struct {
	quizzes QuizSource
	store   ResponseStore
	engine  *grading.Engine
	now     func() time.Time
}

func NewService(quizzes QuizSource, store ResponseStore, engine *grading.Engine) *Service {
	return &Service{quizzes: quizzes, store: store, engine: engine, now: time.Now}
}

// ImportResponse creates the response record for one student's
// submission, auto-grades every answer and persists the record.
// Importing an already-imported student is a no-op returning the
// existing record; grades that have accumulated on it are never
// clobbered.
func (s *Service) ImportResponse(ctx context.Context, quizID, studentID, groupKey string, values []any) (quiz.ResponseRecord, error) {
	if existing, err := s.store.GetResponse(ctx, quizID, studentID); err == nil {
		return existing, nil
	}
	qz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return quiz.ResponseRecord{}, err
	}
	rec := quiz.ResponseRecord{
		StudentID:   studentID,
		QuizID:      quizID,
		GroupKey:    groupKey,
		SubmittedAt: s.now().Unix(),
		Answers:     make([]quiz.Answer, 0, len(values)),
	}
	for i, v := range values {
		rec.Answers = append(rec.Answers, quiz.Answer{QuestionIndex: i, Value: v})
	}
	AutoGradeRecord(s.engine, qz, &rec)
	if err := s.store.PutResponse(ctx, rec); err != nil {
		return quiz.ResponseRecord{}, err
	}
	return rec, nil
}

// SubmitTeacherGrade applies a human verdict to one answer and
// persists the updated record. A rejected precondition leaves the
// stored record unmutated.
func (s *Service) SubmitTeacherGrade(ctx context.Context, quizID, studentID string, questionIndex int, score float64, feedback, gradedBy string) (quiz.ResponseRecord, error) {
	rec, err := s.store.GetResponse(ctx, quizID, studentID)
	if err != nil {
		return quiz.ResponseRecord{}, err
	}
	qz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return quiz.ResponseRecord{}, err
	}
	if err := ApplyTeacherGrade(qz, &rec, questionIndex, score, feedback, gradedBy, s.now().Unix()); err != nil {
		return quiz.ResponseRecord{}, err
	}
	if err := s.store.PutResponse(ctx, rec); err != nil {
		return quiz.ResponseRecord{}, err
	}
	return rec, nil
}

// TeacherGradeInput is one verdict in a batch submission.
type TeacherGradeInput struct {
	Score    float64
	Feedback string
}

// SubmitTeacherGrades applies a batch of human verdicts as one
// read-modify-write: every item is validated against the same loaded
// record, a failure on any item rejects the whole batch, and the store
// sees either all verdicts or none.
func (s *Service) SubmitTeacherGrades(ctx context.Context, quizID, studentID string, grades map[int]TeacherGradeInput, gradedBy string) (quiz.ResponseRecord, error) {
	rec, err := s.store.GetResponse(ctx, quizID, studentID)
	if err != nil {
		return quiz.ResponseRecord{}, err
	}
	qz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return quiz.ResponseRecord{}, err
	}
	indices := make([]int, 0, len(grades))
	for idx := range grades {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	now := s.now().Unix()
	for _, idx := range indices {
		in := grades[idx]
		if err := ApplyTeacherGrade(qz, &rec, idx, in.Score, in.Feedback, gradedBy, now); err != nil {
			return quiz.ResponseRecord{}, err
		}
	}
	if err := s.store.PutResponse(ctx, rec); err != nil {
		return quiz.ResponseRecord{}, err
	}
	return rec, nil
}

// AttachAIGrade stores an advisory AI suggestion on one answer.
func (s *Service) AttachAIGrade(ctx context.Context, quizID, studentID string, questionIndex int, score float64, feedback string) (quiz.ResponseRecord, error) {
	rec, err := s.store.GetResponse(ctx, quizID, studentID)
	if err != nil {
		return quiz.ResponseRecord{}, err
	}
	qz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return quiz.ResponseRecord{}, err
	}
	if err := AttachAIGrade(qz, &rec, questionIndex, score, feedback, s.now().Unix()); err != nil {
		return quiz.ResponseRecord{}, err
	}
	if err := s.store.PutResponse(ctx, rec); err != nil {
		return quiz.ResponseRecord{}, err
	}
	return rec, nil
}

// ApproveAIGrade promotes the AI suggestion on one answer to a teacher
// grade.
func (s *Service) ApproveAIGrade(ctx context.Context, quizID, studentID string, questionIndex int, approvedBy string) (quiz.ResponseRecord, error) {
	rec, err := s.store.GetResponse(ctx, quizID, studentID)
	if err != nil {
		return quiz.ResponseRecord{}, err
	}
	if err := ApproveAIGrade(&rec, questionIndex, approvedBy, s.now().Unix()); err != nil {
		return quiz.ResponseRecord{}, err
	}
	if err := s.store.PutResponse(ctx, rec); err != nil {
		return quiz.ResponseRecord{}, err
	}
	return rec, nil
}

// BuildAttempt grades one quiz-taking session's answers into an
// immutable attempt snapshot. Appending it to the quiz's history is
// the caller's store operation.
func (s *Service) BuildAttempt(ctx context.Context, quizID string, values []any) (quiz.Attempt, error) {
	qz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return quiz.Attempt{}, err
	}
	return GradeAttempt(s.engine, qz, values, s.now().Unix()), nil
}

// SetExported marks a record as exported (or clears the flag).
func (s *Service) SetExported(ctx context.Context, quizID, studentID string, exported bool) (quiz.ResponseRecord, error) {
	rec, err := s.store.GetResponse(ctx, quizID, studentID)
	if err != nil {
		return quiz.ResponseRecord{}, err
	}
	SetExported(&rec, exported)
	if err := s.store.PutResponse(ctx, rec); err != nil {
		return quiz.ResponseRecord{}, err
	}
	return rec, nil
}
