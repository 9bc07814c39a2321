package aigrade

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/markbook-app/markbook/internal/quiz"
	"github.com/markbook-app/markbook/internal/review"
)

func nowUnix() int64 { return time.Now().Unix() }

// Model is the opaque external grader: one completion per answer.
type Model interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Option configures the Service.
type Option func(*Service)

// WithDryRun renders prompts without calling the model; answers are
// left ungraded.
func WithDryRun(b bool) Option { return func(s *Service) { s.dryRun = b } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// Service runs bulk AI grading over response records. It only touches
// answers that have no effective grade yet; auto and teacher verdicts
// are never displaced.
type Service struct {
	model  Model
	logger *slog.Logger
	dryRun bool
}

func NewService(model Model, opts ...Option) *Service {
	s := &Service{model: model, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GradeRecord attaches an advisory grade to every ungraded answer of
// one record and refreshes its derived totals and status. A model or
// parse failure on one answer is logged and skipped; the rest of the
// record still grades. The mutated record is returned; persisting it
// is the caller's read-modify-write.
func (s *Service) GradeRecord(ctx context.Context, gc Context, rec quiz.ResponseRecord) (quiz.ResponseRecord, int, error) {
	system := SystemPrompt(gc)
	graded := 0
	for i := range rec.Answers {
		a := &rec.Answers[i]
		if review.EffectiveGrade(*a) != nil {
			continue
		}
		if a.AutoGrade != nil && a.AutoGrade.Status == quiz.StatusAnswered {
			continue // survey answers are never scored
		}
		answerText := renderAnswer(a.Value)
		user := UserPrompt(gc, a.QuestionIndex, answerText)

		if s.dryRun {
			s.logger.Info("dry run",
				"student_id", rec.StudentID,
				"question_index", a.QuestionIndex,
				"prompt", user,
			)
			continue
		}

		raw, err := s.model.Complete(ctx, system, user)
		if err != nil {
			s.logger.Error("model call failed",
				"student_id", rec.StudentID,
				"question_index", a.QuestionIndex,
				"error", err,
			)
			continue
		}
		v, ok := ParseVerdict(raw)
		if !ok {
			s.logger.Warn("unparseable model reply",
				"student_id", rec.StudentID,
				"question_index", a.QuestionIndex,
				"reply", raw,
			)
		}
		score := clamp(v.Score, gc.Quiz, a.QuestionIndex)
		if score != v.Score {
			s.logger.Warn("model score out of range, clamped",
				"student_id", rec.StudentID,
				"question_index", a.QuestionIndex,
				"suggested", v.Score,
				"clamped", score,
			)
		}
		if err := review.AttachAIGrade(gc.Quiz, &rec, a.QuestionIndex, score, v.Feedback, nowUnix()); err != nil {
			s.logger.Error("attach grade failed",
				"student_id", rec.StudentID,
				"question_index", a.QuestionIndex,
				"error", err,
			)
			continue
		}
		graded++
	}
	return rec, graded, nil
}

// GradeCohort runs GradeRecord across a cohort and persists each
// updated record through save.
func (s *Service) GradeCohort(ctx context.Context, gc Context, records []quiz.ResponseRecord, save func(context.Context, quiz.ResponseRecord) error) (int, error) {
	total := 0
	for _, rec := range records {
		updated, n, err := s.GradeRecord(ctx, gc, rec)
		if err != nil {
			return total, err
		}
		if n == 0 {
			continue
		}
		if err := save(ctx, updated); err != nil {
			return total, fmt.Errorf("save %s/%s: %w", updated.QuizID, updated.StudentID, err)
		}
		total += n
	}
	return total, nil
}

func renderAnswer(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// clamp keeps a model-suggested score inside [0, points]; the model is
// advisory and must not be able to exceed the question's worth.
func clamp(score float64, qz quiz.Quiz, idx int) float64 {
	max := questionFor(qz, idx).MaxPoints()
	if score < 0 {
		return 0
	}
	if score > max {
		return max
	}
	return score
}
