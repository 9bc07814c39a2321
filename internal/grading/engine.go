package grading

import (
	"math"

	"github.com/markbook-app/markbook/internal/quiz"
)

// strategy grades a single question type.
type strategy interface {
	grade(q quiz.Question, answer any) quiz.Grade
}

// Engine routes by question type to the correct strategy. Grading is a
// pure function of (question, answer): no I/O, no clock, no errors.
// Malformed or missing answers grade as incorrect, never as a failure.
type Engine struct {
	strategies map[quiz.QuestionType]strategy
}

type Option func(*config)

type config struct {
	PartialCredit bool // partial credit on checkbox/grid
}

func WithPartialCredit(b bool) Option { return func(c *config) { c.PartialCredit = b } }

// NewEngine installs the built-in strategies.
func NewEngine(opts ...Option) *Engine {
	cfg := &config{PartialCredit: true}
	for _, o := range opts {
		o(cfg)
	}
	single := singleValueStrategy{}
	return &Engine{
		strategies: map[quiz.QuestionType]strategy{
			quiz.TypeMultipleChoice: single,
			quiz.TypeDropdown:       single,
			quiz.TypeScale:          single,
			quiz.TypeDate:           single,
			quiz.TypeTime:           single,
			quiz.TypeDatetime:       single,
			quiz.TypeCheckbox:       checkboxStrategy{allowPartial: cfg.PartialCredit},
			quiz.TypeNumeric:        numericStrategy{},
			quiz.TypeGrid:           gridStrategy{allowPartial: cfg.PartialCredit},
			quiz.TypeShortAnswer:    shortAnswerStrategy{},
			quiz.TypeWorked:         workedStrategy{},
		},
	}
}

// Grade scores one answer against one question definition.
func (e *Engine) Grade(q quiz.Question, answer any) quiz.Grade {
	s, ok := e.strategies[q.Type]
	if !ok {
		// Unknown type: nothing automatic can be said, leave it to a human.
		return pending(q)
	}
	return s.grade(q, answer)
}

// --- result constructors ---

func surveyed() quiz.Grade {
	return quiz.Grade{Status: quiz.StatusAnswered}
}

func correct(q quiz.Question) quiz.Grade {
	pts := q.MaxPoints()
	return quiz.Grade{Status: quiz.StatusCorrect, Score: ptr(pts), MaxScore: ptr(pts)}
}

func incorrect(q quiz.Question) quiz.Grade {
	return quiz.Grade{Status: quiz.StatusIncorrect, Score: ptr(0), MaxScore: ptr(q.MaxPoints())}
}

func partial(q quiz.Question, score float64) quiz.Grade {
	return quiz.Grade{Status: quiz.StatusPartial, Score: ptr(round2(score)), MaxScore: ptr(q.MaxPoints())}
}

func pending(q quiz.Question) quiz.Grade {
	return quiz.Grade{Status: quiz.StatusPendingReview, MaxScore: ptr(q.MaxPoints())}
}

func ptr(v float64) *float64 { return &v }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// --- strategies ---

// singleValueStrategy covers every type graded by exact equality
// against one correct value: multiple_choice, dropdown, scale, date,
// time and datetime.
type singleValueStrategy struct{}

func (singleValueStrategy) grade(q quiz.Question, answer any) quiz.Grade {
	if q.CorrectAnswer == nil {
		return surveyed()
	}
	if answer == nil {
		return incorrect(q)
	}
	if valuesEqual(q.CorrectAnswer, answer) {
		return correct(q)
	}
	return incorrect(q)
}

type checkboxStrategy struct{ allowPartial bool }

func (s checkboxStrategy) grade(q quiz.Question, answer any) quiz.Grade {
	key, ok := asIndexSet(q.CorrectAnswer)
	if !ok || len(key) == 0 {
		return surveyed()
	}
	sel, ok := asIndexSet(answer)
	if !ok {
		return incorrect(q)
	}
	if setsEqual(key, sel) {
		return correct(q)
	}
	inter := 0
	for i := range sel {
		if _, hit := key[i]; hit {
			inter++
		}
	}
	if inter == 0 || !s.allowPartial {
		return incorrect(q)
	}
	// max(|U|,|C|) in the denominator penalizes over-selection without
	// letting extra wrong picks ride free.
	denom := len(sel)
	if len(key) > denom {
		denom = len(key)
	}
	score := round2(q.MaxPoints() * float64(inter) / float64(denom))
	if score <= 0 {
		return incorrect(q)
	}
	return partial(q, score)
}

type numericStrategy struct{}

func (numericStrategy) grade(q quiz.Question, answer any) quiz.Grade {
	expected, ok := asFloat(q.CorrectAnswer)
	if !ok {
		return surveyed()
	}
	got, ok := asFloat(answer)
	if !ok {
		return incorrect(q)
	}
	tol := q.Tolerance
	if tol < 0 {
		tol = 0
	}
	if math.Abs(got-expected) <= tol {
		return correct(q)
	}
	return incorrect(q)
}

type gridStrategy struct{ allowPartial bool }

func (s gridStrategy) grade(q quiz.Question, answer any) quiz.Grade {
	key := normalizeGridKey(q.CorrectAnswer)
	if len(key) == 0 {
		return surveyed()
	}
	sel, _ := asRowMap(answer)
	matched := 0
	for row, want := range key {
		if got, ok := sel[row]; ok && got == want {
			matched++
		}
	}
	if matched == len(key) {
		return correct(q)
	}
	if matched == 0 || !s.allowPartial {
		return incorrect(q)
	}
	score := round2(q.MaxPoints() * float64(matched) / float64(len(key)))
	if score <= 0 {
		return incorrect(q)
	}
	return partial(q, score)
}

// shortAnswerStrategy matches trimmed, case-insensitively against the
// accepted answers. A non-match is deliberately pending_review rather
// than incorrect: a near-miss may still be valid and must reach a
// human.
type shortAnswerStrategy struct{}

func (shortAnswerStrategy) grade(q quiz.Question, answer any) quiz.Grade {
	if len(q.AcceptedAnswers) == 0 {
		return pending(q)
	}
	got, ok := asString(answer)
	if !ok {
		return pending(q)
	}
	for _, accepted := range q.AcceptedAnswers {
		if foldEqual(got, accepted) {
			return correct(q)
		}
	}
	return pending(q)
}

type workedStrategy struct{}

func (workedStrategy) grade(q quiz.Question, _ any) quiz.Grade {
	return pending(q)
}
