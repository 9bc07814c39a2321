package grading

import (
	"reflect"
	"testing"

	"github.com/markbook-app/markbook/internal/quiz"
)

func scoreOf(t *testing.T, g quiz.Grade) float64 {
	t.Helper()
	if g.Score == nil {
		t.Fatalf("expected a score, got nil (status %s)", g.Status)
	}
	return *g.Score
}

func TestMultipleChoiceExactMatch(t *testing.T) {
	e := NewEngine()
	q := quiz.Question{Type: quiz.TypeMultipleChoice, Points: 2, CorrectAnswer: float64(1)}

	g := e.Grade(q, float64(1))
	if g.Status != quiz.StatusCorrect || scoreOf(t, g) != 2 {
		t.Fatalf("expected correct/2, got %s/%v", g.Status, g.Score)
	}
	g = e.Grade(q, float64(0))
	if g.Status != quiz.StatusIncorrect || scoreOf(t, g) != 0 {
		t.Fatalf("expected incorrect/0, got %s/%v", g.Status, g.Score)
	}
}

func TestMultipleChoiceMissingAnswer(t *testing.T) {
	e := NewEngine()
	q := quiz.Question{Type: quiz.TypeMultipleChoice, CorrectAnswer: float64(2)}
	g := e.Grade(q, nil)
	if g.Status != quiz.StatusIncorrect {
		t.Fatalf("missing answer should be incorrect, got %s", g.Status)
	}
}

func TestSurveyQuestionNeverScored(t *testing.T) {
	e := NewEngine()
	for _, typ := range []quiz.QuestionType{quiz.TypeMultipleChoice, quiz.TypeScale, quiz.TypeCheckbox, quiz.TypeGrid, quiz.TypeNumeric, quiz.TypeDropdown} {
		q := quiz.Question{Type: typ, Points: 3}
		g := e.Grade(q, float64(1))
		if g.Status != quiz.StatusAnswered || g.Score != nil || g.MaxScore != nil {
			t.Fatalf("%s without key should be answered/nil/nil, got %s/%v/%v", typ, g.Status, g.Score, g.MaxScore)
		}
	}
}

func TestCheckboxOverSelectionPartial(t *testing.T) {
	// correct={1,2}, selected={1,2,3} -> partial, points * 2/3
	e := NewEngine()
	q := quiz.Question{Type: quiz.TypeCheckbox, Points: 3, CorrectAnswer: []any{float64(1), float64(2)}}
	g := e.Grade(q, []any{float64(1), float64(2), float64(3)})
	if g.Status != quiz.StatusPartial {
		t.Fatalf("expected partial, got %s", g.Status)
	}
	if got := scoreOf(t, g); got != 2 {
		t.Fatalf("expected 3 * 2/3 = 2, got %v", got)
	}
}

func TestCheckboxExactMatchFullPoints(t *testing.T) {
	e := NewEngine()
	q := quiz.Question{Type: quiz.TypeCheckbox, Points: 2, CorrectAnswer: []any{float64(1), float64(2)}}
	g := e.Grade(q, []any{float64(2), float64(1)}) // order must not matter
	if g.Status != quiz.StatusCorrect || scoreOf(t, g) != 2 {
		t.Fatalf("expected correct/2, got %s/%v", g.Status, g.Score)
	}
}

func TestCheckboxNoOverlapIncorrect(t *testing.T) {
	e := NewEngine()
	q := quiz.Question{Type: quiz.TypeCheckbox, Points: 2, CorrectAnswer: []any{float64(0), float64(1)}}
	g := e.Grade(q, []any{float64(2), float64(3)})
	if g.Status != quiz.StatusIncorrect || scoreOf(t, g) != 0 {
		t.Fatalf("expected incorrect/0, got %s/%v", g.Status, g.Score)
	}
}

func TestCheckboxPartialDisabled(t *testing.T) {
	e := NewEngine(WithPartialCredit(false))
	q := quiz.Question{Type: quiz.TypeCheckbox, Points: 2, CorrectAnswer: []any{float64(0), float64(1)}}
	g := e.Grade(q, []any{float64(0)})
	if g.Status != quiz.StatusIncorrect {
		t.Fatalf("partial disabled should grade incorrect, got %s", g.Status)
	}
}

func TestCheckboxRounding(t *testing.T) {
	// 1 point, 1 of 3 hit over max(1,3)=3 -> 0.33
	e := NewEngine()
	q := quiz.Question{Type: quiz.TypeCheckbox, Points: 1, CorrectAnswer: []any{float64(0), float64(1), float64(2)}}
	g := e.Grade(q, []any{float64(0)})
	if got := scoreOf(t, g); got != 0.33 {
		t.Fatalf("expected 0.33, got %v", got)
	}
}

func TestCheckboxScoreBounds(t *testing.T) {
	e := NewEngine()
	q := quiz.Question{Type: quiz.TypeCheckbox, Points: 5, CorrectAnswer: []any{float64(0), float64(1), float64(2)}}
	selections := [][]any{
		{float64(0)},
		{float64(0), float64(3)},
		{float64(0), float64(1), float64(2), float64(3), float64(4)},
		{float64(0), float64(1), float64(2)},
	}
	for _, sel := range selections {
		g := e.Grade(q, sel)
		if g.Score == nil {
			continue
		}
		if *g.Score < 0 || *g.Score > q.Points {
			t.Fatalf("score %v outside [0,%v] for selection %v", *g.Score, q.Points, sel)
		}
	}
}

func TestNumericTolerance(t *testing.T) {
	e := NewEngine()
	q := quiz.Question{Type: quiz.TypeNumeric, Points: 1, CorrectAnswer: float64(3.14), Tolerance: 0.01}

	if g := e.Grade(q, float64(3.145)); g.Status != quiz.StatusCorrect {
		t.Fatalf("within tolerance should be correct, got %s", g.Status)
	}
	if g := e.Grade(q, float64(3.2)); g.Status != quiz.StatusIncorrect {
		t.Fatalf("outside tolerance should be incorrect, got %s", g.Status)
	}
	// numeric strings are accepted
	if g := e.Grade(q, " 3.14 "); g.Status != quiz.StatusCorrect {
		t.Fatalf("numeric string should parse, got %s", g.Status)
	}
	// anything unparseable is just a wrong answer, never an error
	if g := e.Grade(q, "about three"); g.Status != quiz.StatusIncorrect {
		t.Fatalf("malformed answer should be incorrect, got %s", g.Status)
	}
}

func TestNumericDefaultToleranceZero(t *testing.T) {
	e := NewEngine()
	q := quiz.Question{Type: quiz.TypeNumeric, Points: 1, CorrectAnswer: float64(10)}
	if g := e.Grade(q, float64(10.0001)); g.Status != quiz.StatusIncorrect {
		t.Fatalf("default tolerance is 0, got %s", g.Status)
	}
}

func TestShortAnswerAcceptedMatch(t *testing.T) {
	// acceptedAnswers=["Paris","paris "], answer " PARIS" -> correct
	e := NewEngine()
	q := quiz.Question{Type: quiz.TypeShortAnswer, Points: 1, AcceptedAnswers: []string{"Paris", "paris "}}
	g := e.Grade(q, " PARIS")
	if g.Status != quiz.StatusCorrect || scoreOf(t, g) != 1 {
		t.Fatalf("expected correct/1, got %s/%v", g.Status, g.Score)
	}
}

func TestShortAnswerNoMatchStaysPending(t *testing.T) {
	// A near-miss must reach a human, never be auto-failed.
	e := NewEngine()
	q := quiz.Question{Type: quiz.TypeShortAnswer, Points: 2, AcceptedAnswers: []string{"mitochondria"}}
	g := e.Grade(q, "the powerhouse of the cell")
	if g.Status != quiz.StatusPendingReview {
		t.Fatalf("expected pending_review, got %s", g.Status)
	}
	if g.Score != nil {
		t.Fatalf("pending answers carry no score, got %v", *g.Score)
	}
	if g.MaxScore == nil || *g.MaxScore != 2 {
		t.Fatalf("pending answers keep their max score, got %v", g.MaxScore)
	}
}

func TestShortAnswerNoKeyAlwaysPending(t *testing.T) {
	e := NewEngine()
	q := quiz.Question{Type: quiz.TypeShortAnswer, Points: 1}
	if g := e.Grade(q, "anything"); g.Status != quiz.StatusPendingReview {
		t.Fatalf("expected pending_review, got %s", g.Status)
	}
}

func TestWorkedAlwaysPending(t *testing.T) {
	e := NewEngine()
	q := quiz.Question{Type: quiz.TypeWorked, Points: 10}
	g := e.Grade(q, "x = 4 because ...")
	if g.Status != quiz.StatusPendingReview || g.Score != nil {
		t.Fatalf("worked answers are always pending with nil score, got %s/%v", g.Status, g.Score)
	}
}

func TestGridPartialCredit(t *testing.T) {
	// 3 rows, user matches 2 -> partial, points * 2/3
	e := NewEngine()
	q := quiz.Question{
		Type:   quiz.TypeGrid,
		Points: 3,
		CorrectAnswer: map[string]any{
			"cat": "mammal", "snake": "reptile", "frog": "amphibian",
		},
	}
	g := e.Grade(q, map[string]any{"cat": "mammal", "snake": "reptile", "frog": "reptile"})
	if g.Status != quiz.StatusPartial {
		t.Fatalf("expected partial, got %s", g.Status)
	}
	if got := scoreOf(t, g); got != 2 {
		t.Fatalf("expected 3 * 2/3 = 2, got %v", got)
	}
}

func TestGridAllRowsMatch(t *testing.T) {
	e := NewEngine()
	q := quiz.Question{
		Type:          quiz.TypeGrid,
		Points:        2,
		CorrectAnswer: map[string]any{"a": "x", "b": "y"},
	}
	g := e.Grade(q, map[string]any{"a": "x", "b": "y"})
	if g.Status != quiz.StatusCorrect || scoreOf(t, g) != 2 {
		t.Fatalf("expected correct/2, got %s/%v", g.Status, g.Score)
	}
}

func TestGridPairArrayKey(t *testing.T) {
	// the key may also arrive as an array of [row,col] index pairs
	e := NewEngine()
	q := quiz.Question{
		Type:   quiz.TypeGrid,
		Points: 2,
		CorrectAnswer: []any{
			[]any{float64(0), float64(1)},
			[]any{float64(1), float64(0)},
		},
	}
	g := e.Grade(q, map[string]any{"0": float64(1), "1": float64(0)})
	if g.Status != quiz.StatusCorrect {
		t.Fatalf("expected correct, got %s", g.Status)
	}
}

func TestGridMissingAnswerIncorrect(t *testing.T) {
	e := NewEngine()
	q := quiz.Question{
		Type:          quiz.TypeGrid,
		Points:        1,
		CorrectAnswer: map[string]any{"a": "x"},
	}
	g := e.Grade(q, nil)
	if g.Status != quiz.StatusIncorrect || scoreOf(t, g) != 0 {
		t.Fatalf("expected incorrect/0, got %s/%v", g.Status, g.Score)
	}
}

func TestDateTimeTypesExactMatch(t *testing.T) {
	e := NewEngine()
	cases := []struct {
		typ  quiz.QuestionType
		key  any
		good any
		bad  any
	}{
		{quiz.TypeDate, "2025-01-15", "2025-01-15", "2025-01-16"},
		{quiz.TypeTime, "09:30", "09:30", "09:31"},
		{quiz.TypeDatetime, "2025-01-15T09:30", "2025-01-15T09:30", "2025-01-15T10:30"},
		{quiz.TypeDropdown, float64(2), float64(2), float64(1)},
		{quiz.TypeScale, float64(4), float64(4), float64(3)},
	}
	for _, c := range cases {
		q := quiz.Question{Type: c.typ, Points: 1, CorrectAnswer: c.key}
		if g := e.Grade(q, c.good); g.Status != quiz.StatusCorrect {
			t.Fatalf("%s: expected correct, got %s", c.typ, g.Status)
		}
		if g := e.Grade(q, c.bad); g.Status != quiz.StatusIncorrect {
			t.Fatalf("%s: expected incorrect, got %s", c.typ, g.Status)
		}
	}
}

func TestGradeIdempotent(t *testing.T) {
	e := NewEngine()
	questions := []quiz.Question{
		{Type: quiz.TypeCheckbox, Points: 3, CorrectAnswer: []any{float64(1), float64(2)}},
		{Type: quiz.TypeShortAnswer, Points: 1, AcceptedAnswers: []string{"Paris"}},
		{Type: quiz.TypeGrid, Points: 2, CorrectAnswer: map[string]any{"a": "x", "b": "y"}},
		{Type: quiz.TypeNumeric, Points: 1, CorrectAnswer: float64(7), Tolerance: 0.5},
	}
	answers := []any{
		[]any{float64(1), float64(2), float64(3)},
		"paris",
		map[string]any{"a": "x", "b": "z"},
		float64(7.3),
	}
	for i, q := range questions {
		first := e.Grade(q, answers[i])
		second := e.Grade(q, answers[i])
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("grading is not idempotent for %s: %+v vs %+v", q.Type, first, second)
		}
	}
}

func TestUnknownTypePending(t *testing.T) {
	e := NewEngine()
	q := quiz.Question{Type: "file_upload", Points: 1}
	if g := e.Grade(q, "blob"); g.Status != quiz.StatusPendingReview {
		t.Fatalf("unknown types need a human, got %s", g.Status)
	}
}
