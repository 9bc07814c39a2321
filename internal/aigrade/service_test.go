package aigrade

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/markbook-app/markbook/internal/grading"
	"github.com/markbook-app/markbook/internal/quiz"
	"github.com/markbook-app/markbook/internal/review"
)

type fakeModel struct {
	replies map[string]string // matched by substring of the user prompt
	err     error
	calls   int
}

func (f *fakeModel) Complete(_ context.Context, _, user string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	for needle, reply := range f.replies {
		if strings.Contains(user, needle) {
			return reply, nil
		}
	}
	return `{"score": 0, "feedback": "no idea"}`, nil
}

func gradingContext() Context {
	return Context{
		Quiz: quiz.Quiz{
			ID:    "quiz-1",
			Title: "Cells",
			Questions: []quiz.Question{
				{Text: "What is 2+2?", Type: quiz.TypeMultipleChoice, Points: 1, CorrectAnswer: float64(1)},
				{Text: "Explain osmosis.", Type: quiz.TypeWorked, Points: 5},
			},
		},
		Rubric: map[string]Rubric{
			"q1": {MaxScore: 5, Criteria: "mentions concentration gradient", ModelAnswer: "Water moves across a membrane..."},
		},
		Calibration: []Example{{Answer: "water moves", Score: 2, Feedback: "too brief"}},
	}
}

func pendingRecord(t *testing.T) quiz.ResponseRecord {
	t.Helper()
	gc := gradingContext()
	rec := quiz.ResponseRecord{
		StudentID: "s001",
		QuizID:    "quiz-1",
		Answers: []quiz.Answer{
			{QuestionIndex: 0, Value: float64(1)},
			{QuestionIndex: 1, Value: "Water crosses the membrane toward higher solute."},
		},
	}
	review.AutoGradeRecord(grading.NewEngine(), gc.Quiz, &rec)
	return rec
}

func TestSystemPromptContents(t *testing.T) {
	p := SystemPrompt(gradingContext())
	for _, want := range []string{
		"Quiz: Cells",
		"RUBRIC:",
		"Max Score: 5",
		"mentions concentration gradient",
		"Model Answer:",
		"CALIBRATION EXAMPLES",
		"ignore previous instructions",
		"OUTPUT FORMAT:",
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("system prompt missing %q:\n%s", want, p)
		}
	}
}

func TestUserPromptPlaceholderQuestion(t *testing.T) {
	p := UserPrompt(gradingContext(), 7, "orphan answer")
	if !strings.Contains(p, "Question 7") || !strings.Contains(p, "max 1 points") {
		t.Fatalf("expected placeholder question, got:\n%s", p)
	}
}

func TestParseVerdict(t *testing.T) {
	v, ok := ParseVerdict("Here you go: {\"score\": 3.5, \"feedback\": \"solid\"} hope that helps")
	if !ok || v.Score != 3.5 || v.Feedback != "solid" {
		t.Fatalf("parse failed: %+v %v", v, ok)
	}
	v, ok = ParseVerdict("I refuse to answer in JSON")
	if ok || v.Score != 0 || v.Feedback == "" {
		t.Fatalf("fallback should keep raw text as feedback: %+v %v", v, ok)
	}
}

func TestGradeRecordOnlyTouchesUngraded(t *testing.T) {
	gc := gradingContext()
	rec := pendingRecord(t)
	model := &fakeModel{replies: map[string]string{"osmosis": `{"score": 4, "feedback": "good"}`}}
	svc := NewService(model)

	out, n, err := svc.GradeRecord(context.Background(), gc, rec)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if n != 1 || model.calls != 1 {
		t.Fatalf("only the pending answer should reach the model, got n=%d calls=%d", n, model.calls)
	}
	if out.Answers[0].ClaudeGrade != nil {
		t.Fatalf("auto-graded answer must not get an AI grade")
	}
	cg := out.Answers[1].ClaudeGrade
	if cg == nil || *cg.Score != 4 || cg.Feedback != "good" {
		t.Fatalf("AI grade not attached: %+v", cg)
	}
	if out.Status != quiz.RecordGraded {
		t.Fatalf("record should now be fully graded, got %s", out.Status)
	}
	// teacher slot stays empty: the suggestion is advisory
	if out.Answers[1].TeacherGrade != nil {
		t.Fatalf("AI grading must never write the teacher slot")
	}
}

func TestGradeRecordClampsScore(t *testing.T) {
	gc := gradingContext()
	rec := pendingRecord(t)
	model := &fakeModel{replies: map[string]string{"osmosis": `{"score": 50, "feedback": "generous"}`}}
	var logs bytes.Buffer
	svc := NewService(model, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	out, _, err := svc.GradeRecord(context.Background(), gc, rec)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if got := *out.Answers[1].ClaudeGrade.Score; got != 5 {
		t.Fatalf("suggested score must clamp to the question's worth, got %v", got)
	}
	if !strings.Contains(logs.String(), "clamped") {
		t.Fatalf("out-of-range suggestion must be logged, got: %s", logs.String())
	}
}

func TestGradeRecordInRangeScoreNotLoggedAsClamped(t *testing.T) {
	gc := gradingContext()
	rec := pendingRecord(t)
	model := &fakeModel{replies: map[string]string{"osmosis": `{"score": 4, "feedback": "good"}`}}
	var logs bytes.Buffer
	svc := NewService(model, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	if _, _, err := svc.GradeRecord(context.Background(), gc, rec); err != nil {
		t.Fatalf("grade: %v", err)
	}
	if strings.Contains(logs.String(), "clamped") {
		t.Fatalf("in-range suggestion must not warn: %s", logs.String())
	}
}

func TestGradeRecordModelFailureSkips(t *testing.T) {
	gc := gradingContext()
	rec := pendingRecord(t)
	model := &fakeModel{err: errors.New("rate limited")}
	svc := NewService(model)

	out, n, err := svc.GradeRecord(context.Background(), gc, rec)
	if err != nil {
		t.Fatalf("a per-answer failure must not abort the run: %v", err)
	}
	if n != 0 || out.Answers[1].ClaudeGrade != nil {
		t.Fatalf("failed answers stay ungraded: n=%d %+v", n, out.Answers[1].ClaudeGrade)
	}
}

func TestGradeRecordDryRun(t *testing.T) {
	gc := gradingContext()
	rec := pendingRecord(t)
	model := &fakeModel{}
	svc := NewService(model, WithDryRun(true))

	_, n, err := svc.GradeRecord(context.Background(), gc, rec)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if n != 0 || model.calls != 0 {
		t.Fatalf("dry run must not call the model: n=%d calls=%d", n, model.calls)
	}
}

func TestGradeCohortPersists(t *testing.T) {
	gc := gradingContext()
	model := &fakeModel{replies: map[string]string{"osmosis": `{"score": 3, "feedback": "ok"}`}}
	svc := NewService(model)

	records := []quiz.ResponseRecord{pendingRecord(t)}
	saved := 0
	n, err := svc.GradeCohort(context.Background(), gc, records, func(_ context.Context, rec quiz.ResponseRecord) error {
		saved++
		if rec.Answers[1].ClaudeGrade == nil {
			t.Fatalf("saved record missing AI grade")
		}
		return nil
	})
	if err != nil || n != 1 || saved != 1 {
		t.Fatalf("cohort grading: n=%d saved=%d err=%v", n, saved, err)
	}
}
