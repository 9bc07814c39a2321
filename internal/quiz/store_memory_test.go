package quiz

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreQuizRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if _, err := store.GetQuiz(ctx, "missing"); !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}

	q := Quiz{ID: "quiz-1", Title: "Intro", Questions: []Question{{Type: TypeMultipleChoice, CorrectAnswer: float64(0)}}}
	if err := store.PutQuiz(ctx, q); err != nil {
		t.Fatalf("put quiz: %v", err)
	}
	got, err := store.GetQuiz(ctx, "quiz-1")
	if err != nil || got.Title != "Intro" || len(got.Questions) != 1 {
		t.Fatalf("get quiz: %+v %v", got, err)
	}
}

func TestMemoryStoreAppendAttempt(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	if err := store.PutQuiz(ctx, Quiz{ID: "quiz-1"}); err != nil {
		t.Fatalf("put quiz: %v", err)
	}

	q, err := store.AppendAttempt(ctx, "quiz-1", Attempt{Timestamp: 1})
	if err != nil || len(q.Attempts) != 1 {
		t.Fatalf("first attempt: %+v %v", q, err)
	}
	q, err = store.AppendAttempt(ctx, "quiz-1", Attempt{Timestamp: 2})
	if err != nil || len(q.Attempts) != 2 {
		t.Fatalf("second attempt: %+v %v", q, err)
	}
	// history is append-only: the earlier attempt survives
	if q.Attempts[0].Timestamp != 1 || q.LatestAttempt().Timestamp != 2 {
		t.Fatalf("attempt history wrong: %+v", q.Attempts)
	}

	if _, err := store.AppendAttempt(ctx, "missing", Attempt{}); !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestMemoryStoreResponses(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if _, err := store.GetResponse(ctx, "quiz-1", "s001"); !errors.Is(err, ErrResponseNotFound) {
		t.Fatalf("expected ErrResponseNotFound, got %v", err)
	}

	recs := []ResponseRecord{
		{QuizID: "quiz-1", StudentID: "s001", GroupKey: "period-2", Status: RecordPending},
		{QuizID: "quiz-1", StudentID: "s002", GroupKey: "period-2", Status: RecordPending},
		{QuizID: "quiz-1", StudentID: "s003", GroupKey: "period-3", Status: RecordPending},
		{QuizID: "quiz-2", StudentID: "s001", Status: RecordPending},
	}
	for _, rec := range recs {
		if err := store.PutResponse(ctx, rec); err != nil {
			t.Fatalf("put response: %v", err)
		}
	}

	got, err := store.ListResponses(ctx, "quiz-1", "period-2")
	if err != nil || len(got) != 2 {
		t.Fatalf("group filter: %d %v", len(got), err)
	}
	got, err = store.ListResponses(ctx, "quiz-1", "")
	if err != nil || len(got) != 3 {
		t.Fatalf("empty group key matches all: %d %v", len(got), err)
	}

	// overwrite is last-write-wins
	if err := store.PutResponse(ctx, ResponseRecord{QuizID: "quiz-1", StudentID: "s001", Status: RecordGraded}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	rec, err := store.GetResponse(ctx, "quiz-1", "s001")
	if err != nil || rec.Status != RecordGraded {
		t.Fatalf("overwrite lost: %+v %v", rec, err)
	}
}
