// Package review merges the three independent grade sources on an
// answer (auto, AI-suggested, teacher-approved) into one effective
// grade and keeps a response record's derived totals and status in
// step with its answers.
package review

import (
	"math"

	"github.com/markbook-app/markbook/internal/quiz"
)

// EffectiveGrade selects the single grade that counts for an answer:
// teacher over AI over auto, never a blend. A slot only counts once it
// carries a score, so a pending-review auto grade is not yet a grade.
func EffectiveGrade(a quiz.Answer) *quiz.Grade {
	if a.TeacherGrade.Scored() {
		return a.TeacherGrade
	}
	if a.ClaudeGrade.Scored() {
		return a.ClaudeGrade
	}
	if a.AutoGrade.Scored() {
		return a.AutoGrade
	}
	return nil
}

// RecalculateTotal rebuilds the record's cached TotalScore/MaxScore
// from effective grades. Answers with no effective grade contribute
// nothing to either sum; this keeps "percent of graded work"
// meaningful while grading is incomplete.
func RecalculateTotal(rec *quiz.ResponseRecord) {
	var total, max float64
	for i := range rec.Answers {
		g := EffectiveGrade(rec.Answers[i])
		if g == nil {
			continue
		}
		total += *g.Score
		if g.MaxScore != nil {
			max += *g.MaxScore
		}
	}
	rec.TotalScore = round2(total)
	rec.MaxScore = round2(max)
}

// DeriveStatus recomputes the record status from the answer set. The
// export flag is authoritative; otherwise reviewed requires a teacher
// grade on every answer and graded requires some effective grade on
// every answer.
func DeriveStatus(rec *quiz.ResponseRecord) quiz.RecordStatus {
	if rec.Exported {
		return quiz.RecordExported
	}
	if len(rec.Answers) == 0 {
		return quiz.RecordPending
	}
	// Survey answers can never carry an effective grade, so they stay
	// out of both quantifiers; otherwise a single survey question would
	// pin the record at pending forever.
	gradable := 0
	reviewed := true
	graded := true
	for i := range rec.Answers {
		a := &rec.Answers[i]
		if a.AutoGrade != nil && a.AutoGrade.Status == quiz.StatusAnswered {
			continue
		}
		gradable++
		if !a.TeacherGrade.Scored() {
			reviewed = false
		}
		if EffectiveGrade(*a) == nil {
			graded = false
		}
	}
	switch {
	case gradable == 0:
		return quiz.RecordGraded
	case reviewed:
		return quiz.RecordReviewed
	case graded:
		return quiz.RecordGraded
	default:
		return quiz.RecordPending
	}
}

// refresh recomputes the record's derived fields after a grading
// mutation. Status is never patched incrementally.
func refresh(rec *quiz.ResponseRecord) {
	RecalculateTotal(rec)
	rec.Status = DeriveStatus(rec)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func ptr(v float64) *float64 { return &v }
