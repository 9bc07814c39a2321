package review

import (
	"github.com/markbook-app/markbook/internal/grading"
	"github.com/markbook-app/markbook/internal/quiz"
)

// pointsFor resolves the point value for a question index. Responses
// may reference indices beyond the current quiz definition when the
// quiz was edited after submission; those fall back to a single point,
// matching the synthetic placeholder question.
func pointsFor(qz quiz.Quiz, questionIndex int) float64 {
	if questionIndex >= 0 && questionIndex < len(qz.Questions) {
		return qz.Questions[questionIndex].MaxPoints()
	}
	return 1
}

// AutoGradeRecord fills the autoGrade slot of every answer from the
// quiz definition. Existing auto grades are left untouched: an auto
// grade is immutable once computed. Derived totals and status are
// refreshed afterwards.
func AutoGradeRecord(e *grading.Engine, qz quiz.Quiz, rec *quiz.ResponseRecord) {
	for i := range rec.Answers {
		a := &rec.Answers[i]
		if a.AutoGrade != nil {
			continue
		}
		idx := a.QuestionIndex
		if idx < 0 || idx >= len(qz.Questions) {
			// No surviving question definition: nothing automatic to say.
			continue
		}
		g := e.Grade(qz.Questions[idx], a.Value)
		a.AutoGrade = &g
	}
	refresh(rec)
}

// ApplyTeacherGrade records a human verdict on one answer. The score
// must lie in [0, points]; out-of-range scores and unknown answer
// indices reject the mutation and leave the record untouched.
func ApplyTeacherGrade(qz quiz.Quiz, rec *quiz.ResponseRecord, questionIndex int, score float64, feedback, gradedBy string, gradedAt int64) error {
	a := rec.AnswerAt(questionIndex)
	if a == nil {
		return quiz.ErrNoSuchAnswer
	}
	max := pointsFor(qz, questionIndex)
	if score < 0 || score > max {
		return quiz.ErrScoreOutOfRange
	}
	a.TeacherGrade = &quiz.Grade{
		Score:    ptr(round2(score)),
		MaxScore: ptr(max),
		Feedback: feedback,
		GradedBy: gradedBy,
		GradedAt: gradedAt,
	}
	refresh(rec)
	return nil
}

// AttachAIGrade records an advisory AI suggestion on one answer. The
// suggestion never displaces a teacher grade; it only fills the
// claudeGrade slot.
func AttachAIGrade(qz quiz.Quiz, rec *quiz.ResponseRecord, questionIndex int, score float64, feedback string, gradedAt int64) error {
	a := rec.AnswerAt(questionIndex)
	if a == nil {
		return quiz.ErrNoSuchAnswer
	}
	max := pointsFor(qz, questionIndex)
	if score < 0 || score > max {
		return quiz.ErrScoreOutOfRange
	}
	a.ClaudeGrade = &quiz.Grade{
		Score:    ptr(round2(score)),
		MaxScore: ptr(max),
		Feedback: feedback,
		GradedAt: gradedAt,
	}
	refresh(rec)
	return nil
}

// ApproveAIGrade promotes an existing AI suggestion into the
// authoritative teacher slot. Approving an absent suggestion is a
// rejected operation.
func ApproveAIGrade(rec *quiz.ResponseRecord, questionIndex int, approvedBy string, approvedAt int64) error {
	a := rec.AnswerAt(questionIndex)
	if a == nil {
		return quiz.ErrNoSuchAnswer
	}
	if !a.ClaudeGrade.Scored() {
		return quiz.ErrNoAIGrade
	}
	approved := *a.ClaudeGrade
	approved.GradedBy = approvedBy
	approved.GradedAt = approvedAt
	a.TeacherGrade = &approved
	refresh(rec)
	return nil
}

// SetExported flips the export flag and rederives status.
func SetExported(rec *quiz.ResponseRecord, exported bool) {
	rec.Exported = exported
	refresh(rec)
}
