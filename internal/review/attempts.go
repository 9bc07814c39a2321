package review

import (
	"github.com/markbook-app/markbook/internal/grading"
	"github.com/markbook-app/markbook/internal/quiz"
)

// AttemptGrade resolves the grade that counts for one attempt answer.
// The legacy review verdict, written when a teacher process-grades an
// attempt in place, wins over the auto grade.
func AttemptGrade(a quiz.AnswerRecord) *quiz.Grade {
	if a.Review.Scored() {
		return a.Review
	}
	if a.AutoGrade.Scored() {
		return a.AutoGrade
	}
	return nil
}

// GradeAttempt builds the immutable attempt snapshot for one
// quiz-taking session: per-answer auto grades plus the derived score
// summary. values is the ordered raw answers, one per question; nil
// entries are unanswered.
func GradeAttempt(e *grading.Engine, qz quiz.Quiz, values []any, timestamp int64) quiz.Attempt {
	att := quiz.Attempt{Timestamp: timestamp, Answers: make([]quiz.AnswerRecord, 0, len(values))}
	for i, v := range values {
		ar := quiz.AnswerRecord{QuestionIndex: i, Answer: v}
		if i < len(qz.Questions) {
			g := e.Grade(qz.Questions[i], v)
			ar.AutoGrade = &g
		}
		att.Answers = append(att.Answers, ar)
	}
	att.Score = SummarizeAttempt(att)
	return att
}

// SummarizeAttempt rolls per-answer grades into the attempt score
// summary. Survey answers and ungraded answers stay out of both sums.
func SummarizeAttempt(att quiz.Attempt) quiz.ScoreSummary {
	var sum quiz.ScoreSummary
	for _, a := range att.Answers {
		if a.AutoGrade != nil {
			switch a.AutoGrade.Status {
			case quiz.StatusAnswered:
				sum.Answered++
			case quiz.StatusPendingReview:
				if !a.Review.Scored() {
					sum.Pending++
				}
			case quiz.StatusCorrect:
				sum.Correct++
			}
		}
		g := AttemptGrade(a)
		if g == nil {
			continue
		}
		sum.Earned += *g.Score
		if g.MaxScore != nil {
			sum.Possible += *g.MaxScore
		}
	}
	sum.Earned = round2(sum.Earned)
	sum.Possible = round2(sum.Possible)
	return sum
}
