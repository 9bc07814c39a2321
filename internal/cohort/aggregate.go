// Package cohort builds the question-centric statistical view used for
// bulk review: per-question correctness rates, average scores and
// pending counts across every response record for one quiz.
package cohort

import (
	"fmt"
	"math"

	"github.com/markbook-app/markbook/internal/quiz"
	"github.com/markbook-app/markbook/internal/review"
)

// QuestionSummary is the aggregate view of one question across the
// cohort.
type QuestionSummary struct {
	Index         int               `json:"index"`
	Text          string            `json:"text"`
	Type          quiz.QuestionType `json:"type,omitempty"`
	Points        float64           `json:"points"`
	ResponseCount int               `json:"responseCount"`
	CorrectCount  int               `json:"correctCount"`
	PendingCount  int               `json:"pendingCount"`
	AvgScore      float64           `json:"avgScore"`
}

// Summary is the cohort projection for one quiz. It is recomputed on
// every read and never persisted.
type Summary struct {
	QuizID         string            `json:"quizId"`
	SubmittedCount int               `json:"submittedCount"`
	AverageScore   float64           `json:"averageScore"` // percent, 0-100
	MaxScore       float64           `json:"maxScore"`
	Questions      []QuestionSummary `json:"questions"`
}

// Aggregate projects a cohort of response records onto the quiz's
// questions. It is a read-only, idempotent transform: records are
// never mutated, and the same inputs always produce the same output.
//
// A response may hold more answers than the current quiz definition if
// the quiz was edited after some submissions; those extra indices get
// a synthetic placeholder question rather than being dropped.
func Aggregate(qz quiz.Quiz, records []quiz.ResponseRecord) Summary {
	sum := Summary{QuizID: qz.ID, SubmittedCount: len(records), Questions: []QuestionSummary{}}
	if len(records) == 0 {
		return sum
	}

	numQuestions := len(qz.Questions)
	for _, rec := range records {
		for _, a := range rec.Answers {
			if a.QuestionIndex+1 > numQuestions {
				numQuestions = a.QuestionIndex + 1
			}
		}
	}

	for idx := 0; idx < numQuestions; idx++ {
		qs := QuestionSummary{Index: idx}
		if idx < len(qz.Questions) {
			q := qz.Questions[idx]
			qs.Text = q.Text
			qs.Type = q.Type
			qs.Points = q.MaxPoints()
		} else {
			qs.Text = fmt.Sprintf("Question %d", idx)
			qs.Points = 1
		}

		var scoreSum float64
		scored := 0
		for _, rec := range records {
			a := rec.AnswerAt(idx)
			if a == nil {
				continue
			}
			qs.ResponseCount++
			if a.AutoGrade != nil && a.AutoGrade.Status == quiz.StatusCorrect {
				qs.CorrectCount++
			}
			g := review.EffectiveGrade(*a)
			if g == nil {
				if a.AutoGrade == nil || a.AutoGrade.Status != quiz.StatusAnswered {
					qs.PendingCount++
				}
				continue
			}
			scoreSum += *g.Score
			scored++
		}
		if scored > 0 {
			qs.AvgScore = round2(scoreSum / float64(scored))
		}
		sum.Questions = append(sum.Questions, qs)
	}

	var totalSum, cohortMax float64
	for _, rec := range records {
		totalSum += rec.TotalScore
		if rec.MaxScore > cohortMax {
			cohortMax = rec.MaxScore
		}
	}
	sum.MaxScore = cohortMax
	if len(records) > 0 && cohortMax > 0 {
		sum.AverageScore = round2(100 * totalSum / (float64(len(records)) * cohortMax))
	}
	return sum
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
