package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/markbook-app/markbook/internal/audit"
	"github.com/markbook-app/markbook/internal/auth"
	"github.com/markbook-app/markbook/internal/quiz"
	"github.com/markbook-app/markbook/internal/review"
)

// GradingItem is the per-answer review view: raw answer, the three
// grade slots and which one currently counts.
type GradingItem struct {
	QuestionIndex int         `json:"questionIndex"`
	Answer        any         `json:"answer"`
	AutoGrade     *quiz.Grade `json:"autoGrade,omitempty"`
	ClaudeGrade   *quiz.Grade `json:"claudeGrade,omitempty"`
	TeacherGrade  *quiz.Grade `json:"teacherGrade,omitempty"`
	Effective     *quiz.Grade `json:"effective,omitempty"`
	Source        string      `json:"source,omitempty"` // teacher|claude|auto
}

func gradingItems(rec quiz.ResponseRecord) []GradingItem {
	items := make([]GradingItem, 0, len(rec.Answers))
	for _, a := range rec.Answers {
		item := GradingItem{
			QuestionIndex: a.QuestionIndex,
			Answer:        a.Value,
			AutoGrade:     a.AutoGrade,
			ClaudeGrade:   a.ClaudeGrade,
			TeacherGrade:  a.TeacherGrade,
			Effective:     review.EffectiveGrade(a),
		}
		switch item.Effective {
		case nil:
		case a.TeacherGrade:
			item.Source = "teacher"
		case a.ClaudeGrade:
			item.Source = "claude"
		default:
			item.Source = "auto"
		}
		items = append(items, item)
	}
	return items
}

// GET /responses/{quizID}/{studentID}/grading
func GetGradingHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := store.GetResponse(r.Context(), chi.URLParam(r, "quizID"), chi.URLParam(r, "studentID"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, map[string]any{
			"studentId":  rec.StudentID,
			"status":     rec.Status,
			"totalScore": rec.TotalScore,
			"maxScore":   rec.MaxScore,
			"items":      gradingItems(rec),
		})
	}
}

type gradeInput struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback,omitempty"`
}

type applyGradesReq struct {
	Items    map[string]gradeInput `json:"items"` // question index -> grade
	Finalize bool                  `json:"finalize,omitempty"`
}

// POST /responses/{quizID}/{studentID}/grading
func ApplyGradesHandler(svc *review.Service, trail *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		studentID := chi.URLParam(r, "studentID")
		var req applyGradesReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		grades := make(map[int]review.TeacherGradeInput, len(req.Items))
		for k, in := range req.Items {
			idx, err := strconv.Atoi(k)
			if err != nil {
				http.Error(w, "bad question index: "+k, http.StatusBadRequest)
				return
			}
			grades[idx] = review.TeacherGradeInput{Score: in.Score, Feedback: in.Feedback}
		}
		if len(grades) == 0 && !req.Finalize {
			http.Error(w, "no grades to apply", http.StatusBadRequest)
			return
		}

		gradedBy := auth.Subject(r.Context())
		var rec quiz.ResponseRecord
		var err error
		if len(grades) > 0 {
			// All-or-nothing: a rejected item must not leave earlier
			// items persisted.
			rec, err = svc.SubmitTeacherGrades(r.Context(), quizID, studentID, grades, gradedBy)
			if err != nil {
				httpError(w, err)
				return
			}
			detail, _ := json.Marshal(req.Items)
			_ = trail.Append(r.Context(), audit.Event{
				Actor: gradedBy, Action: audit.ActionTeacherGrade,
				QuizID: quizID, StudentID: studentID, DetailJSON: string(detail),
			})
		}
		if req.Finalize {
			rec, err = svc.SetExported(r.Context(), quizID, studentID, true)
			if err != nil {
				httpError(w, err)
				return
			}
			_ = trail.Append(r.Context(), audit.Event{
				Actor: gradedBy, Action: audit.ActionExport,
				QuizID: quizID, StudentID: studentID,
			})
		}
		writeJSON(w, rec)
	}
}

type approveReq struct {
	QuestionIndexes []int `json:"questionIndexes"`
}

// POST /responses/{quizID}/{studentID}/approve
func ApproveAIGradesHandler(svc *review.Service, trail *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		studentID := chi.URLParam(r, "studentID")
		var req approveReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		approvedBy := auth.Subject(r.Context())
		var rec quiz.ResponseRecord
		var err error
		for _, idx := range req.QuestionIndexes {
			rec, err = svc.ApproveAIGrade(r.Context(), quizID, studentID, idx, approvedBy)
			if err != nil {
				httpError(w, err)
				return
			}
		}
		if len(req.QuestionIndexes) > 0 {
			detail, _ := json.Marshal(req.QuestionIndexes)
			_ = trail.Append(r.Context(), audit.Event{
				Actor: approvedBy, Action: audit.ActionApprove,
				QuizID: quizID, StudentID: studentID, DetailJSON: string(detail),
			})
		}
		writeJSON(w, rec)
	}
}
