// Package audit records who changed which grade when. The trail is
// advisory bookkeeping for review screens and disputes; grading never
// reads it back.
package audit

import (
	"context"
	"database/sql"
	"time"
)

type Event struct {
	Actor      string `json:"actor"`
	Action     string `json:"action"`
	QuizID     string `json:"quizId"`
	StudentID  string `json:"studentId"`
	DetailJSON string `json:"detail,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
}

const (
	ActionImport       = "import"
	ActionTeacherGrade = "teacher_grade"
	ActionAIGrade      = "ai_grade"
	ActionApprove      = "approve_ai"
	ActionExport       = "export"
)

// Log appends grading events. A nil *Log discards them, so callers
// never need to branch on whether auditing is configured.
type Log struct{ db *sql.DB }

func NewLog(db *sql.DB) *Log { return &Log{db: db} }

func (l *Log) Append(ctx context.Context, e Event) error {
	if l == nil || l.db == nil {
		return nil
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_log (actor, action, quiz_id, student_id, detail, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		e.Actor, e.Action, e.QuizID, e.StudentID, e.DetailJSON, e.CreatedAt)
	return err
}

// Recent returns the newest events for one response record.
func (l *Log) Recent(ctx context.Context, quizID, studentID string, limit int) ([]Event, error) {
	if l == nil || l.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT actor, action, quiz_id, student_id, detail, created_at
		 FROM audit_log WHERE quiz_id = $1 AND student_id = $2
		 ORDER BY created_at DESC LIMIT $3`,
		quizID, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Actor, &e.Action, &e.QuizID, &e.StudentID, &e.DetailJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
