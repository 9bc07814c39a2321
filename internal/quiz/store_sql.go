package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SQLStore persists quiz and response documents as JSON columns, one
// row per document. Works against sqlite and postgres.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	aj, err := json.Marshal(q.Attempts)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (id,title,questions_json,attempts_json,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, questions_json=EXCLUDED.questions_json, attempts_json=EXCLUDED.attempts_json`,
		q.ID, q.Title, string(qj), string(aj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,questions_json,attempts_json FROM quizzes WHERE id=$1`, id)
	return scanQuiz(row)
}

func (s *SQLStore) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,questions_json,attempts_json FROM quizzes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) AppendAttempt(ctx context.Context, quizID string, a Attempt) (Quiz, error) {
	q, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return Quiz{}, err
	}
	q.Attempts = append(q.Attempts, a)
	aj, err := json.Marshal(q.Attempts)
	if err != nil {
		return Quiz{}, err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE quizzes SET attempts_json=$1 WHERE id=$2`, string(aj), quizID); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) PutResponse(ctx context.Context, rec ResponseRecord) error {
	aj, err := json.Marshal(rec.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO responses (quiz_id,student_id,group_key,submitted_at,answers_json,total_score,max_score,status,exported)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (quiz_id,student_id) DO UPDATE SET
		  group_key=EXCLUDED.group_key, submitted_at=EXCLUDED.submitted_at,
		  answers_json=EXCLUDED.answers_json, total_score=EXCLUDED.total_score,
		  max_score=EXCLUDED.max_score, status=EXCLUDED.status, exported=EXCLUDED.exported`,
		rec.QuizID, rec.StudentID, rec.GroupKey, rec.SubmittedAt, string(aj),
		rec.TotalScore, rec.MaxScore, string(rec.Status), rec.Exported)
	return err
}

func (s *SQLStore) GetResponse(ctx context.Context, quizID, studentID string) (ResponseRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT quiz_id,student_id,group_key,submitted_at,answers_json,total_score,max_score,status,exported
		FROM responses WHERE quiz_id=$1 AND student_id=$2`, quizID, studentID)
	return scanResponse(row)
}

func (s *SQLStore) ListResponses(ctx context.Context, quizID, groupKey string) ([]ResponseRecord, error) {
	query := `SELECT quiz_id,student_id,group_key,submitted_at,answers_json,total_score,max_score,status,exported
		FROM responses WHERE quiz_id=$1`
	args := []any{quizID}
	if groupKey != "" {
		query += ` AND group_key=$2`
		args = append(args, groupKey)
	}
	query += ` ORDER BY student_id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ResponseRecord{}
	for rows.Next() {
		rec, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (Quiz, error) {
	var q Quiz
	var qjson, ajson string
	if err := row.Scan(&q.ID, &q.Title, &qjson, &ajson); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrQuizNotFound
		}
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(ajson), &q.Attempts); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func scanResponse(row rowScanner) (ResponseRecord, error) {
	var rec ResponseRecord
	var ajson, status string
	var submitted sql.NullInt64
	if err := row.Scan(&rec.QuizID, &rec.StudentID, &rec.GroupKey, &submitted, &ajson,
		&rec.TotalScore, &rec.MaxScore, &status, &rec.Exported); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ResponseRecord{}, ErrResponseNotFound
		}
		return ResponseRecord{}, err
	}
	rec.SubmittedAt = submitted.Int64
	rec.Status = RecordStatus(status)
	if err := json.Unmarshal([]byte(ajson), &rec.Answers); err != nil {
		return ResponseRecord{}, err
	}
	return rec, nil
}
