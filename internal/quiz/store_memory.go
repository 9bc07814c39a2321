package quiz

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu        sync.RWMutex
	quizzes   map[string]Quiz
	responses map[string]map[string]ResponseRecord // quizID -> studentID -> record
}

// NewInMemoryStore returns a Store backed by process memory, for
// offline use and tests.
func NewInMemoryStore() Store {
	return &memoryStore{
		quizzes:   map[string]Quiz{},
		responses: map[string]map[string]ResponseRecord{},
	}
}

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuiz(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrQuizNotFound
	}
	return q, nil
}

func (m *memoryStore) ListQuizzes(_ context.Context) ([]Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Quiz, 0, len(m.quizzes))
	for _, q := range m.quizzes {
		out = append(out, q)
	}
	return out, nil
}

func (m *memoryStore) AppendAttempt(_ context.Context, quizID string, a Attempt) (Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[quizID]
	if !ok {
		return Quiz{}, ErrQuizNotFound
	}
	q.Attempts = append(q.Attempts, a)
	m.quizzes[quizID] = q
	return q, nil
}

func (m *memoryStore) PutResponse(_ context.Context, rec ResponseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byStudent, ok := m.responses[rec.QuizID]
	if !ok {
		byStudent = map[string]ResponseRecord{}
		m.responses[rec.QuizID] = byStudent
	}
	byStudent[rec.StudentID] = rec
	return nil
}

func (m *memoryStore) GetResponse(_ context.Context, quizID, studentID string) (ResponseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.responses[quizID][studentID]
	if !ok {
		return ResponseRecord{}, ErrResponseNotFound
	}
	return rec, nil
}

func (m *memoryStore) ListResponses(_ context.Context, quizID, groupKey string) ([]ResponseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ResponseRecord, 0, len(m.responses[quizID]))
	for _, rec := range m.responses[quizID] {
		if groupKey != "" && rec.GroupKey != groupKey {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
