// Package roster maps opaque student IDs to personal info kept outside
// quiz documents, so response records stay free of PII and safe to
// share. Rosters live in YAML or JSON files chosen by extension.
package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Student is one roster entry.
type Student struct {
	Email      string `json:"email" yaml:"email"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	ResponseID string `json:"responseId,omitempty" yaml:"responseId,omitempty"` // forms response ID for grade export
}

// Roster maps student IDs (s001, s002, ...) to students.
type Roster struct {
	Created  string             `json:"created" yaml:"created"`
	Source   string             `json:"source,omitempty" yaml:"source,omitempty"`
	Students map[string]Student `json:"students" yaml:"students"`
}

// Submission is the slice of a forms response export the roster needs.
type Submission struct {
	Email      string `json:"respondentEmail"`
	Name       string `json:"respondentName,omitempty"`
	ResponseID string `json:"responseId,omitempty"`
}

// StudentID renders a sequential student ID (1-indexed).
func StudentID(index int) string { return fmt.Sprintf("s%03d", index) }

// FromSubmissions builds a roster from a forms response export,
// assigning sequential IDs in submission order.
func FromSubmissions(source string, subs []Submission) Roster {
	r := Roster{
		Created:  time.Now().UTC().Format(time.RFC3339),
		Source:   source,
		Students: make(map[string]Student, len(subs)),
	}
	for i, sub := range subs {
		email := sub.Email
		if email == "" {
			email = fmt.Sprintf("student%d@unknown", i+1)
		}
		r.Students[StudentID(i+1)] = Student{
			Email:      email,
			Name:       sub.Name,
			ResponseID: sub.ResponseID,
		}
	}
	return r
}

// Load reads a roster file, YAML or JSON by extension.
func Load(path string) (Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, err
	}
	var r Roster
	if isYAML(path) {
		err = yaml.Unmarshal(data, &r)
	} else {
		err = json.Unmarshal(data, &r)
	}
	if err != nil {
		return Roster{}, fmt.Errorf("parse roster %s: %w", path, err)
	}
	if r.Students == nil {
		r.Students = map[string]Student{}
	}
	return r, nil
}

// Save writes the roster, YAML or JSON by extension.
func (r Roster) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func isYAML(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// LookupByID returns the student for an ID, if present.
func (r Roster) LookupByID(studentID string) (Student, bool) {
	s, ok := r.Students[studentID]
	return s, ok
}

// LookupByEmail finds the student ID and entry for an email,
// case-insensitively.
func (r Roster) LookupByEmail(email string) (string, Student, bool) {
	for id, s := range r.Students {
		if strings.EqualFold(s.Email, email) {
			return id, s, true
		}
	}
	return "", Student{}, false
}

// List returns student IDs in sorted order.
func (r Roster) List() []string {
	ids := make([]string, 0, len(r.Students))
	for id := range r.Students {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DisplayName resolves a student ID to a human-readable name for
// review screens. Purely presentational: it never affects grading, and
// unknown IDs fall back to the raw ID.
func (r Roster) DisplayName(studentID string) string {
	s, ok := r.Students[studentID]
	if !ok {
		return studentID
	}
	if s.Name != "" {
		return s.Name
	}
	if s.Email != "" {
		return s.Email
	}
	return studentID
}
