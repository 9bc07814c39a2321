package quiz

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeCheckbox       QuestionType = "checkbox"
	TypeDropdown       QuestionType = "dropdown"
	TypeNumeric        QuestionType = "numeric"
	TypeShortAnswer    QuestionType = "short_answer"
	TypeWorked         QuestionType = "worked"
	TypeScale          QuestionType = "scale"
	TypeGrid           QuestionType = "grid"
	TypeDate           QuestionType = "date"
	TypeTime           QuestionType = "time"
	TypeDatetime       QuestionType = "datetime"
)

// GradeStatus is the outcome of grading one answer.
type GradeStatus string

const (
	StatusCorrect       GradeStatus = "correct"
	StatusIncorrect     GradeStatus = "incorrect"
	StatusPartial       GradeStatus = "partial"
	StatusPendingReview GradeStatus = "pending_review"
	StatusAnswered      GradeStatus = "answered" // survey questions: recorded, never scored
)

// RecordStatus is the review state of a whole ResponseRecord.
type RecordStatus string

const (
	RecordPending  RecordStatus = "pending"
	RecordGraded   RecordStatus = "graded"
	RecordReviewed RecordStatus = "reviewed"
	RecordExported RecordStatus = "exported"
)

// Question is the static definition of one quiz item. The shape of
// CorrectAnswer depends on Type: a single value for choice/scale/
// date-like types, an index array for checkbox, a number for numeric,
// and either [row,col] pairs or a row->column map for grid.
type Question struct {
	Text            string       `json:"text,omitempty"`
	Type            QuestionType `json:"type"`
	Points          float64      `json:"points,omitempty"` // default 1
	CorrectAnswer   any          `json:"correctAnswer,omitempty"`
	Tolerance       float64      `json:"tolerance,omitempty"` // numeric only
	AcceptedAnswers []string     `json:"acceptedAnswers,omitempty"`
	PartialCredit   *bool        `json:"partialCredit,omitempty"` // default true
	Rows            []string     `json:"rows,omitempty"`          // grid only
	Columns         []string     `json:"columns,omitempty"`
}

// MaxPoints returns the question's point value, defaulting to 1.
func (q Question) MaxPoints() float64 {
	if q.Points > 0 {
		return q.Points
	}
	return 1
}

// IsSurvey reports whether the question has no correct-answer
// specification and is therefore recorded but never scored.
func (q Question) IsSurvey() bool {
	switch q.Type {
	case TypeShortAnswer:
		return false // pending review, still scorable by a human
	case TypeWorked:
		return false
	default:
		return q.CorrectAnswer == nil
	}
}

// AllowsPartial reports whether partial credit applies (default true).
func (q Question) AllowsPartial() bool {
	return q.PartialCredit == nil || *q.PartialCredit
}

// Quiz is one quiz document. Attempts is append-only history; the most
// recent attempt is the one shown and graded by default.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions"`
	Attempts  []Attempt  `json:"attempts,omitempty"`
}

// LatestAttempt returns the most recent attempt, or nil.
func (q *Quiz) LatestAttempt() *Attempt {
	if len(q.Attempts) == 0 {
		return nil
	}
	return &q.Attempts[len(q.Attempts)-1]
}

// Grade is one grading verdict for one answer. Score and MaxScore are
// nil for survey answers; Score alone is nil while a verdict awaits a
// human (pending review).
type Grade struct {
	Status   GradeStatus `json:"status,omitempty"`
	Score    *float64    `json:"score"`
	MaxScore *float64    `json:"maxScore"`
	Feedback string      `json:"feedback,omitempty"`
	GradedBy string      `json:"gradedBy,omitempty"`
	GradedAt int64       `json:"gradedAt,omitempty"`
}

// Scored reports whether the grade carries a usable score.
func (g *Grade) Scored() bool { return g != nil && g.Score != nil }

// AnswerRecord is one answered question inside an Attempt, written once
// at submission time. Review is a legacy teacher verdict kept for
// process-graded quizzes; when present it wins over AutoGrade.
type AnswerRecord struct {
	QuestionIndex int    `json:"questionIndex"`
	Answer        any    `json:"answer"`
	AutoGrade     *Grade `json:"autoGrade,omitempty"`
	Review        *Grade `json:"review,omitempty"`
}

// ScoreSummary is the derived score rollup of one attempt.
type ScoreSummary struct {
	Earned   float64 `json:"earned"`
	Possible float64 `json:"possible"`
	Correct  int     `json:"correct"`
	Pending  int     `json:"pending"`
	Answered int     `json:"answered"`
}

// Attempt is an immutable-once-written snapshot of one quiz-taking
// session.
type Attempt struct {
	Timestamp int64          `json:"timestamp"`
	Answers   []AnswerRecord `json:"answers"`
	Score     ScoreSummary   `json:"score"`
}

// Answer is one answered question inside a ResponseRecord, with the
// three independent grade slots. AutoGrade is immutable once set;
// ClaudeGrade is advisory; TeacherGrade is authoritative.
type Answer struct {
	QuestionIndex int    `json:"questionIndex"`
	Value         any    `json:"answer"`
	AutoGrade     *Grade `json:"autoGrade,omitempty"`
	ClaudeGrade   *Grade `json:"claudeGrade,omitempty"`
	TeacherGrade  *Grade `json:"teacherGrade,omitempty"`
}

// ResponseRecord is one student's submission for one quiz in the
// cohort-review workflow. TotalScore, MaxScore and Status are derived
// caches, recomputed on every grading mutation.
type ResponseRecord struct {
	StudentID   string       `json:"studentId"`
	QuizID      string       `json:"quizId"`
	GroupKey    string       `json:"groupKey,omitempty"` // class/folder grouping
	SubmittedAt int64        `json:"submittedAt,omitempty"`
	Answers     []Answer     `json:"answers"`
	TotalScore  float64      `json:"totalScore"`
	MaxScore    float64      `json:"maxScore"`
	Status      RecordStatus `json:"status"`
	Exported    bool         `json:"exported,omitempty"`
}

// AnswerAt returns the answer for a question index, or nil.
func (r *ResponseRecord) AnswerAt(questionIndex int) *Answer {
	for i := range r.Answers {
		if r.Answers[i].QuestionIndex == questionIndex {
			return &r.Answers[i]
		}
	}
	return nil
}
