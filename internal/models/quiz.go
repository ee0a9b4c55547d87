package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Question is one multiple-choice question with the index of its correct
// option. Never serialised to students as-is; see SanitizedQuestion.
type Question struct {
	QuestionID    string   `json:"questionId"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// SanitizedQuestion is the student-facing shape with the correct-answer
// field stripped.
type SanitizedQuestion struct {
	QuestionID string   `json:"questionId"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
}

// Sanitize strips the correct answer.
func (q Question) Sanitize() SanitizedQuestion {
	return SanitizedQuestion{QuestionID: q.QuestionID, Question: q.Question, Options: q.Options}
}

// Questions stores the ordered question list as a JSONB column.
type Questions []Question

// Value implements driver.Valuer.
func (q Questions) Value() (driver.Value, error) {
	return json.Marshal(q)
}

// Scan implements sql.Scanner.
func (q *Questions) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, q)
	case string:
		return json.Unmarshal([]byte(v), q)
	case nil:
		*q = nil
		return nil
	default:
		return fmt.Errorf("unsupported questions source %T", src)
	}
}

// Quiz is keyed by (documentId, quizId) and immutable once created.
type Quiz struct {
	DocumentID  string    `db:"document_id" json:"documentId"`
	QuizID      string    `db:"quiz_id" json:"quizId"`
	CourseID    string    `db:"course_id" json:"courseId"`
	Questions   Questions `db:"questions" json:"questions"`
	GeneratedAt time.Time `db:"generated_at" json:"generatedAt"`
}
