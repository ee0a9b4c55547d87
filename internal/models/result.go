package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AnswerDetail records one question's outcome within an attempt. A nil
// StudentAnswer marks an unanswered question.
type AnswerDetail struct {
	QuestionID    string `json:"questionId"`
	Question      string `json:"question"`
	StudentAnswer *int   `json:"studentAnswer"`
	CorrectAnswer int    `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// AnswerDetails stores per-question outcomes as a JSONB column.
type AnswerDetails []AnswerDetail

// Value implements driver.Valuer.
func (d AnswerDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner.
func (d *AnswerDetails) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		*d = nil
		return nil
	default:
		return fmt.Errorf("unsupported details source %T", src)
	}
}

// Result is one scored submission. Append-only: every submission inserts a
// new row, repeated submissions never collide.
type Result struct {
	ID             string        `db:"id" json:"id"`
	StudentID      string        `db:"student_id" json:"studentId"`
	QuizID         string        `db:"quiz_id" json:"quizId"`
	DocumentID     string        `db:"document_id" json:"documentId"`
	CourseID       string        `db:"course_id" json:"courseId"`
	Score          int           `db:"score" json:"score"`
	CorrectAnswers int           `db:"correct_answers" json:"correctAnswers"`
	TotalQuestions int           `db:"total_questions" json:"totalQuestions"`
	Details        AnswerDetails `db:"details" json:"detailedResults"`
	CompletedAt    time.Time     `db:"completed_at" json:"completedAt"`
}

// AttemptView is the per-attempt shape exposed by the results listing.
type AttemptView struct {
	Score          int           `json:"score"`
	CorrectAnswers int           `json:"correctAnswers"`
	TotalQuestions int           `json:"totalQuestions"`
	CompletedAt    time.Time     `json:"completedAt"`
	Details        AnswerDetails `json:"detailedResults"`
}

// QuizResults aggregates a student's attempts for one quiz.
type QuizResults struct {
	QuizID        string        `json:"quizId"`
	DocumentID    string        `json:"documentId"`
	CourseID      string        `json:"courseId"`
	BestScore     int           `json:"bestScore"`
	AverageScore  int           `json:"averageScore"`
	TotalAttempts int           `json:"totalAttempts"`
	LastAttempt   *AttemptView  `json:"lastAttempt"`
	Attempts      []AttemptView `json:"attempts"`
}

// ResultsSummary is the platform-level rollup for one student.
type ResultsSummary struct {
	TotalQuizzesTaken   int `json:"totalQuizzesTaken"`
	TotalAttempts       int `json:"totalAttempts"`
	OverallAverageScore int `json:"overallAverageScore"`
}
