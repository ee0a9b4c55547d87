package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/GavrielUnict/elearning-platform/internal/models"
)

// ResultRepository handles persistence of quiz attempts.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository constructs the repository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Create appends a new attempt record. Every submission gets its own row.
func (r *ResultRepository) Create(ctx context.Context, result *models.Result) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	const query = `INSERT INTO results (id, student_id, quiz_id, document_id, course_id, score, correct_answers, total_questions, details, completed_at)
        VALUES (:id, :student_id, :quiz_id, :document_id, :course_id, :score, :correct_answers, :total_questions, :details, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("create result: %w", err)
	}
	return nil
}

// ListByStudent returns a student's attempts, newest first.
func (r *ResultRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Result, error) {
	const query = `SELECT id, student_id, quiz_id, document_id, course_id, score, correct_answers, total_questions, details, completed_at
        FROM results WHERE student_id = $1 ORDER BY completed_at DESC`
	var results []models.Result
	if err := r.db.SelectContext(ctx, &results, query, studentID); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}
