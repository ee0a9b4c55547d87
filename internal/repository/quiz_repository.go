package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GavrielUnict/elearning-platform/internal/models"
)

// QuizRepository handles persistence of generated quizzes.
type QuizRepository struct {
	db *sqlx.DB
}

// NewQuizRepository constructs the repository.
func NewQuizRepository(db *sqlx.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// Create persists a generated quiz. Quizzes are immutable once created.
func (r *QuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	const query = `INSERT INTO quizzes (document_id, quiz_id, course_id, questions, generated_at)
        VALUES (:document_id, :quiz_id, :course_id, :questions, :generated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, quiz); err != nil {
		return fmt.Errorf("create quiz: %w", err)
	}
	return nil
}

// Find returns a quiz by its composite key.
func (r *QuizRepository) Find(ctx context.Context, documentID, quizID string) (*models.Quiz, error) {
	const query = `SELECT document_id, quiz_id, course_id, questions, generated_at
        FROM quizzes WHERE document_id = $1 AND quiz_id = $2`
	var quiz models.Quiz
	if err := r.db.GetContext(ctx, &quiz, query, documentID, quizID); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// Delete removes a quiz, used when its document is deleted.
func (r *QuizRepository) Delete(ctx context.Context, documentID, quizID string) error {
	const query = `DELETE FROM quizzes WHERE document_id = $1 AND quiz_id = $2`
	if _, err := r.db.ExecContext(ctx, query, documentID, quizID); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return nil
}
