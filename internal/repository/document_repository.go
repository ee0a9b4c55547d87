package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GavrielUnict/elearning-platform/internal/models"
)

// DocumentRepository handles persistence of document metadata.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create persists a new document record.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	const query = `INSERT INTO documents (course_id, document_id, name, object_key, uploaded_by, uploaded_at, size, status)
        VALUES (:course_id, :document_id, :name, :object_key, :uploaded_by, :uploaded_at, :size, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// Find returns a document by its composite key.
func (r *DocumentRepository) Find(ctx context.Context, courseID, documentID string) (*models.Document, error) {
	const query = `SELECT course_id, document_id, name, object_key, uploaded_by, uploaded_at, size, status, quiz_id
        FROM documents WHERE course_id = $1 AND document_id = $2`
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, courseID, documentID); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByCourse returns a course's documents, newest upload first.
func (r *DocumentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Document, error) {
	const query = `SELECT course_id, document_id, name, object_key, uploaded_by, uploaded_at, size, status, quiz_id
        FROM documents WHERE course_id = $1 ORDER BY uploaded_at DESC`
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, courseID); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// AttachQuiz flips a pending document to ready and records its quiz.
// Conditional on the pending status so a replayed pipeline message cannot
// clobber an already processed document.
func (r *DocumentRepository) AttachQuiz(ctx context.Context, courseID, documentID, quizID string) (bool, error) {
	const query = `UPDATE documents SET status = $3, quiz_id = $4 WHERE course_id = $1 AND document_id = $2 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, courseID, documentID, models.DocumentStatusReady, quizID, models.DocumentStatusPending)
	if err != nil {
		return false, fmt.Errorf("attach quiz: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("attach quiz: %w", err)
	}
	return affected > 0, nil
}

// MarkFailed records a processing failure for a pending document.
func (r *DocumentRepository) MarkFailed(ctx context.Context, courseID, documentID string) error {
	const query = `UPDATE documents SET status = $3 WHERE course_id = $1 AND document_id = $2 AND status = $4`
	if _, err := r.db.ExecContext(ctx, query, courseID, documentID, models.DocumentStatusFailed, models.DocumentStatusPending); err != nil {
		return fmt.Errorf("mark document failed: %w", err)
	}
	return nil
}

// Delete removes a document record. The write is conditional on the row
// still existing so racing deletions observe the loss.
func (r *DocumentRepository) Delete(ctx context.Context, courseID, documentID string) (bool, error) {
	const query = `DELETE FROM documents WHERE course_id = $1 AND document_id = $2`
	res, err := r.db.ExecContext(ctx, query, courseID, documentID)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return affected > 0, nil
}
