package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GavrielUnict/elearning-platform/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Find returns the enrollment for a (student, course) pair.
func (r *EnrollmentRepository) Find(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	const query = `SELECT student_id, student_email, course_id, course_name, teacher_id, status, requested_at, updated_at, decided_by, decided_at
        FROM enrollments WHERE student_id = $1 AND course_id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, courseID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Create persists a new pending enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	const query = `INSERT INTO enrollments (student_id, student_email, course_id, course_name, teacher_id, status, requested_at, updated_at)
        VALUES (:student_id, :student_email, :course_id, :course_name, :teacher_id, :status, :requested_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Decide transitions a pending enrollment to a terminal status. The write is
// conditional on the current status so a losing concurrent decision observes
// zero rows instead of silently overwriting.
func (r *EnrollmentRepository) Decide(ctx context.Context, studentID, courseID string, status models.EnrollmentStatus, decidedBy string, decidedAt time.Time) (bool, error) {
	const query = `UPDATE enrollments SET status = $3, decided_by = $4, decided_at = $5, updated_at = $5
        WHERE student_id = $1 AND course_id = $2 AND status = $6`
	res, err := r.db.ExecContext(ctx, query, studentID, courseID, status, decidedBy, decidedAt, models.EnrollmentStatusPending)
	if err != nil {
		return false, fmt.Errorf("decide enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decide enrollment: %w", err)
	}
	return affected > 0, nil
}

// ListByCourse returns every enrollment for a course, newest request first.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	const query = `SELECT student_id, student_email, course_id, course_name, teacher_id, status, requested_at, updated_at, decided_by, decided_at
        FROM enrollments WHERE course_id = $1 ORDER BY requested_at DESC`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, courseID); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByStudent returns every enrollment a student has requested.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	const query = `SELECT student_id, student_email, course_id, course_name, teacher_id, status, requested_at, updated_at, decided_by, decided_at
        FROM enrollments WHERE student_id = $1`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}
