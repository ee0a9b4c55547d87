package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GavrielUnict/elearning-platform/internal/models"
)

// CourseRepository handles persistence of courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create persists a new course record.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (id, name, description, teacher_id, teacher_email, status, created_at, updated_at)
        VALUES (:id, :name, :description, :teacher_id, :teacher_email, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, name, description, teacher_id, teacher_email, status, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListByTeacher returns all courses owned by a teacher, newest first.
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error) {
	const query = `SELECT id, name, description, teacher_id, teacher_email, status, created_at, updated_at
        FROM courses WHERE teacher_id = $1 ORDER BY created_at DESC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher courses: %w", err)
	}
	return courses, nil
}

// ListActive returns every active course, newest first.
func (r *CourseRepository) ListActive(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, name, description, teacher_id, teacher_email, status, created_at, updated_at
        FROM courses WHERE status = $1 ORDER BY created_at DESC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, models.CourseStatusActive); err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	return courses, nil
}

// Update changes name and description of a course.
func (r *CourseRepository) Update(ctx context.Context, id, name, description string) error {
	const query = `UPDATE courses SET name = $2, description = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, name, description, time.Now().UTC()); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// SoftDelete marks a course deleted. Records are never physically removed.
func (r *CourseRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE courses SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.CourseStatusDeleted, time.Now().UTC()); err != nil {
		return fmt.Errorf("soft delete course: %w", err)
	}
	return nil
}
