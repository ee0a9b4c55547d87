package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/GavrielUnict/elearning-platform/internal/models"
	appErrors "github.com/GavrielUnict/elearning-platform/pkg/errors"
)

type enrollmentRepository interface {
	Find(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Decide(ctx context.Context, studentID, courseID string, status models.EnrollmentStatus, decidedBy string, decidedAt time.Time) (bool, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error)
}

type ownershipGuard interface {
	IsOwner(ctx context.Context, courseID, userID string) bool
}

// Notifier publishes best-effort notifications. Failures never fail the
// primary operation.
type Notifier interface {
	EnrollmentRequested(ctx context.Context, enrollment models.Enrollment) error
}

// DecideEnrollmentRequest is the approve/reject payload.
type DecideEnrollmentRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

// EnrollmentService governs the pending -> approved/rejected state machine.
type EnrollmentService struct {
	repo      enrollmentRepository
	courses   courseFinder
	access    ownershipGuard
	notifier  Notifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, courses courseFinder, access ownershipGuard, notifier Notifier, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, courses: courses, access: access, notifier: notifier, validator: validate, logger: logger}
}

// Request creates a pending enrollment for the calling student.
func (s *EnrollmentService) Request(ctx context.Context, identity models.Identity, courseID string) (*models.Enrollment, error) {
	if !identity.IsStudent() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can request enrollment")
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found or not active")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.Status != models.CourseStatusActive {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found or not active")
	}

	if existing, err := s.repo.Find(ctx, identity.ID, courseID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("enrollment already %s", existing.Status))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}

	now := time.Now().UTC()
	enrollment := &models.Enrollment{
		StudentID:    identity.ID,
		StudentEmail: identity.Email,
		CourseID:     courseID,
		CourseName:   course.Name,
		TeacherID:    course.TeacherID,
		Status:       models.EnrollmentStatusPending,
		RequestedAt:  now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	if s.notifier != nil {
		if err := s.notifier.EnrollmentRequested(ctx, *enrollment); err != nil {
			s.logger.Sugar().Errorw("enrollment notification failed", "course_id", courseID, "student_id", identity.ID, "error", err)
		}
	}

	return enrollment, nil
}

// Decide transitions a pending enrollment to approved or rejected. Terminal
// states are final: a second decision observes a conflict naming the current
// status, never a silent overwrite.
func (s *EnrollmentService) Decide(ctx context.Context, identity models.Identity, courseID, studentID string, req DecideEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, `action must be either "approve" or "reject"`)
	}

	if !s.access.IsOwner(ctx, courseID, identity.ID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the course owner can decide enrollments")
	}

	enrollment, err := s.repo.Find(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("enrollment already %s", enrollment.Status))
	}

	status := models.EnrollmentStatusApproved
	if req.Action == "reject" {
		status = models.EnrollmentStatusRejected
	}

	decidedAt := time.Now().UTC()
	ok, err := s.repo.Decide(ctx, studentID, courseID, status, identity.ID, decidedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	if !ok {
		// Lost a race with another decision; report the winner's status.
		current, err := s.repo.Find(ctx, studentID, courseID)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment already decided")
		}
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("enrollment already %s", current.Status))
	}

	enrollment.Status = status
	enrollment.DecidedBy = &identity.ID
	enrollment.DecidedAt = &decidedAt
	enrollment.UpdatedAt = decidedAt
	return enrollment, nil
}

// ListForCourse returns a course's enrollments grouped by status with
// summary counts. Owner only.
func (s *EnrollmentService) ListForCourse(ctx context.Context, identity models.Identity, courseID string) (*models.GroupedEnrollments, *models.EnrollmentSummary, error) {
	if !s.access.IsOwner(ctx, courseID, identity.ID) {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "only the course owner can view enrollments")
	}

	enrollments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	grouped := &models.GroupedEnrollments{
		Pending:  []models.Enrollment{},
		Approved: []models.Enrollment{},
		Rejected: []models.Enrollment{},
	}
	for _, e := range enrollments {
		switch e.Status {
		case models.EnrollmentStatusPending:
			grouped.Pending = append(grouped.Pending, e)
		case models.EnrollmentStatusApproved:
			grouped.Approved = append(grouped.Approved, e)
		case models.EnrollmentStatusRejected:
			grouped.Rejected = append(grouped.Rejected, e)
		}
	}

	summary := &models.EnrollmentSummary{
		Total:    len(enrollments),
		Pending:  len(grouped.Pending),
		Approved: len(grouped.Approved),
		Rejected: len(grouped.Rejected),
	}
	return grouped, summary, nil
}
