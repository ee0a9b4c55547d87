package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/GavrielUnict/elearning-platform/internal/models"
)

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type enrollmentFinder interface {
	Find(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
}

// AccessService answers ownership and enrollment questions. Both predicates
// are read-only and fail closed: a store error denies access and is logged,
// the caller decides whether to escalate.
type AccessService struct {
	courses     courseFinder
	enrollments enrollmentFinder
	logger      *zap.Logger
}

// NewAccessService constructs AccessService.
func NewAccessService(courses courseFinder, enrollments enrollmentFinder, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{courses: courses, enrollments: enrollments, logger: logger}
}

// IsOwner reports whether the course exists and is owned by userID.
// A missing course is false, not an error.
func (s *AccessService) IsOwner(ctx context.Context, courseID, userID string) bool {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Sugar().Errorw("ownership check failed", "course_id", courseID, "error", err)
		}
		return false
	}
	return course.TeacherID == userID
}

// IsEnrolled reports whether an approved enrollment exists for the pair.
// Pending, rejected and absent enrollments all deny access.
func (s *AccessService) IsEnrolled(ctx context.Context, studentID, courseID string) bool {
	enrollment, err := s.enrollments.Find(ctx, studentID, courseID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Sugar().Errorw("enrollment check failed", "student_id", studentID, "course_id", courseID, "error", err)
		}
		return false
	}
	return enrollment.Status == models.EnrollmentStatusApproved
}
