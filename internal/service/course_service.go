package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GavrielUnict/elearning-platform/internal/models"
	appErrors "github.com/GavrielUnict/elearning-platform/pkg/errors"
)

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error)
	ListActive(ctx context.Context) ([]models.Course, error)
	Update(ctx context.Context, id, name, description string) error
	SoftDelete(ctx context.Context, id string) error
}

type studentEnrollmentLister interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
}

// CourseRequest carries the create/update payload.
type CourseRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// CourseList is the role-dependent listing result.
type CourseList struct {
	Teacher []models.Course
	Student []models.CourseForStudent
}

// CourseService manages course lifecycle.
type CourseService struct {
	repo        courseRepository
	enrollments studentEnrollmentLister
	access      ownershipGuard
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(repo courseRepository, enrollments studentEnrollmentLister, access ownershipGuard, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, enrollments: enrollments, access: access, validator: validate, logger: logger}
}

// Create registers a new course owned by the calling teacher.
func (s *CourseService) Create(ctx context.Context, identity models.Identity, req CourseRequest) (*models.Course, error) {
	if !identity.IsTeacher() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers can create courses")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name and description are required")
	}

	now := time.Now().UTC()
	course := &models.Course{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Description:  req.Description,
		TeacherID:    identity.ID,
		TeacherEmail: identity.Email,
		Status:       models.CourseStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// List returns the caller's view of the catalogue: teachers see their own
// courses, students see all active courses annotated with their enrollment
// status.
func (s *CourseService) List(ctx context.Context, identity models.Identity) (*CourseList, error) {
	if identity.IsTeacher() {
		courses, err := s.repo.ListByTeacher(ctx, identity.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
		}
		return &CourseList{Teacher: courses}, nil
	}

	courses, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, identity.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	statusByCourse := make(map[string]models.EnrollmentStatus, len(enrollments))
	for _, e := range enrollments {
		statusByCourse[e.CourseID] = e.Status
	}

	annotated := make([]models.CourseForStudent, 0, len(courses))
	for _, course := range courses {
		status := models.EnrollmentStatusNone
		if st, ok := statusByCourse[course.ID]; ok {
			status = string(st)
		}
		annotated = append(annotated, models.CourseForStudent{Course: course, EnrollmentStatus: status})
	}
	return &CourseList{Student: annotated}, nil
}

// Get returns a course by ID, visible to any authenticated caller.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Update changes a course's name and description. Owner only.
func (s *CourseService) Update(ctx context.Context, identity models.Identity, id string, req CourseRequest) (*models.Course, error) {
	if !s.access.IsOwner(ctx, id, identity.ID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the course owner can perform this action")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name and description are required")
	}
	if err := s.repo.Update(ctx, id, req.Name, req.Description); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes a course. Owner only.
func (s *CourseService) Delete(ctx context.Context, identity models.Identity, id string) error {
	if !s.access.IsOwner(ctx, id, identity.ID) {
		return appErrors.Clone(appErrors.ErrForbidden, "only the course owner can perform this action")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}
