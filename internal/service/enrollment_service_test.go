package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GavrielUnict/elearning-platform/internal/models"
	appErrors "github.com/GavrielUnict/elearning-platform/pkg/errors"
)

type mockEnrollmentRepo struct {
	enrollments map[string]*models.Enrollment
	created     []*models.Enrollment
	decideOK    bool
	decideErr   error
	findErr     error
}

func (m *mockEnrollmentRepo) key(studentID, courseID string) string {
	return studentID + "/" + courseID
}

func (m *mockEnrollmentRepo) Find(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if e, ok := m.enrollments[m.key(studentID, courseID)]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	m.created = append(m.created, enrollment)
	if m.enrollments == nil {
		m.enrollments = map[string]*models.Enrollment{}
	}
	m.enrollments[m.key(enrollment.StudentID, enrollment.CourseID)] = enrollment
	return nil
}

func (m *mockEnrollmentRepo) Decide(ctx context.Context, studentID, courseID string, status models.EnrollmentStatus, decidedBy string, decidedAt time.Time) (bool, error) {
	if m.decideErr != nil {
		return false, m.decideErr
	}
	if m.decideOK {
		if e, ok := m.enrollments[m.key(studentID, courseID)]; ok {
			e.Status = status
		}
	}
	return m.decideOK, nil
}

func (m *mockEnrollmentRepo) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range m.enrollments {
		if e.CourseID == courseID {
			out = append(out, *e)
		}
	}
	return out, nil
}

type mockOwnershipGuard struct {
	owner map[string]string
}

func (m *mockOwnershipGuard) IsOwner(ctx context.Context, courseID, userID string) bool {
	return m.owner[courseID] == userID
}

type mockNotifier struct {
	calls int
	err   error
}

func (m *mockNotifier) EnrollmentRequested(ctx context.Context, enrollment models.Enrollment) error {
	m.calls++
	return m.err
}

func activeCourse() *mockCourseFinder {
	return &mockCourseFinder{courses: map[string]*models.Course{
		"c1": {ID: "c1", Name: "Algorithms", TeacherID: "t1", Status: models.CourseStatusActive},
		"c2": {ID: "c2", Name: "Old Course", TeacherID: "t1", Status: models.CourseStatusDeleted},
	}}
}

func TestEnrollmentRequestCreatesPending(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	notifier := &mockNotifier{}
	svc := NewEnrollmentService(repo, activeCourse(), &mockOwnershipGuard{}, notifier, nil, zap.NewNop())

	enrollment, err := svc.Request(context.Background(), models.Identity{ID: "s1", Email: "s1@uni.it", Role: models.RoleStudent}, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusPending, enrollment.Status)
	assert.Equal(t, "t1", enrollment.TeacherID)
	assert.Equal(t, 1, notifier.calls)
}

func TestEnrollmentRequestDuplicateConflicts(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]*models.Enrollment{
		"s1/c1": {StudentID: "s1", CourseID: "c1", Status: models.EnrollmentStatusPending},
	}}
	svc := NewEnrollmentService(repo, activeCourse(), &mockOwnershipGuard{}, nil, nil, zap.NewNop())

	_, err := svc.Request(context.Background(), models.Identity{ID: "s1", Role: models.RoleStudent}, "c1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "pending")
	assert.Empty(t, repo.created)
}

func TestEnrollmentRequestRejectedCannotReapply(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]*models.Enrollment{
		"s1/c1": {StudentID: "s1", CourseID: "c1", Status: models.EnrollmentStatusRejected},
	}}
	svc := NewEnrollmentService(repo, activeCourse(), &mockOwnershipGuard{}, nil, nil, zap.NewNop())

	_, err := svc.Request(context.Background(), models.Identity{ID: "s1", Role: models.RoleStudent}, "c1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "rejected")
}

func TestEnrollmentRequestTeacherForbidden(t *testing.T) {
	svc := NewEnrollmentService(&mockEnrollmentRepo{}, activeCourse(), &mockOwnershipGuard{}, nil, nil, zap.NewNop())

	_, err := svc.Request(context.Background(), models.Identity{ID: "t1", Role: models.RoleTeacher}, "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentRequestDeletedCourseNotFound(t *testing.T) {
	svc := NewEnrollmentService(&mockEnrollmentRepo{}, activeCourse(), &mockOwnershipGuard{}, nil, nil, zap.NewNop())

	_, err := svc.Request(context.Background(), models.Identity{ID: "s1", Role: models.RoleStudent}, "c2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentRequestNotifierFailureIsNonFatal(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	notifier := &mockNotifier{err: errors.New("broker down")}
	svc := NewEnrollmentService(repo, activeCourse(), &mockOwnershipGuard{}, notifier, nil, zap.NewNop())

	enrollment, err := svc.Request(context.Background(), models.Identity{ID: "s1", Role: models.RoleStudent}, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusPending, enrollment.Status)
	assert.Equal(t, 1, notifier.calls)
}

func TestEnrollmentDecideApproves(t *testing.T) {
	repo := &mockEnrollmentRepo{
		enrollments: map[string]*models.Enrollment{
			"s1/c1": {StudentID: "s1", CourseID: "c1", Status: models.EnrollmentStatusPending},
		},
		decideOK: true,
	}
	guard := &mockOwnershipGuard{owner: map[string]string{"c1": "t1"}}
	svc := NewEnrollmentService(repo, activeCourse(), guard, nil, nil, zap.NewNop())

	enrollment, err := svc.Decide(context.Background(), models.Identity{ID: "t1", Role: models.RoleTeacher}, "c1", "s1", DecideEnrollmentRequest{Action: "approve"})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusApproved, enrollment.Status)
	require.NotNil(t, enrollment.DecidedBy)
	assert.Equal(t, "t1", *enrollment.DecidedBy)
}

func TestEnrollmentDecideTerminalStateConflicts(t *testing.T) {
	repo := &mockEnrollmentRepo{
		enrollments: map[string]*models.Enrollment{
			"s1/c1": {StudentID: "s1", CourseID: "c1", Status: models.EnrollmentStatusApproved},
		},
	}
	guard := &mockOwnershipGuard{owner: map[string]string{"c1": "t1"}}
	svc := NewEnrollmentService(repo, activeCourse(), guard, nil, nil, zap.NewNop())

	_, err := svc.Decide(context.Background(), models.Identity{ID: "t1", Role: models.RoleTeacher}, "c1", "s1", DecideEnrollmentRequest{Action: "reject"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "approved")
}

func TestEnrollmentDecideLostRaceReportsWinner(t *testing.T) {
	repo := &mockEnrollmentRepo{
		enrollments: map[string]*models.Enrollment{
			"s1/c1": {StudentID: "s1", CourseID: "c1", Status: models.EnrollmentStatusPending},
		},
		decideOK: false,
	}
	guard := &mockOwnershipGuard{owner: map[string]string{"c1": "t1"}}
	svc := NewEnrollmentService(repo, activeCourse(), guard, nil, nil, zap.NewNop())

	// Simulate another decision landing between the read and the write.
	repo.enrollments["s1/c1"].Status = models.EnrollmentStatusPending
	_, err := svc.Decide(context.Background(), models.Identity{ID: "t1", Role: models.RoleTeacher}, "c1", "s1", DecideEnrollmentRequest{Action: "approve"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentDecideNonOwnerForbidden(t *testing.T) {
	guard := &mockOwnershipGuard{owner: map[string]string{"c1": "t1"}}
	svc := NewEnrollmentService(&mockEnrollmentRepo{}, activeCourse(), guard, nil, nil, zap.NewNop())

	_, err := svc.Decide(context.Background(), models.Identity{ID: "t2", Role: models.RoleTeacher}, "c1", "s1", DecideEnrollmentRequest{Action: "approve"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentDecideInvalidAction(t *testing.T) {
	guard := &mockOwnershipGuard{owner: map[string]string{"c1": "t1"}}
	svc := NewEnrollmentService(&mockEnrollmentRepo{}, activeCourse(), guard, nil, nil, zap.NewNop())

	_, err := svc.Decide(context.Background(), models.Identity{ID: "t1", Role: models.RoleTeacher}, "c1", "s1", DecideEnrollmentRequest{Action: "maybe"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentListForCourseGroupsByStatus(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]*models.Enrollment{
		"s1/c1": {StudentID: "s1", CourseID: "c1", Status: models.EnrollmentStatusPending},
		"s2/c1": {StudentID: "s2", CourseID: "c1", Status: models.EnrollmentStatusApproved},
		"s3/c1": {StudentID: "s3", CourseID: "c1", Status: models.EnrollmentStatusApproved},
		"s4/c1": {StudentID: "s4", CourseID: "c1", Status: models.EnrollmentStatusRejected},
	}}
	guard := &mockOwnershipGuard{owner: map[string]string{"c1": "t1"}}
	svc := NewEnrollmentService(repo, activeCourse(), guard, nil, nil, zap.NewNop())

	grouped, summary, err := svc.ListForCourse(context.Background(), models.Identity{ID: "t1", Role: models.RoleTeacher}, "c1")
	require.NoError(t, err)
	assert.Len(t, grouped.Pending, 1)
	assert.Len(t, grouped.Approved, 2)
	assert.Len(t, grouped.Rejected, 1)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Approved)
}
