package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GavrielUnict/elearning-platform/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestEnrollmentFind(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"student_id", "student_email", "course_id", "course_name", "teacher_id", "status", "requested_at", "updated_at", "decided_by", "decided_at"}).
		AddRow("s1", "s1@example.com", "c1", "Algorithms", "t1", string(models.EnrollmentStatusPending), now, now, nil, nil)
	mock.ExpectQuery("SELECT student_id, student_email, course_id").
		WithArgs("s1", "c1").
		WillReturnRows(rows)

	enrollment, err := repo.Find(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusPending, enrollment.Status)
	assert.Nil(t, enrollment.DecidedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentDecideConditional(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	decidedAt := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = $3, decided_by = $4, decided_at = $5, updated_at = $5")).
		WithArgs("s1", "c1", string(models.EnrollmentStatusApproved), "t1", decidedAt, string(models.EnrollmentStatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Decide(context.Background(), "s1", "c1", models.EnrollmentStatusApproved, "t1", decidedAt)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentDecideLosesRace(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	decidedAt := time.Now()
	mock.ExpectExec("UPDATE enrollments SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Decide(context.Background(), "s1", "c1", models.EnrollmentStatusRejected, "t1", decidedAt)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
