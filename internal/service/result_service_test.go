package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GavrielUnict/elearning-platform/internal/models"
	appErrors "github.com/GavrielUnict/elearning-platform/pkg/errors"
)

type mockResultReader struct {
	attempts []models.Result
	err      error
}

func (m *mockResultReader) ListByStudent(ctx context.Context, studentID string) ([]models.Result, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.attempts, nil
}

func TestResultsAggregation(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	// Newest first, as the store returns them.
	reader := &mockResultReader{attempts: []models.Result{
		{QuizID: "quiz-a", DocumentID: "d1", CourseID: "c1", Score: 75, CompletedAt: base.Add(3 * time.Hour)},
		{QuizID: "quiz-b", DocumentID: "d2", CourseID: "c1", Score: 100, CompletedAt: base.Add(2 * time.Hour)},
		{QuizID: "quiz-a", DocumentID: "d1", CourseID: "c1", Score: 50, CompletedAt: base.Add(time.Hour)},
		{QuizID: "quiz-a", DocumentID: "d1", CourseID: "c1", Score: 25, CompletedAt: base},
	}}
	svc := NewResultService(reader, zap.NewNop())

	report, err := svc.ListForStudent(context.Background(), models.Identity{ID: "s1", Role: models.RoleStudent})
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	quizA := report.Results[0]
	assert.Equal(t, "quiz-a", quizA.QuizID)
	assert.Equal(t, 75, quizA.BestScore)
	assert.Equal(t, 50, quizA.AverageScore)
	assert.Equal(t, 3, quizA.TotalAttempts)
	require.NotNil(t, quizA.LastAttempt)
	assert.Equal(t, 75, quizA.LastAttempt.Score)

	quizB := report.Results[1]
	assert.Equal(t, 100, quizB.BestScore)
	assert.Equal(t, 1, quizB.TotalAttempts)

	assert.Equal(t, 2, report.Summary.TotalQuizzesTaken)
	assert.Equal(t, 4, report.Summary.TotalAttempts)
	assert.Equal(t, 75, report.Summary.OverallAverageScore)
}

func TestResultsEmptyHistory(t *testing.T) {
	svc := NewResultService(&mockResultReader{}, zap.NewNop())

	report, err := svc.ListForStudent(context.Background(), models.Identity{ID: "s1", Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.Equal(t, models.ResultsSummary{}, report.Summary)
}

func TestResultsTeacherForbidden(t *testing.T) {
	svc := NewResultService(&mockResultReader{}, zap.NewNop())

	_, err := svc.ListForStudent(context.Background(), models.Identity{ID: "t1", Role: models.RoleTeacher})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestResultsExportCSV(t *testing.T) {
	reader := &mockResultReader{attempts: []models.Result{
		{QuizID: "quiz-a", DocumentID: "d1", CourseID: "c1", Score: 80, CompletedAt: time.Now()},
	}}
	svc := NewResultService(reader, zap.NewNop())

	file, err := svc.Export(context.Background(), models.Identity{ID: "s1", Role: models.RoleStudent}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "quiz-results.csv", file.FileName)
	assert.Contains(t, string(file.Data), "quiz-a")
	assert.Contains(t, string(file.Data), "80")
}

func TestResultsExportUnknownFormat(t *testing.T) {
	svc := NewResultService(&mockResultReader{}, zap.NewNop())

	_, err := svc.Export(context.Background(), models.Identity{ID: "s1", Role: models.RoleStudent}, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
