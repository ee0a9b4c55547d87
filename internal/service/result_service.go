package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/GavrielUnict/elearning-platform/internal/models"
	appErrors "github.com/GavrielUnict/elearning-platform/pkg/errors"
	"github.com/GavrielUnict/elearning-platform/pkg/export"
)

type resultReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Result, error)
}

// ResultsReport is the aggregated view returned to a student.
type ResultsReport struct {
	Results []models.QuizResults  `json:"results"`
	Summary models.ResultsSummary `json:"summary"`
}

// ResultService folds raw attempt records into per-quiz summaries.
type ResultService struct {
	results resultReader
	logger  *zap.Logger
}

// NewResultService constructs ResultService.
func NewResultService(results resultReader, logger *zap.Logger) *ResultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{results: results, logger: logger}
}

// ListForStudent aggregates the caller's attempt history. Zero attempts
// yield an empty list and a zero summary, never an error.
func (s *ResultService) ListForStudent(ctx context.Context, identity models.Identity) (*ResultsReport, error) {
	if !identity.IsStudent() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can view quiz results")
	}

	attempts, err := s.results.ListByStudent(ctx, identity.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}

	report := &ResultsReport{Results: []models.QuizResults{}}
	if len(attempts) == 0 {
		return report, nil
	}

	// Attempts arrive newest first; preserve first-seen order of quizzes.
	groups := make(map[string]*models.QuizResults)
	var order []string
	for _, attempt := range attempts {
		group, ok := groups[attempt.QuizID]
		if !ok {
			group = &models.QuizResults{
				QuizID:     attempt.QuizID,
				DocumentID: attempt.DocumentID,
				CourseID:   attempt.CourseID,
			}
			groups[attempt.QuizID] = group
			order = append(order, attempt.QuizID)
		}
		group.Attempts = append(group.Attempts, models.AttemptView{
			Score:          attempt.Score,
			CorrectAnswers: attempt.CorrectAnswers,
			TotalQuestions: attempt.TotalQuestions,
			CompletedAt:    attempt.CompletedAt,
			Details:        attempt.Details,
		})
	}

	sumOfAverages := 0
	for _, quizID := range order {
		group := groups[quizID]
		best := 0
		sum := 0
		for _, a := range group.Attempts {
			if a.Score > best {
				best = a.Score
			}
			sum += a.Score
		}
		group.BestScore = best
		group.AverageScore = roundedMean(sum, len(group.Attempts))
		group.TotalAttempts = len(group.Attempts)
		last := group.Attempts[0]
		group.LastAttempt = &last
		sumOfAverages += group.AverageScore
		report.Results = append(report.Results, *group)
	}

	report.Summary = models.ResultsSummary{
		TotalQuizzesTaken:   len(report.Results),
		TotalAttempts:       len(attempts),
		OverallAverageScore: roundedMean(sumOfAverages, len(report.Results)),
	}
	return report, nil
}

func roundedMean(sum, count int) int {
	if count <= 0 {
		return 0
	}
	return int(float64(sum)/float64(count) + 0.5)
}

// ExportFile is a rendered results report ready for download.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Export renders the caller's per-quiz summaries in the requested format.
func (s *ResultService) Export(ctx context.Context, identity models.Identity, format string) (*ExportFile, error) {
	var renderer export.Renderer
	switch format {
	case export.FormatCSV, "":
		renderer = export.NewCSVRenderer()
	case export.FormatPDF:
		renderer = export.NewPDFRenderer()
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	report, err := s.ListForStudent(ctx, identity)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title:   "Quiz Results",
		Columns: []string{"quizId", "courseId", "bestScore", "averageScore", "attempts"},
	}
	for _, group := range report.Results {
		table.Rows = append(table.Rows, []string{
			group.QuizID,
			group.CourseID,
			strconv.Itoa(group.BestScore),
			strconv.Itoa(group.AverageScore),
			strconv.Itoa(group.TotalAttempts),
		})
	}

	data, err := renderer.Render(table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render results export")
	}
	return &ExportFile{
		FileName:    "quiz-results." + renderer.Extension(),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}
