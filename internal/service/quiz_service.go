package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/GavrielUnict/elearning-platform/internal/models"
	appErrors "github.com/GavrielUnict/elearning-platform/pkg/errors"
)

type quizFinder interface {
	Find(ctx context.Context, documentID, quizID string) (*models.Quiz, error)
}

type documentFinder interface {
	Find(ctx context.Context, courseID, documentID string) (*models.Document, error)
}

type resultWriter interface {
	Create(ctx context.Context, result *models.Result) error
}

// QuizView is the student-facing quiz shape: questions sanitised, no
// correct answers.
type QuizView struct {
	QuizID         string                     `json:"quizId"`
	DocumentID     string                     `json:"documentId"`
	DocumentName   string                     `json:"documentName"`
	Questions      []models.SanitizedQuestion `json:"questions"`
	TotalQuestions int                        `json:"totalQuestions"`
}

// SubmitQuizRequest carries a student's answers keyed by question ID.
type SubmitQuizRequest struct {
	QuizID  string         `json:"quizId" validate:"required"`
	Answers map[string]int `json:"answers" validate:"required"`
}

// SubmissionResult is the scored outcome returned to the submitting student.
type SubmissionResult struct {
	Score          int                  `json:"score"`
	CorrectAnswers int                  `json:"correctAnswers"`
	TotalQuestions int                  `json:"totalQuestions"`
	Details        models.AnswerDetails `json:"detailedResults"`
	CompletedAt    time.Time            `json:"completedAt"`
}

// QuizService serves sanitised quizzes and scores submissions.
type QuizService struct {
	quizzes   quizFinder
	documents documentFinder
	results   resultWriter
	access    accessGuard
	validator *validator.Validate
	logger    *zap.Logger
}

// NewQuizService constructs QuizService.
func NewQuizService(quizzes quizFinder, documents documentFinder, results resultWriter, access accessGuard, validate *validator.Validate, logger *zap.Logger) *QuizService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{quizzes: quizzes, documents: documents, results: results, access: access, validator: validate, logger: logger}
}

// Get returns the quiz for a document with correct answers stripped. Only
// approved-enrolled students may see it.
func (s *QuizService) Get(ctx context.Context, identity models.Identity, courseID, documentID string) (*QuizView, error) {
	if err := s.requireEnrolledStudent(ctx, identity, courseID, "access quizzes"); err != nil {
		return nil, err
	}

	doc, err := s.documents.Find(ctx, courseID, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if doc.QuizID == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no quiz available for this document yet")
	}

	quiz, err := s.quizzes.Find(ctx, documentID, *doc.QuizID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "quiz not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}

	questions := make([]models.SanitizedQuestion, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, q.Sanitize())
	}

	return &QuizView{
		QuizID:         quiz.QuizID,
		DocumentID:     quiz.DocumentID,
		DocumentName:   doc.Name,
		Questions:      questions,
		TotalQuestions: len(questions),
	}, nil
}

// Submit scores a student's answers against the authoritative quiz and
// appends an attempt record. An absent answer counts as incorrect.
func (s *QuizService) Submit(ctx context.Context, identity models.Identity, courseID, documentID string, req SubmitQuizRequest) (*SubmissionResult, error) {
	if err := s.requireEnrolledStudent(ctx, identity, courseID, "submit quiz results"); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "quizId and answers are required")
	}

	quiz, err := s.quizzes.Find(ctx, documentID, req.QuizID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "quiz not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}

	correct, details := ScoreAnswers(quiz.Questions, req.Answers)
	score := Score(correct, len(quiz.Questions))

	completedAt := time.Now().UTC()
	result := &models.Result{
		StudentID:      identity.ID,
		QuizID:         req.QuizID,
		DocumentID:     documentID,
		CourseID:       courseID,
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: len(quiz.Questions),
		Details:        details,
		CompletedAt:    completedAt,
	}
	if err := s.results.Create(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save result")
	}

	return &SubmissionResult{
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: len(quiz.Questions),
		Details:        details,
		CompletedAt:    completedAt,
	}, nil
}

// ScoreAnswers compares submitted answers against the question list. A
// missing entry is recorded as unanswered and never matches.
func ScoreAnswers(questions models.Questions, answers map[string]int) (int, models.AnswerDetails) {
	correct := 0
	details := make(models.AnswerDetails, 0, len(questions))
	for _, q := range questions {
		var studentAnswer *int
		if a, ok := answers[q.QuestionID]; ok {
			v := a
			studentAnswer = &v
		}
		isCorrect := studentAnswer != nil && *studentAnswer == q.CorrectAnswer
		if isCorrect {
			correct++
		}
		details = append(details, models.AnswerDetail{
			QuestionID:    q.QuestionID,
			Question:      q.Question,
			StudentAnswer: studentAnswer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
		})
	}
	return correct, details
}

// Score converts a correct count into a 0-100 percentage with half-up
// rounding. Zero questions yield zero rather than dividing by zero.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func (s *QuizService) requireEnrolledStudent(ctx context.Context, identity models.Identity, courseID, action string) error {
	if !identity.IsStudent() {
		return appErrors.Clone(appErrors.ErrForbidden, "only students can "+action)
	}
	if !s.access.IsEnrolled(ctx, identity.ID, courseID) {
		return appErrors.Clone(appErrors.ErrForbidden, "you must be enrolled in the course to "+action)
	}
	return nil
}
