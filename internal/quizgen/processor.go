package quizgen

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GavrielUnict/elearning-platform/internal/compute"
	"github.com/GavrielUnict/elearning-platform/internal/models"
)

type objectReader interface {
	Read(key string) ([]byte, error)
}

type quizWriter interface {
	Create(ctx context.Context, quiz *models.Quiz) error
}

type documentFinisher interface {
	AttachQuiz(ctx context.Context, courseID, documentID, quizID string) (bool, error)
	MarkFailed(ctx context.Context, courseID, documentID string) error
}

// Processor runs one quiz-generation task end to end: fetch the object,
// extract text, synthesise questions, persist the quiz and flip the
// document to ready.
type Processor struct {
	objects   objectReader
	quizzes   quizWriter
	documents documentFinisher
	extractor TextExtractor
	generator QuestionGenerator
	maxChars  int
	now       func() time.Time
	logger    *zap.Logger
}

// NewProcessor constructs Processor.
func NewProcessor(objects objectReader, quizzes quizWriter, documents documentFinisher, extractor TextExtractor, generator QuestionGenerator, maxChars int, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		objects:   objects,
		quizzes:   quizzes,
		documents: documents,
		extractor: extractor,
		generator: generator,
		maxChars:  maxChars,
		now:       time.Now,
		logger:    logger,
	}
}

// Process executes the task. On any failure the document is marked failed
// best-effort and the original error is returned.
func (p *Processor) Process(ctx context.Context, input compute.TaskInput) error {
	log := p.logger.With(
		zap.String("course_id", input.CourseID),
		zap.String("document_id", input.DocumentID),
	)

	quiz, err := p.buildQuiz(ctx, input)
	if err != nil {
		log.Error("quiz generation failed", zap.Error(err))
		if markErr := p.documents.MarkFailed(ctx, input.CourseID, input.DocumentID); markErr != nil {
			log.Error("failed to mark document as failed", zap.Error(markErr))
		}
		return err
	}

	attached, err := p.documents.AttachQuiz(ctx, input.CourseID, input.DocumentID, quiz.QuizID)
	if err != nil {
		return fmt.Errorf("attach quiz: %w", err)
	}
	if !attached {
		// Replayed task against an already processed or deleted document.
		log.Warn("document no longer pending, quiz left orphaned", zap.String("quiz_id", quiz.QuizID))
		return nil
	}

	log.Info("quiz generated", zap.String("quiz_id", quiz.QuizID), zap.Int("questions", len(quiz.Questions)))
	return nil
}

func (p *Processor) buildQuiz(ctx context.Context, input compute.TaskInput) (*models.Quiz, error) {
	data, err := p.objects.Read(input.ObjectKey)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}

	text, err := p.extractor.Extract(data, p.maxChars)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	questions, err := p.generator.Generate(text)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	now := p.now().UTC()
	quiz := &models.Quiz{
		DocumentID:  input.DocumentID,
		QuizID:      fmt.Sprintf("quiz-%s-%d", input.DocumentID, now.UnixMilli()),
		CourseID:    input.CourseID,
		Questions:   questions,
		GeneratedAt: now,
	}
	if err := p.quizzes.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("save quiz: %w", err)
	}
	return quiz, nil
}
