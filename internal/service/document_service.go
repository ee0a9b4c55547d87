package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GavrielUnict/elearning-platform/internal/models"
	appErrors "github.com/GavrielUnict/elearning-platform/pkg/errors"
	"github.com/GavrielUnict/elearning-platform/pkg/storage"
)

type documentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	Find(ctx context.Context, courseID, documentID string) (*models.Document, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Document, error)
	Delete(ctx context.Context, courseID, documentID string) (bool, error)
}

type quizDeleter interface {
	Delete(ctx context.Context, documentID, quizID string) error
}

type objectDeleter interface {
	Delete(key string) error
}

type capabilitySigner interface {
	Generate(verb, objectKey string) (string, time.Time, error)
	TTL() time.Duration
}

type accessGuard interface {
	IsOwner(ctx context.Context, courseID, userID string) bool
	IsEnrolled(ctx context.Context, studentID, courseID string) bool
}

// UploadIntentRequest announces an upcoming document upload.
type UploadIntentRequest struct {
	FileName string `json:"fileName" validate:"required"`
	FileSize int64  `json:"fileSize"`
}

// Capability is a time-limited signed token for one object operation.
type Capability struct {
	Token      string    `json:"token"`
	DocumentID string    `json:"documentId,omitempty"`
	FileName   string    `json:"fileName,omitempty"`
	ExpiresAt  time.Time `json:"expiresAt"`
	ExpiresIn  int64     `json:"expiresIn"`
}

// DocumentService manages document metadata and object capabilities.
type DocumentService struct {
	repo       documentRepository
	quizzes    quizDeleter
	objects    objectDeleter
	signer     capabilitySigner
	access     accessGuard
	validator  *validator.Validate
	logger     *zap.Logger
	extensions []string
}

// NewDocumentService constructs DocumentService. allowedExtensions are
// lower-case suffixes such as ".pdf".
func NewDocumentService(repo documentRepository, quizzes quizDeleter, objects objectDeleter, signer capabilitySigner, access accessGuard, allowedExtensions []string, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(allowedExtensions) == 0 {
		allowedExtensions = []string{".pdf"}
	}
	return &DocumentService{repo: repo, quizzes: quizzes, objects: objects, signer: signer, access: access, validator: validate, logger: logger, extensions: allowedExtensions}
}

// ObjectKey builds the canonical storage locator for a document file.
func ObjectKey(courseID, documentID, fileName string) string {
	return fmt.Sprintf("courses/%s/documents/%s/%s", courseID, documentID, fileName)
}

// CreateUploadIntent validates the upload, records the pending document and
// issues a signed upload capability. Only the course owner may obtain one,
// and the file type is checked before any capability or record is created.
func (s *DocumentService) CreateUploadIntent(ctx context.Context, identity models.Identity, courseID string, req UploadIntentRequest) (*Capability, error) {
	if !s.access.IsOwner(ctx, courseID, identity.ID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the course owner can upload documents")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "fileName is required")
	}
	if !s.allowedExtension(req.FileName) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("only %s files are allowed", strings.Join(s.extensions, ", ")))
	}

	documentID := uuid.NewString()
	fileName := path.Base(req.FileName)
	objectKey := ObjectKey(courseID, documentID, fileName)

	token, expiresAt, err := s.signer.Generate(storage.VerbUpload, objectKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue upload capability")
	}

	doc := &models.Document{
		CourseID:   courseID,
		DocumentID: documentID,
		Name:       fileName,
		ObjectKey:  objectKey,
		UploadedBy: identity.ID,
		UploadedAt: time.Now().UTC(),
		Size:       req.FileSize,
		Status:     models.DocumentStatusPending,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record document")
	}

	return &Capability{
		Token:      token,
		DocumentID: documentID,
		FileName:   fileName,
		ExpiresAt:  expiresAt,
		ExpiresIn:  int64(s.signer.TTL().Seconds()),
	}, nil
}

// Get returns a document with a signed download capability. Accessible to
// the course owner and approved-enrolled students.
func (s *DocumentService) Get(ctx context.Context, identity models.Identity, courseID, documentID string) (*models.Document, *Capability, error) {
	if !s.canRead(ctx, identity, courseID) {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "access denied to this document")
	}

	doc, err := s.repo.Find(ctx, courseID, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	token, expiresAt, err := s.signer.Generate(storage.VerbDownload, doc.ObjectKey)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue download capability")
	}
	capability := &Capability{
		Token:     token,
		FileName:  doc.Name,
		ExpiresAt: expiresAt,
		ExpiresIn: int64(s.signer.TTL().Seconds()),
	}
	return doc, capability, nil
}

// List returns a course's documents, newest first. Students only see
// documents whose quiz is ready.
func (s *DocumentService) List(ctx context.Context, identity models.Identity, courseID string) ([]models.Document, error) {
	if !s.canRead(ctx, identity, courseID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not have access to this course")
	}

	docs, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}

	if identity.IsStudent() {
		ready := make([]models.Document, 0, len(docs))
		for _, doc := range docs {
			if doc.Status == models.DocumentStatusReady {
				ready = append(ready, doc)
			}
		}
		return ready, nil
	}
	return docs, nil
}

// Delete removes a document, its stored object and its quiz. The object and
// quiz deletions are best-effort: partial failures are logged and the record
// deletion proceeds, favouring eventual cleanup over blocking.
func (s *DocumentService) Delete(ctx context.Context, identity models.Identity, courseID, documentID string) error {
	if !s.access.IsOwner(ctx, courseID, identity.ID) {
		return appErrors.Clone(appErrors.ErrForbidden, "only the course owner can delete documents")
	}

	doc, err := s.repo.Find(ctx, courseID, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	if err := s.objects.Delete(doc.ObjectKey); err != nil {
		s.logger.Sugar().Errorw("object deletion failed", "object_key", doc.ObjectKey, "error", err)
	}

	deleted, err := s.repo.Delete(ctx, courseID, documentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}

	if doc.QuizID != nil {
		if err := s.quizzes.Delete(ctx, documentID, *doc.QuizID); err != nil {
			s.logger.Sugar().Errorw("quiz cascade deletion failed", "document_id", documentID, "quiz_id", *doc.QuizID, "error", err)
		}
	}
	return nil
}

func (s *DocumentService) canRead(ctx context.Context, identity models.Identity, courseID string) bool {
	if s.access.IsOwner(ctx, courseID, identity.ID) {
		return true
	}
	return identity.IsStudent() && s.access.IsEnrolled(ctx, identity.ID, courseID)
}

func (s *DocumentService) allowedExtension(fileName string) bool {
	lower := strings.ToLower(fileName)
	for _, ext := range s.extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
