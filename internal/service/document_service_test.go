package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GavrielUnict/elearning-platform/internal/models"
	appErrors "github.com/GavrielUnict/elearning-platform/pkg/errors"
)

type mockDocumentRepo struct {
	documents map[string]*models.Document
	created   []*models.Document
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	m.created = append(m.created, doc)
	return nil
}

func (m *mockDocumentRepo) Find(ctx context.Context, courseID, documentID string) (*models.Document, error) {
	if d, ok := m.documents[courseID+"/"+documentID]; ok {
		return d, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockDocumentRepo) ListByCourse(ctx context.Context, courseID string) ([]models.Document, error) {
	var out []models.Document
	for _, d := range m.documents {
		if d.CourseID == courseID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *mockDocumentRepo) Delete(ctx context.Context, courseID, documentID string) (bool, error) {
	key := courseID + "/" + documentID
	if _, ok := m.documents[key]; !ok {
		return false, nil
	}
	delete(m.documents, key)
	return true, nil
}

type mockQuizDeleter struct {
	deleted []string
	err     error
}

func (m *mockQuizDeleter) Delete(ctx context.Context, documentID, quizID string) error {
	m.deleted = append(m.deleted, quizID)
	return m.err
}

type mockObjectDeleter struct {
	deleted []string
	err     error
}

func (m *mockObjectDeleter) Delete(key string) error {
	m.deleted = append(m.deleted, key)
	return m.err
}

type mockSigner struct {
	tokens int
}

func (m *mockSigner) Generate(verb, objectKey string) (string, time.Time, error) {
	m.tokens++
	return verb + ":" + objectKey, time.Now().Add(time.Hour), nil
}

func (m *mockSigner) TTL() time.Duration {
	return time.Hour
}

func documentTestService(repo *mockDocumentRepo, signer *mockSigner, objects *mockObjectDeleter, quizzes *mockQuizDeleter) *DocumentService {
	if repo == nil {
		repo = &mockDocumentRepo{documents: map[string]*models.Document{}}
	}
	if signer == nil {
		signer = &mockSigner{}
	}
	if objects == nil {
		objects = &mockObjectDeleter{}
	}
	if quizzes == nil {
		quizzes = &mockQuizDeleter{}
	}
	access := &mockAccessGuard{
		owners:   map[string]string{"c1": "t1"},
		enrolled: map[string]bool{"s1/c1": true},
	}
	return NewDocumentService(repo, quizzes, objects, signer, access, []string{".pdf"}, nil, zap.NewNop())
}

func TestUploadIntentIssuesCapability(t *testing.T) {
	repo := &mockDocumentRepo{documents: map[string]*models.Document{}}
	signer := &mockSigner{}
	svc := documentTestService(repo, signer, nil, nil)

	capability, err := svc.CreateUploadIntent(context.Background(), models.Identity{ID: "t1", Role: models.RoleTeacher}, "c1", UploadIntentRequest{FileName: "lecture.pdf", FileSize: 1024})
	require.NoError(t, err)
	assert.NotEmpty(t, capability.Token)
	assert.NotEmpty(t, capability.DocumentID)
	assert.Equal(t, int64(3600), capability.ExpiresIn)

	require.Len(t, repo.created, 1)
	doc := repo.created[0]
	assert.Equal(t, models.DocumentStatusPending, doc.Status)
	assert.Equal(t, "courses/c1/documents/"+doc.DocumentID+"/lecture.pdf", doc.ObjectKey)
}

func TestUploadIntentRejectsNonPDF(t *testing.T) {
	repo := &mockDocumentRepo{documents: map[string]*models.Document{}}
	signer := &mockSigner{}
	svc := documentTestService(repo, signer, nil, nil)

	_, err := svc.CreateUploadIntent(context.Background(), models.Identity{ID: "t1", Role: models.RoleTeacher}, "c1", UploadIntentRequest{FileName: "diagram.png"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, signer.tokens)
	assert.Empty(t, repo.created)
}

func TestUploadIntentNonOwnerForbidden(t *testing.T) {
	svc := documentTestService(nil, nil, nil, nil)

	_, err := svc.CreateUploadIntent(context.Background(), models.Identity{ID: "t2", Role: models.RoleTeacher}, "c1", UploadIntentRequest{FileName: "lecture.pdf"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestListDocumentsStudentSeesOnlyReady(t *testing.T) {
	repo := &mockDocumentRepo{documents: map[string]*models.Document{
		"c1/d1": {CourseID: "c1", DocumentID: "d1", Status: models.DocumentStatusReady},
		"c1/d2": {CourseID: "c1", DocumentID: "d2", Status: models.DocumentStatusPending},
		"c1/d3": {CourseID: "c1", DocumentID: "d3", Status: models.DocumentStatusFailed},
	}}
	svc := documentTestService(repo, nil, nil, nil)

	docs, err := svc.List(context.Background(), models.Identity{ID: "s1", Role: models.RoleStudent}, "c1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "d1", docs[0].DocumentID)

	docs, err = svc.List(context.Background(), models.Identity{ID: "t1", Role: models.RoleTeacher}, "c1")
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestDeleteDocumentCascades(t *testing.T) {
	quizID := "quiz-d1-1"
	repo := &mockDocumentRepo{documents: map[string]*models.Document{
		"c1/d1": {CourseID: "c1", DocumentID: "d1", ObjectKey: "courses/c1/documents/d1/lecture.pdf", QuizID: &quizID},
	}}
	objects := &mockObjectDeleter{}
	quizzes := &mockQuizDeleter{}
	svc := documentTestService(repo, nil, objects, quizzes)

	err := svc.Delete(context.Background(), models.Identity{ID: "t1", Role: models.RoleTeacher}, "c1", "d1")
	require.NoError(t, err)
	assert.Equal(t, []string{"courses/c1/documents/d1/lecture.pdf"}, objects.deleted)
	assert.Equal(t, []string{quizID}, quizzes.deleted)
	assert.Empty(t, repo.documents)
}

func TestDeleteDocumentObjectFailureIsNonFatal(t *testing.T) {
	repo := &mockDocumentRepo{documents: map[string]*models.Document{
		"c1/d1": {CourseID: "c1", DocumentID: "d1", ObjectKey: "courses/c1/documents/d1/lecture.pdf"},
	}}
	objects := &mockObjectDeleter{err: assert.AnError}
	svc := documentTestService(repo, nil, objects, nil)

	err := svc.Delete(context.Background(), models.Identity{ID: "t1", Role: models.RoleTeacher}, "c1", "d1")
	require.NoError(t, err)
	assert.Empty(t, repo.documents)
}
