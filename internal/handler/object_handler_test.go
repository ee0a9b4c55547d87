package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GavrielUnict/elearning-platform/pkg/storage"
)

type publisherMock struct {
	keys  []string
	sizes []int64
	err   error
}

func (m *publisherMock) ObjectCreated(ctx context.Context, objectKey string, size int64) error {
	m.keys = append(m.keys, objectKey)
	m.sizes = append(m.sizes, size)
	return m.err
}

func newObjectHandler(t *testing.T) (*ObjectHandler, *storage.ObjectStore, *storage.SignedURLSigner, *publisherMock) {
	t.Helper()
	store, err := storage.NewObjectStore(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	publisher := &publisherMock{}
	return NewObjectHandler(store, signer, publisher, zap.NewNop()), store, signer, publisher
}

func doRequest(t *testing.T, handler gin.HandlerFunc, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	c.Request = req
	handler(c)
	return w
}

func TestObjectUploadStoresAndPublishes(t *testing.T) {
	handler, store, signer, publisher := newObjectHandler(t)
	key := "courses/c1/documents/d1/lecture.pdf"
	token, _, err := signer.Generate(storage.VerbUpload, key)
	require.NoError(t, err)

	w := doRequest(t, handler.Upload, http.MethodPut, "/objects?token="+token, []byte("%PDF-1.4 content"))
	require.Equal(t, http.StatusOK, w.Code)

	data, err := store.Read(key)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 content", string(data))
	require.Len(t, publisher.keys, 1)
	assert.Equal(t, key, publisher.keys[0])
	assert.Equal(t, int64(16), publisher.sizes[0])
}

func TestObjectUploadMissingToken(t *testing.T) {
	handler, _, _, publisher := newObjectHandler(t)

	w := doRequest(t, handler.Upload, http.MethodPut, "/objects", []byte("data"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, publisher.keys)
}

func TestObjectUploadRejectsDownloadToken(t *testing.T) {
	handler, _, signer, publisher := newObjectHandler(t)
	token, _, err := signer.Generate(storage.VerbDownload, "courses/c1/documents/d1/lecture.pdf")
	require.NoError(t, err)

	w := doRequest(t, handler.Upload, http.MethodPut, "/objects?token="+token, []byte("data"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, publisher.keys)
}

func TestObjectUploadRejectsEmptyBody(t *testing.T) {
	handler, _, signer, _ := newObjectHandler(t)
	token, _, err := signer.Generate(storage.VerbUpload, "courses/c1/documents/d1/lecture.pdf")
	require.NoError(t, err)

	w := doRequest(t, handler.Upload, http.MethodPut, "/objects?token="+token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestObjectDownloadRoundTrip(t *testing.T) {
	handler, store, signer, _ := newObjectHandler(t)
	key := "courses/c1/documents/d1/lecture.pdf"
	require.NoError(t, store.Save(key, []byte("stored bytes")))
	token, _, err := signer.Generate(storage.VerbDownload, key)
	require.NoError(t, err)

	w := doRequest(t, handler.Download, http.MethodGet, "/objects?token="+token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stored bytes", w.Body.String())
}

func TestObjectDownloadMissingObject(t *testing.T) {
	handler, _, signer, _ := newObjectHandler(t)
	token, _, err := signer.Generate(storage.VerbDownload, "courses/c1/documents/dX/gone.pdf")
	require.NoError(t, err)

	w := doRequest(t, handler.Download, http.MethodGet, "/objects?token="+token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
