package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/GavrielUnict/elearning-platform/pkg/errors"
	"github.com/GavrielUnict/elearning-platform/pkg/response"
	"github.com/GavrielUnict/elearning-platform/pkg/storage"
)

const maxUploadBytes = 32 << 20

type objectEventPublisher interface {
	ObjectCreated(ctx context.Context, objectKey string, size int64) error
}

// ObjectHandler serves the signed upload and download endpoints. The
// capability token in the query string is the sole credential; no session
// is required, matching presigned-URL semantics.
type ObjectHandler struct {
	store     *storage.ObjectStore
	signer    *storage.SignedURLSigner
	publisher objectEventPublisher
	logger    *zap.Logger
}

// NewObjectHandler constructs ObjectHandler.
func NewObjectHandler(store *storage.ObjectStore, signer *storage.SignedURLSigner, publisher objectEventPublisher, logger *zap.Logger) *ObjectHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectHandler{store: store, signer: signer, publisher: publisher, logger: logger}
}

// Upload handles PUT /objects?token=...: stores the body under the key the
// token grants and emits the object-created event that drives the pipeline.
func (h *ObjectHandler) Upload(c *gin.Context) {
	objectKey, ok := h.authorize(c, storage.VerbUpload)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadBytes+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read upload body"))
		return
	}
	if len(body) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "upload body is empty"))
		return
	}
	if len(body) > maxUploadBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "upload exceeds the size limit"))
		return
	}

	if err := h.store.Save(objectKey, body); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store object"))
		return
	}

	if err := h.publisher.ObjectCreated(c.Request.Context(), objectKey, int64(len(body))); err != nil {
		// The object is stored; processing will lag until the event lands.
		h.logger.Error("failed to publish object event", zap.String("object_key", objectKey), zap.Error(err))
	}

	response.JSON(c, http.StatusOK, gin.H{"objectKey": objectKey, "size": len(body)})
}

// Download handles GET /objects?token=...: streams the object the token
// grants.
func (h *ObjectHandler) Download(c *gin.Context) {
	objectKey, ok := h.authorize(c, storage.VerbDownload)
	if !ok {
		return
	}

	file, err := h.store.Open(objectKey)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "object not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		h.logger.Error("object stream interrupted", zap.String("object_key", objectKey), zap.Error(err))
	}
}

func (h *ObjectHandler) authorize(c *gin.Context, wantVerb string) (string, bool) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing capability token"))
		return "", false
	}
	verb, objectKey, _, err := h.signer.Parse(token)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired capability token"))
		return "", false
	}
	if verb != wantVerb {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "token does not grant this operation"))
		return "", false
	}
	return objectKey, true
}
