package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GavrielUnict/elearning-platform/internal/service"
	appErrors "github.com/GavrielUnict/elearning-platform/pkg/errors"
	"github.com/GavrielUnict/elearning-platform/pkg/response"
)

// DocumentHandler exposes document metadata endpoints.
type DocumentHandler struct {
	documents *service.DocumentService
}

// NewDocumentHandler constructs DocumentHandler.
func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// CreateUploadIntent handles POST /courses/:courseId/documents.
func (h *DocumentHandler) CreateUploadIntent(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UploadIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	capability, err := h.documents.CreateUploadIntent(c.Request.Context(), identity, c.Param("courseId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, capability)
}

// List handles GET /courses/:courseId/documents.
func (h *DocumentHandler) List(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	docs, err := h.documents.List(c.Request.Context(), identity, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs)
}

// Get handles GET /courses/:courseId/documents/:documentId.
func (h *DocumentHandler) Get(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	doc, capability, err := h.documents.Get(c.Request.Context(), identity, c.Param("courseId"), c.Param("documentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"document": doc, "download": capability})
}

// Delete handles DELETE /courses/:courseId/documents/:documentId.
func (h *DocumentHandler) Delete(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.documents.Delete(c.Request.Context(), identity, c.Param("courseId"), c.Param("documentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "document deleted"})
}
