package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GavrielUnict/elearning-platform/internal/service"
	appErrors "github.com/GavrielUnict/elearning-platform/pkg/errors"
	"github.com/GavrielUnict/elearning-platform/pkg/response"
)

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Request handles POST /courses/:courseId/enroll.
func (h *EnrollmentHandler) Request(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrollment, err := h.enrollments.Request(c.Request.Context(), identity, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Decide handles PUT /courses/:courseId/enrollments/:studentId.
func (h *EnrollmentHandler) Decide(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.DecideEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Decide(c.Request.Context(), identity, c.Param("courseId"), c.Param("studentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// List handles GET /courses/:courseId/enrollments.
func (h *EnrollmentHandler) List(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	grouped, summary, err := h.enrollments.ListForCourse(c.Request.Context(), identity, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"enrollments": grouped, "summary": summary})
}
