package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GavrielUnict/elearning-platform/internal/service"
	appErrors "github.com/GavrielUnict/elearning-platform/pkg/errors"
	"github.com/GavrielUnict/elearning-platform/pkg/response"
)

// QuizHandler exposes quiz endpoints.
type QuizHandler struct {
	quizzes *service.QuizService
}

// NewQuizHandler constructs QuizHandler.
func NewQuizHandler(quizzes *service.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// Get handles GET /courses/:courseId/documents/:documentId/quiz.
func (h *QuizHandler) Get(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	quiz, err := h.quizzes.Get(c.Request.Context(), identity, c.Param("courseId"), c.Param("documentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, quiz)
}

// Submit handles POST /courses/:courseId/documents/:documentId/quiz/submit.
func (h *QuizHandler) Submit(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.quizzes.Submit(c.Request.Context(), identity, c.Param("courseId"), c.Param("documentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
