package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GavrielUnict/elearning-platform/internal/middleware"
	"github.com/GavrielUnict/elearning-platform/internal/service"
	"github.com/GavrielUnict/elearning-platform/pkg/config"
	appErrors "github.com/GavrielUnict/elearning-platform/pkg/errors"
	"github.com/GavrielUnict/elearning-platform/pkg/response"
	"github.com/GavrielUnict/elearning-platform/pkg/storage"
)

// Services bundles everything the API routes need.
type Services struct {
	Courses     *service.CourseService
	Enrollments *service.EnrollmentService
	Documents   *service.DocumentService
	Quizzes     *service.QuizService
	Results     *service.ResultService
	Metrics     *service.MetricsService

	ObjectStore     *storage.ObjectStore
	Signer          *storage.SignedURLSigner
	ObjectPublisher objectEventPublisher
}

// Register wires all routes onto the engine.
func Register(r *gin.Engine, cfg *config.Config, svcs Services, logger *zap.Logger) {
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, appErrors.ErrMethodNotAllowed)
	})
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	metricsHandler := NewMetricsHandler(svcs.Metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	objectHandler := NewObjectHandler(svcs.ObjectStore, svcs.Signer, svcs.ObjectPublisher, logger)
	r.PUT("/objects", objectHandler.Upload)
	r.GET("/objects", objectHandler.Download)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Auth(cfg.Auth))
	api.Use(middleware.Metrics(svcs.Metrics))

	courseHandler := NewCourseHandler(svcs.Courses)
	api.POST("/courses", courseHandler.Create)
	api.GET("/courses", courseHandler.List)
	api.GET("/courses/:courseId", courseHandler.Get)
	api.PUT("/courses/:courseId", courseHandler.Update)
	api.DELETE("/courses/:courseId", courseHandler.Delete)

	enrollmentHandler := NewEnrollmentHandler(svcs.Enrollments)
	api.POST("/courses/:courseId/enroll", enrollmentHandler.Request)
	api.GET("/courses/:courseId/enrollments", enrollmentHandler.List)
	api.PUT("/courses/:courseId/enrollments/:studentId", enrollmentHandler.Decide)

	documentHandler := NewDocumentHandler(svcs.Documents)
	api.POST("/courses/:courseId/documents", documentHandler.CreateUploadIntent)
	api.GET("/courses/:courseId/documents", documentHandler.List)
	api.GET("/courses/:courseId/documents/:documentId", documentHandler.Get)
	api.DELETE("/courses/:courseId/documents/:documentId", documentHandler.Delete)

	quizHandler := NewQuizHandler(svcs.Quizzes)
	api.GET("/courses/:courseId/documents/:documentId/quiz", quizHandler.Get)
	api.POST("/courses/:courseId/documents/:documentId/quiz/submit", quizHandler.Submit)

	resultHandler := NewResultHandler(svcs.Results)
	api.GET("/results", resultHandler.List)
	api.GET("/results/export", resultHandler.Export)
}
