package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GavrielUnict/elearning-platform/internal/compute"
	"github.com/GavrielUnict/elearning-platform/internal/quizgen"
	"github.com/GavrielUnict/elearning-platform/internal/repository"
	"github.com/GavrielUnict/elearning-platform/internal/service"
	"github.com/GavrielUnict/elearning-platform/pkg/cache"
	"github.com/GavrielUnict/elearning-platform/pkg/config"
	"github.com/GavrielUnict/elearning-platform/pkg/database"
	"github.com/GavrielUnict/elearning-platform/pkg/logger"
	reqidmiddleware "github.com/GavrielUnict/elearning-platform/pkg/middleware/requestid"
	"github.com/GavrielUnict/elearning-platform/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	objectStore, err := storage.NewObjectStore(cfg.Documents.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init object store", "error", err)
	}

	quizRepo := repository.NewQuizRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	pool := compute.NewPool(redisClient)
	metricsSvc := service.NewMetricsService()

	processor := quizgen.NewProcessor(
		objectStore,
		quizRepo,
		documentRepo,
		quizgen.NewDocumentTextExtractor(),
		quizgen.NewClozeGenerator(cfg.Runner.MaxQuestions),
		cfg.Runner.MaxChars,
		logr,
	)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", func(c *gin.Context) {
		metricsSvc.Handler().ServeHTTP(c.Writer, c.Request)
	})

	r.POST("/tasks", func(c *gin.Context) {
		var input compute.TaskInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": "invalid task payload"})
			return
		}
		if input.CourseID == "" || input.DocumentID == "" || input.ObjectKey == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": "courseId, documentId and objectKey are required"})
			return
		}

		ctx := context.Background()
		if err := pool.TaskStarted(ctx); err != nil {
			logr.Sugar().Errorw("failed to record task start", "error", err)
		}
		go func() {
			defer func() {
				if err := pool.TaskFinished(ctx); err != nil {
					logr.Sugar().Errorw("failed to record task finish", "error", err)
				}
			}()
			err := processor.Process(ctx, input)
			metricsSvc.ObserveQuizGeneration(err)
		}()

		c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("runner starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("runner failed", "error", err)
	}
}
