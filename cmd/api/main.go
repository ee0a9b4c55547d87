package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/GavrielUnict/elearning-platform/internal/compute"
	"github.com/GavrielUnict/elearning-platform/internal/handler"
	"github.com/GavrielUnict/elearning-platform/internal/pipeline"
	"github.com/GavrielUnict/elearning-platform/internal/repository"
	"github.com/GavrielUnict/elearning-platform/internal/service"
	"github.com/GavrielUnict/elearning-platform/pkg/cache"
	"github.com/GavrielUnict/elearning-platform/pkg/config"
	"github.com/GavrielUnict/elearning-platform/pkg/database"
	"github.com/GavrielUnict/elearning-platform/pkg/logger"
	corsmiddleware "github.com/GavrielUnict/elearning-platform/pkg/middleware/cors"
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
	signer := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)

	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	resultRepo := repository.NewResultRepository(db)

	accessSvc := service.NewAccessService(courseRepo, enrollmentRepo, logr)
	notifySvc := service.NewNotifyService(redisClient, cfg.Notifications.ChannelPrefix, cfg.Notifications.Enabled, logr)
	metricsSvc := service.NewMetricsService()

	courseSvc := service.NewCourseService(courseRepo, enrollmentRepo, accessSvc, nil, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, accessSvc, notifySvc, nil, logr)
	documentSvc := service.NewDocumentService(documentRepo, quizRepo, objectStore, signer, accessSvc, cfg.Documents.AllowedExtensions, nil, logr)
	quizSvc := service.NewQuizService(quizRepo, documentRepo, resultRepo, accessSvc, nil, logr)
	resultSvc := service.NewResultService(resultRepo, logr)

	pool := compute.NewPool(redisClient)
	launcher := compute.NewLauncher(cfg.Runner.BaseURL, cfg.Runner.LaunchTimeout)
	publisher := pipeline.NewPublisher(redisClient, cfg.Pipeline.EventQueue, "documents")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := pipeline.NewScheduler(redisClient, cfg.Pipeline.IdleCheckSet, cfg.Pipeline.SchedulerInterval, logr)
	orchestrator := pipeline.NewOrchestrator(pool, launcher, scheduler, metricsSvc, cfg.Pipeline.WarmupDelay, cfg.Pipeline.IdleCheckDelay, logr)
	scheduler.SetRunner(orchestrator)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	consumer := pipeline.NewConsumer(redisClient, cfg.Pipeline.EventQueue, orchestrator, metricsSvc, cfg.Pipeline.MaxRetries, logr)
	go consumer.Run(ctx)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	handler.Register(r, cfg, handler.Services{
		Courses:         courseSvc,
		Enrollments:     enrollmentSvc,
		Documents:       documentSvc,
		Quizzes:         quizSvc,
		Results:         resultSvc,
		Metrics:         metricsSvc,
		ObjectStore:     objectStore,
		Signer:          signer,
		ObjectPublisher: publisher,
	}, logr)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
