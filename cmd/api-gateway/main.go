package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/prepdeck/study-planner-api/internal/handler"
	"github.com/prepdeck/study-planner-api/internal/middleware"
	"github.com/prepdeck/study-planner-api/internal/oracle"
	"github.com/prepdeck/study-planner-api/internal/oracle/openai"
	"github.com/prepdeck/study-planner-api/internal/repository"
	"github.com/prepdeck/study-planner-api/internal/service"
	"github.com/prepdeck/study-planner-api/pkg/cache"
	"github.com/prepdeck/study-planner-api/pkg/config"
	"github.com/prepdeck/study-planner-api/pkg/database"
	"github.com/prepdeck/study-planner-api/pkg/logger"
	corsmiddleware "github.com/prepdeck/study-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/prepdeck/study-planner-api/pkg/middleware/requestid"
)

// @title Study Planner API
// @version 1.0.0
// @description Exam-prep planning and study analytics service
// @BasePath /api/v1
// @schemes http

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// Repositories.
	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	examRepo := repository.NewExamRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	busySlotRepo := repository.NewBusySlotRepository(db)
	attemptRepo := repository.NewTaskAttemptRepository(db)
	planRepo := repository.NewStudyPlanRepository(db)
	sessionRepo := repository.NewStudySessionRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Insights.CacheTTL, logr, cfg.Insights.Enabled && redisClient != nil)

	// Analytic cores.
	estimatorSvc := service.NewEstimatorService()
	trendSvc := service.NewTrendService()
	prioritySvc := service.NewPriorityService(service.PriorityServiceParams{Estimator: estimatorSvc})
	optimizerSvc := service.NewOptimizerService(service.OptimizerServiceParams{})

	contextSvc := service.NewContextService(service.ContextServiceParams{
		Students:    studentRepo,
		Subjects:    subjectRepo,
		Exams:       examRepo,
		Assignments: assignmentRepo,
		Attempts:    attemptRepo,
		Sessions:    sessionRepo,
		Goals:       goalRepo,
		Trend:       trendSvc,
		Priority:    prioritySvc,
		Optimizer:   optimizerSvc,
		Cache:       cacheSvc,
		CacheTTL:    cfg.Insights.CacheTTL,
		Logger:      logr,
	})

	// Oracle clients with fallback.
	var (
		estimator oracle.Estimator
		generator oracle.SessionGenerator
	)
	if cfg.Oracle.Enabled && cfg.Oracle.APIKey != "" {
		oracleClient := openai.NewClient(cfg.Oracle.BaseURL, cfg.Oracle.APIKey, cfg.Oracle.Model, cfg.Oracle.Timeout, cfg.Oracle.RetryAttempts, logr)
		estimator = oracleClient
		generator = oracleClient
	}

	plannerSvc := service.NewPlannerService(service.PlannerServiceParams{
		Students:          studentRepo,
		Exams:             examRepo,
		Subjects:          subjectRepo,
		BusySlots:         busySlotRepo,
		Plans:             planRepo,
		Sessions:          sessionRepo,
		Estimator:         estimator,
		Generator:         generator,
		OracleEnabled:     cfg.Oracle.Enabled && cfg.Oracle.APIKey != "",
		OracleTimeout:     cfg.Oracle.Timeout,
		PreviewTTL:        cfg.Planner.PreviewTTL,
		WorkerConcurrency: cfg.Planner.WorkerConcurrency,
		WorkerRetries:     cfg.Planner.WorkerRetries,
		Metrics:           metricsSvc,
		Logger:            logr,
	})

	insightsSvc := service.NewInsightsService(service.InsightsServiceParams{
		Exams:       examRepo,
		Assignments: assignmentRepo,
		Attempts:    attemptRepo,
		Sessions:    sessionRepo,
		Subjects:    subjectRepo,
		Estimator:   estimatorSvc,
		Trend:       trendSvc,
		Priority:    prioritySvc,
		Optimizer:   optimizerSvc,
		Logger:      logr,
	})

	exportSvc := service.NewExportService(service.ExportServiceParams{
		Plans:    planRepo,
		Sessions: sessionRepo,
		Enabled:  cfg.Exports.Enabled,
		Logger:   logr,
	})

	subjectSvc := service.NewSubjectService(subjectRepo, contextSvc, validate, logr)
	examSvc := service.NewExamService(examRepo, contextSvc, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, contextSvc, validate, logr)
	busySlotSvc := service.NewBusySlotService(busySlotRepo, validate, logr)
	attemptSvc := service.NewAttemptService(attemptRepo, contextSvc, validate, logr)
	sessionSvc := service.NewSessionService(sessionRepo, contextSvc, validate, logr)
	goalSvc := service.NewGoalService(goalRepo, contextSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	plannerSvc.Start(ctx)
	defer plannerSvc.Stop()

	// Handlers.
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	examHandler := handler.NewExamHandler(examSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	busySlotHandler := handler.NewBusySlotHandler(busySlotSvc)
	attemptHandler := handler.NewAttemptHandler(attemptSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	goalHandler := handler.NewGoalHandler(goalSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	planHandler := handler.NewPlanHandler(plannerSvc, exportSvc)
	insightsHandler := handler.NewInsightsHandler(insightsSvc)
	contextHandler := handler.NewContextHandler(contextSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	tokenValidator := middleware.NewTokenValidator(cfg.JWT.Secret)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenValidator))
	{
		api.GET("/me", studentHandler.Profile)
		api.PUT("/me", studentHandler.UpdateProfile)

		api.GET("/subjects", subjectHandler.List)
		api.POST("/subjects", subjectHandler.Create)
		api.GET("/subjects/:id", subjectHandler.Get)
		api.PUT("/subjects/:id", subjectHandler.Update)
		api.DELETE("/subjects/:id", subjectHandler.Archive)

		api.GET("/exams", examHandler.List)
		api.POST("/exams", examHandler.Create)
		api.GET("/exams/:id", examHandler.Get)
		api.PUT("/exams/:id", examHandler.Update)
		api.DELETE("/exams/:id", examHandler.Delete)

		api.GET("/assignments", assignmentHandler.List)
		api.POST("/assignments", assignmentHandler.Create)
		api.GET("/assignments/:id", assignmentHandler.Get)
		api.PUT("/assignments/:id", assignmentHandler.Update)
		api.DELETE("/assignments/:id", assignmentHandler.Delete)

		api.GET("/busy-slots", busySlotHandler.List)
		api.POST("/busy-slots", busySlotHandler.Create)
		api.DELETE("/busy-slots/:id", busySlotHandler.Delete)

		api.GET("/attempts", attemptHandler.List)
		api.POST("/attempts", attemptHandler.Record)

		api.GET("/sessions", sessionHandler.List)
		api.PATCH("/sessions/:id/status", sessionHandler.UpdateStatus)

		api.GET("/goals", goalHandler.List)
		api.POST("/goals", goalHandler.Create)

		api.POST("/plans/calculate", planHandler.Calculate)
		api.POST("/plans/:id/confirm", planHandler.Confirm)
		api.GET("/plans", planHandler.List)
		api.GET("/plans/:id", planHandler.Get)
		api.GET("/plans/:id/export", planHandler.Export)

		api.GET("/insights/task-time", insightsHandler.TaskTime)
		api.GET("/insights/exam-prep/:examId", insightsHandler.ExamPrep)
		api.GET("/insights/trend/:subjectId", insightsHandler.Trend)
		api.GET("/insights/outlook/:examId", insightsHandler.Outlook)
		api.GET("/insights/priorities", insightsHandler.Priorities)
		api.GET("/insights/next-session", insightsHandler.NextSession)
		api.GET("/insights/context", contextHandler.Get)

		api.GET("/metrics/snapshot", metricsHandler.Snapshot)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	if err := cacheRepo.Close(); err != nil {
		logr.Sugar().Warnw("failed to close redis", "error", err)
	}
}
