package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/acadepol/horarios-api/api/swagger"
	"github.com/acadepol/horarios-api/internal/handler"
	"github.com/acadepol/horarios-api/internal/loader"
	"github.com/acadepol/horarios-api/internal/middleware"
	"github.com/acadepol/horarios-api/internal/models"
	"github.com/acadepol/horarios-api/internal/repository"
	"github.com/acadepol/horarios-api/internal/service"
	"github.com/acadepol/horarios-api/pkg/cache"
	"github.com/acadepol/horarios-api/pkg/config"
	"github.com/acadepol/horarios-api/pkg/database"
	"github.com/acadepol/horarios-api/pkg/jobs"
	"github.com/acadepol/horarios-api/pkg/logger"
	corsmiddleware "github.com/acadepol/horarios-api/pkg/middleware/cors"
	reqidmiddleware "github.com/acadepol/horarios-api/pkg/middleware/requestid"
	"github.com/acadepol/horarios-api/pkg/storage"
)

// @title Horarios API
// @version 1.0.0
// @description Academic timetable construction service
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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, published snapshot cache disabled", "error", err)
		redisClient = nil
	}

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}

	weekend, err := models.ParseWeekdaySet(cfg.Scheduler.WeekendDays)
	if err != nil {
		logr.Sugar().Fatalw("invalid SCHEDULER_WEEKEND_DAYS", "error", err)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	snapshots := repository.NewSnapshotRepository(db)
	assignments := repository.NewSnapshotAssignmentRepository(db)
	snapshotCache := repository.NewCacheRepository(redisClient, logr)

	calendars := service.NewCalendarService(weekend, logr)
	analyzer := service.NewDisciplineAnalyzer(cfg.Scheduler.RoundingGranularityMinutes, logr)
	generator := service.NewTimetableGenerator(logr)
	conflicts := service.NewConflictValidator(metrics, logr)

	pipeline := service.NewTimetablePipeline(
		calendars, analyzer, generator, conflicts,
		snapshots, assignments, snapshotCache, db,
		validate, logr,
		service.PipelineConfig{
			MaxRetries:  cfg.Scheduler.MaxRetries,
			ProposalTTL: cfg.Scheduler.ProposalTTL,
		},
	)

	signer := storage.NewSignedURLSigner(cfg.JWT.Secret, 24*time.Hour)
	exports := service.NewExportService(snapshots, assignments, exportStore, signer,
		service.ExportConfig{APIPrefix: cfg.APIPrefix}, logr)

	holidayParser := loader.NewHolidayParser(logr)
	disciplineLoader := loader.NewDisciplineLoader(logr)

	maintenance := jobs.NewQueue("maintenance", func(ctx context.Context, job jobs.Job) error {
		removed, err := exports.Cleanup()
		if err != nil {
			return err
		}
		if len(removed) > 0 {
			logr.Info("expired exports removed", zap.Int("count", len(removed)))
		}
		return nil
	}, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})

	timetableHandler := handler.NewTimetableHandler(pipeline, metrics)
	exportHandler := handler.NewExportHandler(exports, metrics)
	calendarHandler := handler.NewCalendarHandler(calendars, holidayParser)
	disciplineHandler := handler.NewDisciplineHandler(disciplineLoader)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/calendars/preview", calendarHandler.Preview)
	api.POST("/holidays/parse", calendarHandler.ParseHolidays)
	api.GET("/holidays/defaults", calendarHandler.DefaultHolidays)
	api.POST("/disciplines/parse", disciplineHandler.Parse)
	api.GET("/published-timetables", timetableHandler.Published)
	api.GET("/exports/:token", exportHandler.Download)

	protected := api.Group("")
	protected.Use(middleware.JWT(cfg.JWT.Secret))
	protected.Use(middleware.Audit(logr))
	protected.POST("/timetables/generate", timetableHandler.Generate)
	protected.POST("/timetables/save", timetableHandler.Save)
	protected.GET("/timetables", timetableHandler.List)
	protected.GET("/timetables/:id/assignments", timetableHandler.Assignments)
	protected.GET("/timetables/:id/export", exportHandler.Export)

	restricted := protected.Group("")
	restricted.Use(middleware.RequireRole(middleware.RoleAdmin, middleware.RoleCoordinator))
	restricted.POST("/timetables/:id/publish", timetableHandler.Publish)
	restricted.DELETE("/timetables/:id", timetableHandler.Delete)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	maintenance.Start(ctx)
	defer maintenance.Stop()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = maintenance.Enqueue(jobs.Job{Type: "export_cleanup"})
			}
		}
	}()

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
