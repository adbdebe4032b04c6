package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/exam-seating-api/api/swagger"
	"github.com/noah-isme/exam-seating-api/internal/handler"
	internalmiddleware "github.com/noah-isme/exam-seating-api/internal/middleware"
	"github.com/noah-isme/exam-seating-api/internal/repository"
	"github.com/noah-isme/exam-seating-api/internal/service"
	"github.com/noah-isme/exam-seating-api/pkg/cache"
	"github.com/noah-isme/exam-seating-api/pkg/config"
	"github.com/noah-isme/exam-seating-api/pkg/database"
	"github.com/noah-isme/exam-seating-api/pkg/events"
	"github.com/noah-isme/exam-seating-api/pkg/export"
	"github.com/noah-isme/exam-seating-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-seating-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-seating-api/pkg/middleware/requestid"
)

// @title Exam Seating API
// @version 1.0.0
// @description Department, hall and exam seating allocation service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewPlanCache(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, plan cache disabled", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		natsPublisher, err := events.NewNATSPublisher(cfg.Events.NATSURL, logr)
		if err != nil {
			logr.Warn("nats unavailable, plan events disabled", zap.Error(err))
		} else {
			publisher = natsPublisher
		}
	}
	defer publisher.Close() //nolint:errcheck

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Seating.CacheTTL, logr, cfg.Seating.CacheEnabled && cacheRepo.Enabled())

	departmentRepo := repository.NewDepartmentRepository(db)
	hallRepo := repository.NewHallRepository(db)
	assignmentRepo := repository.NewSeatAssignmentRepository(db)

	planEvents := service.NewPlanEventService(publisher, service.PlanEventConfig{
		Subject:    cfg.Events.Subject,
		Workers:    cfg.Events.Workers,
		MaxRetries: cfg.Events.MaxRetries,
		RetryDelay: cfg.Events.RetryDelay,
	}, logr)
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	planEvents.Start(rootCtx)
	defer planEvents.Stop()

	authSvc := service.NewAuthService(service.AuthConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer}, logr)
	departmentSvc := service.NewDepartmentService(departmentRepo, cacheSvc, validate, logr, service.DepartmentServiceConfig{MaxRangeSize: cfg.Seating.MaxRangeSize})
	hallSvc := service.NewHallService(hallRepo, assignmentRepo, cacheSvc, validate, logr)
	seatingSvc := service.NewSeatingService(hallRepo, departmentRepo, assignmentRepo, cacheSvc, metricsSvc, planEvents, validate, logr,
		service.SeatingServiceConfig{CacheTTL: cfg.Seating.CacheTTL, MaxRangeSize: cfg.Seating.MaxRangeSize})
	exportSvc := service.NewExportService(seatingSvc, service.ExportConfig{}, logr,
		export.NewCSVExporter(), export.NewPDFExporter(cfg.Export.Title), export.NewXLSXExporter())

	checks := map[string]handler.Pinger{"database": db}
	if cacheRepo.Enabled() {
		checks["cache"] = handler.PingerFunc(cacheRepo.Ping)
	}

	handlers := routeHandlers{
		departments: handler.NewDepartmentHandler(departmentSvc),
		halls:       handler.NewHallHandler(hallSvc, seatingSvc),
		seating:     handler.NewSeatingHandler(seatingSvc),
		exports:     handler.NewExportHandler(exportSvc, hallSvc),
		metrics:     handler.NewMetricsHandler(metricsSvc, checks),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	registerRoutes(r, cfg, authSvc, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
