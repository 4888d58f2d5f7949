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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-planner-api/api/swagger"
	"github.com/noah-isme/course-planner-api/internal/handler"
	internalmiddleware "github.com/noah-isme/course-planner-api/internal/middleware"
	"github.com/noah-isme/course-planner-api/internal/repository"
	"github.com/noah-isme/course-planner-api/internal/service"
	"github.com/noah-isme/course-planner-api/pkg/cache"
	"github.com/noah-isme/course-planner-api/pkg/config"
	"github.com/noah-isme/course-planner-api/pkg/database"
	"github.com/noah-isme/course-planner-api/pkg/jobs"
	"github.com/noah-isme/course-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-planner-api/pkg/middleware/requestid"
)

// @title Course Planner API
// @version 1.0.0
// @description Timetable rendering and conflict-minimising auto scheduling for course sections
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	checks := map[string]handler.Pinger{}

	var catalogSvc *service.CatalogService
	if cfg.Catalog.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect database", "error", err)
		}
		defer db.Close()
		if cfg.Database.AutoMigrate {
			if err := database.RunMigrations(db.DB, logr); err != nil {
				logr.Sugar().Fatalw("failed to migrate database", "error", err)
			}
		}
		catalogRepo := repository.NewCatalogRepository(db)
		checks["postgres"] = catalogRepo
		catalogSvc = service.NewCatalogService(service.CatalogServiceParams{
			Repo:      catalogRepo,
			Tx:        db,
			Metrics:   metricsSvc,
			Validator: validate,
			Logger:    logr,
		})
	}

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, plan cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(client, logr)
			defer cacheRepo.Close() //nolint:errcheck
			checks["redis"] = cacheRepo
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
		}
	}

	plannerParams := service.PlannerServiceParams{
		Metrics:   metricsSvc,
		Validator: validate,
		Logger:    logr,
		Config: service.PlannerServiceConfig{
			Threshold:     cfg.Planner.Threshold,
			SearchTimeout: cfg.Planner.SearchTimeout,
			MaxSubjects:   cfg.Planner.MaxSubjects,
			CacheTTL:      cfg.Cache.TTL,
		},
	}
	if catalogSvc != nil {
		plannerParams.Catalogs = catalogSvc
	}
	if cacheSvc != nil {
		plannerParams.Cache = cacheSvc
	}
	plannerSvc := service.NewPlannerService(plannerParams)
	exportSvc := service.NewExportService(plannerSvc, logr, nil, nil)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)

	var jobHandler *handler.PlanJobHandler
	if cfg.Jobs.Enabled {
		jobSvc := service.NewPlanJobService(nil, validate, logr, service.PlanJobServiceConfig{ResultTTL: cfg.Jobs.ResultTTL})
		worker := service.NewPlanJobWorker(jobSvc, plannerSvc, metricsSvc, logr)
		queue := jobs.NewQueue("planner", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Jobs.Workers,
			BufferSize: cfg.Jobs.QueueSize,
			MaxRetries: cfg.Jobs.MaxRetries,
			Logger:     logr,
			OnGiveUp:   worker.GiveUp,
		})
		jobSvc.AttachQueue(queue)
		queue.Start(ctx)
		defer queue.Stop()
		jobSvc.StartCleanup(ctx)
		jobHandler = handler.NewPlanJobHandler(jobSvc)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	routes := handler.Routes{
		Planner: handler.NewPlannerHandler(plannerSvc, exportSvc),
		Jobs:    jobHandler,
		Metrics: handler.NewMetricsHandler(metricsSvc, checks),
		Tokens:  tokenSvc,
		Logger:  logr,
	}
	if catalogSvc != nil {
		routes.Catalogs = handler.NewCatalogHandler(catalogSvc)
	}
	handler.RegisterRoutes(r, cfg.APIPrefix, routes)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env,
			"catalog_db", catalogSvc != nil, "cache", cacheSvc != nil, "jobs", jobHandler != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
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
