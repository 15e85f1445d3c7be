package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campusops/timetable-solver/api/swagger"
	internalhandler "github.com/campusops/timetable-solver/internal/handler"
	internalmiddleware "github.com/campusops/timetable-solver/internal/middleware"
	"github.com/campusops/timetable-solver/internal/repository"
	"github.com/campusops/timetable-solver/internal/service"
	"github.com/campusops/timetable-solver/pkg/cache"
	"github.com/campusops/timetable-solver/pkg/config"
	"github.com/campusops/timetable-solver/pkg/database"
	"github.com/campusops/timetable-solver/pkg/logger"
	corsmiddleware "github.com/campusops/timetable-solver/pkg/middleware/cors"
	reqidmiddleware "github.com/campusops/timetable-solver/pkg/middleware/requestid"
	"github.com/campusops/timetable-solver/pkg/storage"
)

// @title Timetable Solver API
// @version 0.1.0
// @description Constraint-based university timetabling solver
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	metricsHandler := internalhandler.NewMetricsHandler(metricsSvc)

	// Postgres and Redis are conveniences (audit trail, cache mirror) not
	// core dependencies: a solve works even if either is unreachable.
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Warnw("database unavailable, solver audit trail disabled", "error", err)
		db = nil
	} else {
		defer db.Close() //nolint:errcheck
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, proposal cache mirror disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
	}

	var cacheRepo *repository.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Solver.CacheTTL, logr, cacheRepo != nil)

	var runRepo *repository.SolverRunRepository
	if db != nil {
		runRepo = repository.NewSolverRunRepository(db)
	}

	localStorage, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise report storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	var seeds service.SeedSource
	if cfg.Solver.DefaultSeed != nil {
		seed := *cfg.Solver.DefaultSeed
		seeds = func() int64 { return seed }
	}

	solverSvc := service.NewSolverService(
		db,
		runRepo,
		cacheSvc,
		nil,
		logr,
		metricsSvc,
		seeds,
		localStorage,
		signer,
		service.SolverConfig{
			ProposalTTL:       cfg.Solver.ProposalTTL,
			CacheTTL:          cfg.Solver.CacheTTL,
			ReportWorkers:     cfg.Reports.WorkerConcurrency,
			DownloadURLPrefix: cfg.APIPrefix + "/export",
		},
	)
	defer solverSvc.Close()

	solverHandler := internalhandler.NewSolverHandler(solverSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/solve", solverHandler.Solve)
	api.GET("/solve/:id/report", solverHandler.Report)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
