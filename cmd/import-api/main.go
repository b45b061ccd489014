package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/patrickmb/timetable-import-api/internal/handler"
	"github.com/patrickmb/timetable-import-api/internal/imports"
	"github.com/patrickmb/timetable-import-api/internal/middleware"
	"github.com/patrickmb/timetable-import-api/internal/repository"
	"github.com/patrickmb/timetable-import-api/internal/service"
	"github.com/patrickmb/timetable-import-api/internal/store"
	"github.com/patrickmb/timetable-import-api/pkg/cache"
	"github.com/patrickmb/timetable-import-api/pkg/config"
	"github.com/patrickmb/timetable-import-api/pkg/database"
	"github.com/patrickmb/timetable-import-api/pkg/logger"
	corsmiddleware "github.com/patrickmb/timetable-import-api/pkg/middleware/cors"
	reqidmiddleware "github.com/patrickmb/timetable-import-api/pkg/middleware/requestid"
	"github.com/patrickmb/timetable-import-api/pkg/storage"
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	importStore := store.NewImportStore(redisClient, cfg.Import.StoreTTL, logr)

	var runRecorder service.RunRecorder
	if cfg.Database.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close() //nolint:errcheck
		runRecorder = repository.NewImportRunRepository(db)
	}

	var uploadArchive service.UploadArchive
	var archiveReader handler.ArchiveReader
	if cfg.Import.ArchiveDir != "" {
		archive, err := storage.NewUploadArchive(cfg.Import.ArchiveDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare upload archive", "error", err)
		}
		if cfg.Import.ArchiveTTL > 0 {
			if deleted, err := archive.CleanupOlderThan(cfg.Import.ArchiveTTL); err != nil {
				logr.Sugar().Warnw("upload archive cleanup failed", "error", err)
			} else if len(deleted) > 0 {
				logr.Sugar().Infow("upload archive cleaned", "deleted", len(deleted))
			}
		}
		uploadArchive = archive
		archiveReader = archive
	}

	metricsSvc := service.NewMetricsService()
	processor := imports.NewProcessor(logr)

	importSvc := service.NewImportService(processor, importStore, runRecorder, uploadArchive, metricsSvc, logr)
	solverSvc := service.NewSolverService(importStore, cfg.Solver.BaseURL, cfg.Solver.Timeout, cfg.Solver.Enabled, logr)

	importHandler := handler.NewImportHandler(importSvc, solverSvc, archiveReader, cfg.Import.MaxUploadBytes)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return redisClient.Ping(ctx).Err()
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/imports", importHandler.Upload)
		api.GET("/imports/current", importHandler.Current)
		api.DELETE("/imports/current", importHandler.Clear)
		api.GET("/imports/current/export", importHandler.Export)
		api.GET("/imports/runs", importHandler.Runs)
		api.GET("/imports/runs/:id/upload", importHandler.RunUpload)
		api.POST("/imports/current/solve", importHandler.Solve)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
