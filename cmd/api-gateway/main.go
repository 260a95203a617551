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
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/exam-period-api/api/swagger"
	"github.com/noah-isme/exam-period-api/internal/handler"
	"github.com/noah-isme/exam-period-api/internal/repository"
	"github.com/noah-isme/exam-period-api/internal/router"
	"github.com/noah-isme/exam-period-api/internal/service"
	"github.com/noah-isme/exam-period-api/internal/source"
	"github.com/noah-isme/exam-period-api/pkg/cache"
	"github.com/noah-isme/exam-period-api/pkg/config"
	"github.com/noah-isme/exam-period-api/pkg/database"
	"github.com/noah-isme/exam-period-api/pkg/export"
	"github.com/noah-isme/exam-period-api/pkg/jobs"
	"github.com/noah-isme/exam-period-api/pkg/logger"
	"github.com/noah-isme/exam-period-api/pkg/storage"
)

// @title Exam Period API
// @version 1.0.0
// @description Plans the examination periods of the TH Köln computer science faculty.
// @BasePath /api/v1
// @schemes http https
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

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rules, err := config.LoadCalendar(cfg.Calendar.File)
	if err != nil {
		logr.Fatal("failed to load calendar rules", zap.Error(err))
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{}

	var db *sqlx.DB
	if cfg.Database.Enabled {
		db, err = database.NewPostgres(rootCtx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect database", zap.Error(err))
		}
		defer db.Close()
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(db); err != nil {
				logr.Fatal("failed to migrate database", zap.Error(err))
			}
		}
		checks["database"] = db.PingContext
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(rootCtx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, plan cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	if redisClient != nil {
		checks["redis"] = cacheRepo.Ping
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, redisClient != nil)

	scraper := source.NewScraper(source.ScraperConfig{
		LectureURL:    cfg.Source.LectureURL,
		HIPURL:        cfg.Source.HIPURL,
		UserAgent:     cfg.Source.UserAgent,
		Timeout:       cfg.Source.Timeout,
		KnownHIPWeeks: rules.KnownHIPWeeks,
	}, nil, logr)

	var periodRepo *repository.SemesterPeriodRepository
	if db != nil {
		periodRepo = repository.NewSemesterPeriodRepository(db)
	}

	var periodSource source.PeriodSource
	switch cfg.Source.Mode {
	case config.SourceModeFile:
		periodSource = source.NewFile(cfg.Source.File)
	case config.SourceModeDatabase:
		periodSource = source.NewDatabase(periodRepo)
	default:
		periodSource = scraper
	}

	now := time.Now
	plans := service.NewExamPlanService(
		periodSource,
		service.BuildPlanner(cfg.Planner, rules, now),
		rules,
		cacheSvc,
		metrics,
		validate,
		service.ExamPlanConfig{HorizonYears: cfg.Planner.HorizonYears, CacheTTL: cfg.Cache.TTL},
		logr,
		now,
	)

	store, err := newStore(cfg.Exports)
	if err != nil {
		logr.Fatal("failed to init export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(signingSecret(cfg), cfg.Exports.SignedURLTTL)
	exporter := service.NewExportService(plans, export.NewRegistry(export.Options{}), store, signer, metrics, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.ResultTTL,
	}, logr)

	jobRepo := newJobStore(redisClient, cfg.Exports.ResultTTL)
	worker := service.NewExportWorker(jobRepo, exporter, metrics, logr)
	var exportJobs *service.ExportJobService
	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:       cfg.Exports.WorkerConcurrency,
		MaxRetries:    cfg.Exports.WorkerRetries,
		RetryDelay:    2 * time.Second,
		MaxRetryDelay: time.Minute,
		Logger:        logr,
		OnExhausted: func(job jobs.Job, cause error) {
			exportJobs.MarkExhausted(job, cause)
		},
	})
	exportJobs = service.NewExportJobService(jobRepo, queue, exporter, metrics, validate, logr, service.ExportJobServiceConfig{
		ResultTTL:       cfg.Exports.ResultTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
		DefaultHorizon:  cfg.Planner.HorizonYears,
	})
	queue.Start(rootCtx)
	exportJobs.StartCleanup(rootCtx)

	auth := service.NewAuthService(validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	handlers := router.Handlers{
		ExamPeriods: handler.NewExamPeriodHandler(plans, exporter),
		Exports:     handler.NewExportHandler(exportJobs),
		System:      handler.NewMetricsHandler(metrics, checks),
	}
	if db != nil {
		handlers.Periods = handler.NewPeriodHandler(service.NewPeriodService(periodRepo, scraper, plans, validate, logr))
		handlers.Snapshots = handler.NewPlanSnapshotHandler(service.NewPlanSnapshotService(repository.NewPlanSnapshotRepository(db), plans, validate, logr))
	}

	engine := router.Setup(router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Metrics:        metrics,
		Auth:           auth,
	}, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("source", cfg.Source.Mode),
			zap.Bool("database", db != nil),
			zap.Bool("cache", cacheSvc.Enabled()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := queue.Shutdown(shutdownCtx); err != nil {
		logr.Error("export queue shutdown failed", zap.Error(err))
	}
}

func newStore(cfg config.ExportsConfig) (storage.Store, error) {
	if cfg.StorageDriver == config.StorageDriverS3 {
		return storage.NewS3Storage(storage.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    "exports",
		})
	}
	return storage.NewLocalStorage(cfg.StorageDir)
}

func newJobStore(client *redis.Client, ttl time.Duration) service.ExportJobStore {
	if client != nil {
		return repository.NewRedisExportJobRepository(client, ttl)
	}
	return repository.NewMemoryExportJobRepository(ttl)
}

func signingSecret(cfg *config.Config) string {
	if cfg.Exports.SignedURLSecret != "" {
		return cfg.Exports.SignedURLSecret
	}
	return cfg.JWT.Secret
}
