package service

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-period-api/internal/dto"
	"github.com/noah-isme/exam-period-api/internal/models"
	"github.com/noah-isme/exam-period-api/internal/repository"
	appErrors "github.com/noah-isme/exam-period-api/pkg/errors"
	"github.com/noah-isme/exam-period-api/pkg/export"
	"github.com/noah-isme/exam-period-api/pkg/jobs"
	"github.com/noah-isme/exam-period-api/pkg/middleware/requestid"
	"github.com/noah-isme/exam-period-api/pkg/storage"
)

// ExportJobType tags export jobs on the worker queue.
const ExportJobType = "plan_export"

var errQueueUnavailable = appErrors.New("QUEUE_UNAVAILABLE", http.StatusServiceUnavailable, "export queue unavailable")

// ExportJobStore persists export job state with a TTL.
type ExportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	Purge(ctx context.Context) (int, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
	Depth() int
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error)
}

// ExportJobService orchestrates export job lifecycle management.
type ExportJobService struct {
	repo      ExportJobStore
	queue     jobDispatcher
	exporter  *ExportService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportJobServiceConfig
}

// ExportJobServiceConfig governs cleanup.
type ExportJobServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	DefaultHorizon  int
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	Object      *storage.Object
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// NewExportJobService constructs the export job service.
func NewExportJobService(repo ExportJobStore, queue jobDispatcher, exporter *ExportService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ExportJobServiceConfig) *ExportJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 48 * time.Hour
	}
	return &ExportJobService{
		repo:      repo,
		queue:     queue,
		exporter:  exporter,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// CreateJob validates the request, stores the job and enqueues processing.
func (s *ExportJobService) CreateJob(ctx context.Context, req dto.ExportRequest, actorID string) (*dto.ExportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, appErrors.ErrUnsupportedFormat.Message)
	}
	semester := ""
	if req.Semester != "" {
		name, ok := models.CanonicalSemesterName(req.Semester)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unrecognised semester name")
		}
		semester = name
	}
	horizon := s.cfg.DefaultHorizon
	if req.HorizonYears != nil {
		horizon = *req.HorizonYears
	}

	job := &models.ExportJob{
		Params:    models.ExportJobParams{Format: string(format), HorizonYears: horizon, Semester: semester},
		Status:    models.ExportStatusQueued,
		Progress:  0,
		CreatedBy: actorID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ExportJobType}); err != nil {
		status := models.ExportStatusFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		progress := 100
		_ = s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
			Status:       &status,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		s.metrics.RecordExportJob(job.Params.Format, status)
		return nil, appErrors.Wrap(err, errQueueUnavailable.Code, errQueueUnavailable.Status, "failed to enqueue export job")
	}
	s.metrics.SetExportQueueDepth(s.queue.Depth())
	s.logger.Info("export job queued",
		zap.String("job_id", job.ID),
		zap.String("format", job.Params.Format),
		zap.Int("horizon_years", horizon),
		zap.String("request_id", requestid.FromContext(ctx)),
	)
	return &dto.ExportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// GetStatus exposes job metadata to clients.
func (s *ExportJobService) GetStatus(ctx context.Context, id string) (*dto.ExportStatusResponse, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ExportStatusResponse{
		ID:        job.ID,
		Format:    job.Params.Format,
		Status:    job.Status,
		Progress:  job.Progress,
		ResultURL: job.ResultURL,
		Error:     job.ErrorMessage,
	}, nil
}

// ResolveDownload validates the token and opens the stored export.
func (s *ExportJobService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	jobID, key, expiresAt, err := s.exporter.ParseToken(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrExpired, "download token expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	object, err := s.exporter.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, appErrors.Clone(appErrors.ErrExpired, "export file no longer available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	contentType := object.ContentType
	if format, err := export.ParseFormat(job.Params.Format); err == nil {
		contentType = format.ContentType()
	}
	return &ExportDownload{
		Object:      object,
		Filename:    path.Base(key),
		ContentType: contentType,
		ExpiresAt:   expiresAt,
	}, nil
}

// MarkExhausted records the final failure of a job that will not run again.
func (s *ExportJobService) MarkExhausted(job jobs.Job, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status := models.ExportStatusFailed
	progress := 100
	now := time.Now().UTC()
	msg := "export failed"
	if cause != nil {
		msg = cause.Error()
	}
	if err := s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &status,
		Progress:     &progress,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Warn("failed to mark export job failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	format := ""
	if record, err := s.repo.GetByID(ctx, job.ID); err == nil {
		format = record.Params.Format
	}
	s.metrics.RecordExportJob(format, status)
	s.metrics.SetExportQueueDepth(s.queue.Depth())
}

// StartCleanup boots a goroutine that purges expired jobs and exports periodically.
func (s *ExportJobService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ExportJobService) cleanupExpired(ctx context.Context) {
	if removed, err := s.repo.Purge(ctx); err != nil {
		s.logger.Warn("export job purge failed", zap.Error(err))
	} else if removed > 0 {
		s.logger.Debug("export jobs purged", zap.Int("count", removed))
	}
	deleted, err := s.exporter.Cleanup(ctx, s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("export storage cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("expired exports deleted", zap.Int("count", len(deleted)))
	}
}

func (s *ExportJobService) load(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrExportJobNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	return job, nil
}

// ExportWorker bridges queue jobs to ExportService.
type ExportWorker struct {
	repo     ExportJobStore
	exporter exportGenerator
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewExportWorker constructs a worker.
func NewExportWorker(repo ExportJobStore, exporter exportGenerator, metrics *MetricsService, logger *zap.Logger) *ExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportWorker{repo: repo, exporter: exporter, metrics: metrics, logger: logger}
}

// Handle processes a queue job. Failures put the job back to QUEUED; the
// queue's exhaustion hook marks it FAILED after the last retry or when the
// retry cannot be queued.
func (w *ExportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.ExportStatusProcessing
	progress := 10
	attempts := job.Attempt + 1
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:   &processing,
		Progress: &progress,
		Attempts: &attempts,
	}); err != nil {
		return err
	}

	result, err := w.exporter.Generate(ctx, record)
	if err != nil {
		msg := err.Error()
		queued := models.ExportStatusQueued
		reset := 0
		if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
			Status:       &queued,
			Progress:     &reset,
			ErrorMessage: &msg,
		}); updateErr != nil {
			w.logger.Warn("failed to mark export job queued", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return err
	}

	finished := models.ExportStatusFinished
	progress = 100
	now := time.Now().UTC()
	url := result.URL
	key := result.ObjectKey
	clear := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &finished,
		Progress:     &progress,
		ObjectKey:    &key,
		ResultURL:    &url,
		ErrorMessage: &clear,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Warn("failed to mark export job finished", zap.String("job_id", job.ID), zap.Error(err))
		return err
	}
	w.metrics.RecordExportJob(record.Params.Format, finished)
	return nil
}
