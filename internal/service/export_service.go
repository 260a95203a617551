package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-period-api/internal/dto"
	"github.com/noah-isme/exam-period-api/internal/models"
	appErrors "github.com/noah-isme/exam-period-api/pkg/errors"
	"github.com/noah-isme/exam-period-api/pkg/export"
	"github.com/noah-isme/exam-period-api/pkg/storage"
)

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportArtifact is a rendered plan ready for download.
type ExportArtifact struct {
	Format      export.Format
	Filename    string
	ContentType string
	Data        []byte
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	ObjectKey string
	Token     string
	URL       string
	Format    export.Format
	ExpiresAt time.Time
}

// ExportService renders plans and persists rendered files.
type ExportService struct {
	plans    planGenerator
	registry *export.Registry
	storage  storage.Store
	signer   *storage.SignedURLSigner
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ExportConfig
	now      func() time.Time
}

// NewExportService constructs an ExportService. A nil registry uses the built-in renderers.
func NewExportService(plans planGenerator, registry *export.Registry, store storage.Store, signer *storage.SignedURLSigner, metrics *MetricsService, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = export.NewRegistry(export.Options{})
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 48 * time.Hour
	}
	return &ExportService{
		plans:    plans,
		registry: registry,
		storage:  store,
		signer:   signer,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Formats lists the available export formats.
func (s *ExportService) Formats() []export.Format {
	return s.registry.Formats()
}

// Render generates the plan and renders it synchronously.
func (s *ExportService) Render(ctx context.Context, rawFormat string, query dto.ExamPlanQuery) (*ExportArtifact, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, appErrors.ErrUnsupportedFormat.Message)
	}
	plan, err := s.plans.Generate(ctx, query)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := s.registry.Render(format, plan)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.metrics.ObserveExportRender(string(format), time.Since(start))

	return &ExportArtifact{
		Format:      format,
		Filename:    s.buildFilename(plan, format, query.Semester),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

// Generate renders the job's plan, stores it and signs a download token.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	horizon := job.Params.HorizonYears
	artifact, err := s.Render(ctx, job.Params.Format, dto.ExamPlanQuery{HorizonYears: &horizon, Semester: job.Params.Semester})
	if err != nil {
		return nil, err
	}

	key, err := s.storage.Save(ctx, job.ID+"/"+artifact.Filename, artifact.Data, artifact.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store export %s: %w", job.ID, err)
	}

	token, expiresAt, err := s.signer.Generate(job.ID, key)
	if err != nil {
		return nil, fmt.Errorf("sign export %s: %w", job.ID, err)
	}

	url := fmt.Sprintf("%s/exports/download/%s", strings.TrimSuffix(s.cfg.APIPrefix, "/"), token)
	s.logger.Debug("export stored", zap.String("job_id", job.ID), zap.String("key", key))
	return &ExportResult{
		ObjectKey: key,
		Token:     token,
		URL:       url,
		Format:    artifact.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// ParseToken validates and decodes a signed download token.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, key string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a reader for a stored export.
func (s *ExportService) Open(ctx context.Context, key string) (*storage.Object, error) {
	return s.storage.Open(ctx, key)
}

// Delete removes a stored export.
func (s *ExportService) Delete(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

// Cleanup purges stored exports older than the configured TTL.
func (s *ExportService) Cleanup(ctx context.Context, ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ctx, ttl)
}

func (s *ExportService) buildFilename(plan *models.ExamPlan, format export.Format, semester string) string {
	stamp := s.now().UTC().Format("20060102")
	if plan != nil && !plan.GeneratedAt.IsZero() {
		stamp = plan.GeneratedAt.UTC().Format("20060102")
	}
	scope := "alle"
	if semester != "" {
		if key, ok := models.ParseSemesterKey(semester); ok {
			scope = sanitizeFilename(key.Name())
		}
	}
	horizon := 0
	if plan != nil {
		horizon = plan.HorizonYears
	}
	return fmt.Sprintf("pruefungszeitraeume_%s_%dj_%s%s", scope, horizon, stamp, format.Extension())
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := strings.ToLower(replacer.Replace(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
