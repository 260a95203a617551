package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-period-api/internal/dto"
	"github.com/noah-isme/exam-period-api/internal/models"
	"github.com/noah-isme/exam-period-api/internal/source"
	appErrors "github.com/noah-isme/exam-period-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type semesterPeriodStore interface {
	List(ctx context.Context) ([]models.SemesterPeriod, error)
	Upsert(ctx context.Context, period *models.SemesterPeriod) error
	BulkUpsert(ctx context.Context, periods []models.SemesterPeriod) error
}

type planCacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

// PeriodService manages the stored lecture periods and project weeks.
type PeriodService struct {
	repo      semesterPeriodStore
	scraper   source.PeriodSource
	plans     planCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPeriodService constructs the period admin service.
func NewPeriodService(repo semesterPeriodStore, scraper source.PeriodSource, plans planCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *PeriodService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PeriodService{repo: repo, scraper: scraper, plans: plans, validator: validate, logger: logger}
}

// List returns all stored semesters in semester order.
func (s *PeriodService) List(ctx context.Context) ([]models.SemesterPeriod, error) {
	periods, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semester periods")
	}
	return periods, nil
}

// Upsert stores a manually maintained semester.
func (s *PeriodService) Upsert(ctx context.Context, req dto.UpsertPeriodRequest) (*models.SemesterPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period payload")
	}
	key, ok := models.ParseSemesterKey(req.Name)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unrecognised semester name")
	}

	lectureStart, _ := time.Parse(dateLayout, req.LectureStart)
	lectureEnd, _ := time.Parse(dateLayout, req.LectureEnd)
	if lectureEnd.Before(lectureStart) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lecture_end must not be before lecture_start")
	}

	period := &models.SemesterPeriod{
		Name:         key.Name(),
		Year:         key.Year,
		Winter:       key.Winter,
		LectureStart: lectureStart,
		LectureEnd:   lectureEnd,
		Source:       "manual",
	}

	if (req.HIPStart == nil) != (req.HIPEnd == nil) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hip_start and hip_end must be set together")
	}
	if req.HIPStart != nil {
		hipStart, _ := time.Parse(dateLayout, *req.HIPStart)
		hipEnd, _ := time.Parse(dateLayout, *req.HIPEnd)
		if hipEnd.Before(hipStart) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "hip_end must not be before hip_start")
		}
		if hipStart.Before(lectureStart) || hipEnd.After(lectureEnd) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "project week must lie within the lecture period")
		}
		period.HIPStart = &hipStart
		period.HIPEnd = &hipEnd
	}

	if err := s.repo.Upsert(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store semester period")
	}
	s.invalidate(ctx)
	return period, nil
}

// Sync scrapes the published pages and stores every semester found.
func (s *PeriodService) Sync(ctx context.Context) (*dto.PeriodSyncResponse, error) {
	if s.scraper == nil {
		return nil, appErrors.Clone(appErrors.ErrSourceUnavailable, "no scraper configured")
	}
	periods, err := s.scraper.FetchPeriods(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status, "failed to scrape semester periods")
	}
	rows := source.ToSemesterPeriods(periods, "scrape")
	if err := s.repo.BulkUpsert(ctx, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store scraped periods")
	}
	s.invalidate(ctx)

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	s.logger.Info("semester periods synced", zap.Int("semesters", len(rows)), zap.Int("hips", len(periods.HIPs)))
	return &dto.PeriodSyncResponse{Semesters: names, Lectures: len(periods.Lectures), HIPs: len(periods.HIPs)}, nil
}

func (s *PeriodService) invalidate(ctx context.Context) {
	if s.plans == nil {
		return
	}
	if err := s.plans.InvalidateCache(ctx); err != nil {
		s.logger.Warn("failed to invalidate plan cache", zap.Error(err))
	}
}
