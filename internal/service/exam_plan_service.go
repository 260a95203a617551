package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-period-api/internal/dto"
	"github.com/noah-isme/exam-period-api/internal/models"
	"github.com/noah-isme/exam-period-api/internal/planner"
	"github.com/noah-isme/exam-period-api/internal/source"
	"github.com/noah-isme/exam-period-api/pkg/config"
	appErrors "github.com/noah-isme/exam-period-api/pkg/errors"
)

// MaxHorizonYears bounds how far ahead semesters are synthesized.
const MaxHorizonYears = 10

// ExamPlanConfig tunes plan generation.
type ExamPlanConfig struct {
	HorizonYears int
	CacheTTL     time.Duration
}

// ExamPlanService fetches periods, extrapolates missing semesters and plans
// the examination weeks of every semester.
type ExamPlanService struct {
	source    source.PeriodSource
	planner   *planner.Planner
	rules     *config.CalendarRules
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExamPlanConfig
	now       func() time.Time
}

// BuildPlanner translates configuration into planner settings.
func BuildPlanner(cfg config.PlannerConfig, rules *config.CalendarRules, now func() time.Time) *planner.Planner {
	plannerCfg := planner.DefaultConfig()
	plannerCfg.ShiftMin = cfg.ShiftMin
	plannerCfg.ShiftMax = cfg.ShiftMax
	if len(cfg.LastBlockOffsets) > 0 {
		plannerCfg.LastBlockOffsets = append([]int(nil), cfg.LastBlockOffsets...)
	}
	if cfg.BufferMin > 0 {
		plannerCfg.BufferMin = cfg.BufferMin
	}
	if cfg.BufferMax > 0 {
		plannerCfg.BufferMax = cfg.BufferMax
	}
	plannerCfg.TargetBuffer = cfg.TargetBuffer
	plannerCfg.MinLectureWeeks = cfg.MinLectureWeeks
	plannerCfg.MaxLookbackDays = cfg.MaxLookbackDays

	calendarRules := planner.DefaultRules()
	if rules != nil {
		calendarRules = planner.Rules{
			Rosenmontag:  rules.Rosenmontag,
			ChristmasEve: rules.ChristmasEve,
			NewYearsEve:  rules.NewYearsEve,
			Extra:        rules.Extra,
		}
	}
	return planner.New(plannerCfg, calendarRules, now)
}

// NewExamPlanService constructs the plan service. now defaults to time.Now.
func NewExamPlanService(src source.PeriodSource, p *planner.Planner, rules *config.CalendarRules, cache *CacheService, metrics *MetricsService, validate *validator.Validate, cfg ExamPlanConfig, logger *zap.Logger, now func() time.Time) *ExamPlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if now == nil {
		now = time.Now
	}
	if cfg.HorizonYears < 0 {
		cfg.HorizonYears = 0
	}
	return &ExamPlanService{
		source:    src,
		planner:   p,
		rules:     rules,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       now,
	}
}

// Generate returns the plan for the requested horizon, optionally narrowed to
// a single semester. Results are cached per horizon, clock year and semester.
func (s *ExamPlanService) Generate(ctx context.Context, query dto.ExamPlanQuery) (*models.ExamPlan, error) {
	plan, _, err := s.GenerateWithCacheInfo(ctx, query)
	return plan, err
}

// GenerateWithCacheInfo is Generate that also reports whether the cache served the plan.
func (s *ExamPlanService) GenerateWithCacheInfo(ctx context.Context, query dto.ExamPlanQuery) (*models.ExamPlan, bool, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan query")
	}
	horizon := s.cfg.HorizonYears
	if query.HorizonYears != nil {
		horizon = *query.HorizonYears
	}
	semester := ""
	if query.Semester != "" {
		name, ok := models.CanonicalSemesterName(query.Semester)
		if !ok {
			return nil, false, appErrors.Clone(appErrors.ErrValidation, "unrecognised semester name")
		}
		semester = name
	}

	key := PlanCacheKey(horizon, s.now().Year(), semester)
	if cached, hit := s.cache.GetPlan(ctx, key); hit {
		return cached, true, nil
	}

	start := time.Now()
	plan, err := s.build(ctx, horizon)
	s.metrics.ObservePlanRun(plan, time.Since(start))
	if err != nil {
		return nil, false, err
	}

	if semester != "" {
		entry, ok := plan.Semester(semester)
		if !ok {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "semester not within the planning horizon")
		}
		plan.Semesters = []models.SemesterPlan{*entry}
		plan.SchoolHolidays = s.schoolHolidays(plan.Semesters)
	}

	s.cache.SetPlan(ctx, key, plan, s.cfg.CacheTTL)
	return plan, false, nil
}

// Holidays lists the weekday holidays of a single calendar year.
func (s *ExamPlanService) Holidays(year int) (*dto.HolidayResponse, error) {
	if year < 1970 || year > 2200 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year must be between 1970 and 2200")
	}
	set := s.planner.Calendar().Holidays(year)
	weekdays := set.Weekdays(planner.Date(year, time.January, 1), planner.Date(year, time.December, 31))
	resp := &dto.HolidayResponse{Year: year, Holidays: make([]dto.HolidayEntry, 0, len(weekdays))}
	for _, h := range weekdays {
		resp.Holidays = append(resp.Holidays, dto.HolidayEntry{
			Date:    h.Date.Format("2006-01-02"),
			Weekday: h.Weekday,
			Name:    h.Name,
		})
	}
	return resp, nil
}

// InvalidateCache drops every cached plan.
func (s *ExamPlanService) InvalidateCache(ctx context.Context) error {
	return s.cache.Invalidate(ctx, PlanCachePattern())
}

func (s *ExamPlanService) build(ctx context.Context, horizon int) (*models.ExamPlan, error) {
	periods, err := s.source.FetchPeriods(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status, "failed to load semester periods")
	}
	periods = periods.Clone()

	boundary := planner.BoundaryOf(periods.HIPs)
	added := s.planner.Extrapolate(periods.Lectures, periods.HIPs, boundary, horizon)
	s.logger.Debug("periods extrapolated",
		zap.String("boundary", boundary.Name()),
		zap.Int("horizon_years", horizon),
		zap.Strings("added", added),
	)

	semesters, err := s.planner.Plan(ctx, periods.Lectures, periods.HIPs, boundary)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to plan semesters")
	}

	return &models.ExamPlan{
		GeneratedAt:    s.now().UTC(),
		Boundary:       boundary,
		HorizonYears:   horizon,
		Semesters:      semesters,
		SchoolHolidays: s.schoolHolidays(semesters),
	}, nil
}

func (s *ExamPlanService) schoolHolidays(semesters []models.SemesterPlan) []models.SchoolHoliday {
	if len(semesters) == 0 {
		return nil
	}
	from := semesters[0].Lecture.Start
	to := semesters[len(semesters)-1].Lecture.End
	for _, sem := range semesters {
		if n := len(sem.Blocks); n > 0 && sem.Blocks[n-1].End.After(to) {
			to = sem.Blocks[n-1].End
		}
	}
	// Summer plans list Easter holidays of the lecture year, which start before the lectures.
	return s.rules.SchoolHolidaysBetween(planner.Date(from.Year(), time.January, 1), to)
}
