package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-period-api/internal/models"
	appErrors "github.com/noah-isme/exam-period-api/pkg/errors"
)

const planCachePrefix = "exam_plan:"

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService wraps the Redis cache with hit/miss metrics. A disabled or
// nil service behaves as an always-missing cache.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 6 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// PlanCacheKey identifies a generated plan. The clock year is part of the key
// because the extrapolation horizon is counted from it.
func PlanCacheKey(horizonYears, clockYear int, semester string) string {
	if semester == "" {
		semester = "all"
	}
	return fmt.Sprintf("%sh%d:y%d:%s", planCachePrefix, horizonYears, clockYear, semester)
}

// PlanCachePattern matches every cached plan.
func PlanCachePattern() string {
	return planCachePrefix + "*"
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// GetPlan returns a cached plan. Backend failures count as a miss so a
// broken Redis never fails plan requests.
func (s *CacheService) GetPlan(ctx context.Context, key string) (*models.ExamPlan, bool) {
	var plan models.ExamPlan
	hit, err := s.Get(ctx, key, &plan)
	if err != nil || !hit {
		return nil, false
	}
	return &plan, true
}

// SetPlan caches a generated plan. Plans without semesters are not cached.
func (s *CacheService) SetPlan(ctx context.Context, key string, plan *models.ExamPlan, ttl time.Duration) {
	if plan == nil || len(plan.Semesters) == 0 {
		return
	}
	_ = s.Set(ctx, key, plan, ttl)
}

// Invalidate removes cached values for the provided pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}
