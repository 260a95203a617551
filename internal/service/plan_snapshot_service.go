package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-period-api/internal/dto"
	"github.com/noah-isme/exam-period-api/internal/models"
	"github.com/noah-isme/exam-period-api/internal/repository"
	appErrors "github.com/noah-isme/exam-period-api/pkg/errors"
)

const snapshotVersionAttempts = 3

type planSnapshotStore interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, snapshot *models.PlanSnapshot) error
	List(ctx context.Context, filter models.PlanSnapshotFilter) ([]models.PlanSnapshot, int, error)
	FindByID(ctx context.Context, id string) (*models.PlanSnapshot, error)
}

type planGenerator interface {
	Generate(ctx context.Context, query dto.ExamPlanQuery) (*models.ExamPlan, error)
}

type planSnapshotMeta struct {
	Note       string `json:"note,omitempty"`
	Semesters  int    `json:"semesters"`
	Proposals  int    `json:"proposals"`
	Violations int    `json:"violations"`
}

// PlanSnapshotService persists generated plans as versioned snapshots.
type PlanSnapshotService struct {
	repo      planSnapshotStore
	plans     planGenerator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPlanSnapshotService constructs the snapshot service.
func NewPlanSnapshotService(repo planSnapshotStore, plans planGenerator, validate *validator.Validate, logger *zap.Logger) *PlanSnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PlanSnapshotService{repo: repo, plans: plans, validator: validate, logger: logger}
}

// Create generates a plan and stores it as the next version of its horizon.
func (s *PlanSnapshotService) Create(ctx context.Context, req dto.CreatePlanSnapshotRequest, actor string) (*models.PlanSnapshot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid snapshot payload")
	}
	plan, err := s.plans.Generate(ctx, dto.ExamPlanQuery{HorizonYears: req.HorizonYears})
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(plan)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode plan")
	}
	meta := planSnapshotMeta{Note: req.Note, Semesters: len(plan.Semesters)}
	for _, semester := range plan.Semesters {
		if semester.Proposal {
			meta.Proposals++
		}
		meta.Violations += len(semester.Violations)
	}
	metaPayload, err := json.Marshal(meta)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode snapshot meta")
	}

	snapshot := &models.PlanSnapshot{
		Boundary:     plan.Boundary.Name(),
		HorizonYears: plan.HorizonYears,
		GeneratedAt:  plan.GeneratedAt,
		Plan:         types.JSONText(payload),
		Meta:         types.JSONText(metaPayload),
		CreatedBy:    actor,
	}
	if plan.Boundary.IsZero() {
		snapshot.Boundary = ""
	}
	if err := s.store(ctx, snapshot); err != nil {
		return nil, err
	}
	s.logger.Info("plan snapshot stored",
		zap.String("id", snapshot.ID),
		zap.Int("version", snapshot.Version),
		zap.Int("horizon_years", snapshot.HorizonYears),
	)
	return snapshot, nil
}

// store retries when a concurrent request took the same version.
func (s *PlanSnapshotService) store(ctx context.Context, snapshot *models.PlanSnapshot) error {
	var err error
	for attempt := 0; attempt < snapshotVersionAttempts; attempt++ {
		snapshot.ID = ""
		if err = s.repo.CreateVersioned(ctx, nil, snapshot); err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrSnapshotVersionTaken) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store plan snapshot")
		}
		s.logger.Debug("snapshot version taken, retrying", zap.Int("version", snapshot.Version), zap.Int("attempt", attempt+1))
	}
	return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "plan snapshot version conflict")
}

// List returns one page of snapshots, newest first.
func (s *PlanSnapshotService) List(ctx context.Context, query dto.PlanSnapshotQuery) ([]models.PlanSnapshot, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid snapshot query")
	}
	filter := models.PlanSnapshotFilter{HorizonYears: query.HorizonYears, Page: query.Page, PageSize: query.PageSize}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	snapshots, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plan snapshots")
	}
	return snapshots, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get loads a snapshot by id.
func (s *PlanSnapshotService) Get(ctx context.Context, id string) (*models.PlanSnapshot, error) {
	snapshot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "plan snapshot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan snapshot")
	}
	return snapshot, nil
}
