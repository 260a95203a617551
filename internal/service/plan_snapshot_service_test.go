package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-period-api/internal/dto"
	"github.com/noah-isme/exam-period-api/internal/models"
	"github.com/noah-isme/exam-period-api/internal/repository"
	"github.com/noah-isme/exam-period-api/internal/source"
	appErrors "github.com/noah-isme/exam-period-api/pkg/errors"
)

type snapshotRepoStub struct {
	created   []*models.PlanSnapshot
	filter    models.PlanSnapshotFilter
	conflicts int
	calls     int
}

func (r *snapshotRepoStub) CreateVersioned(_ context.Context, _ sqlx.ExtContext, snapshot *models.PlanSnapshot) error {
	r.calls++
	if r.conflicts > 0 {
		r.conflicts--
		return fmt.Errorf("insert: %w", repository.ErrSnapshotVersionTaken)
	}
	snapshot.ID = "snap-1"
	snapshot.Version = len(r.created) + 1
	r.created = append(r.created, snapshot)
	return nil
}

func (r *snapshotRepoStub) List(_ context.Context, filter models.PlanSnapshotFilter) ([]models.PlanSnapshot, int, error) {
	r.filter = filter
	out := make([]models.PlanSnapshot, 0, len(r.created))
	for _, s := range r.created {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (r *snapshotRepoStub) FindByID(_ context.Context, id string) (*models.PlanSnapshot, error) {
	for _, s := range r.created {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func TestPlanSnapshotServiceCreate(t *testing.T) {
	repo := &snapshotRepoStub{}
	plans := newPlanServiceForTest(t, source.Static{Periods: samplePeriods()}, nil)
	svc := NewPlanSnapshotService(repo, plans, nil, zap.NewNop())

	snapshot, err := svc.Create(context.Background(), dto.CreatePlanSnapshotRequest{HorizonYears: intPtr(1), Note: "Fachbereichsrat"}, "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.Version)
	assert.Equal(t, "Sommersemester 2024", snapshot.Boundary)
	assert.Equal(t, 1, snapshot.HorizonYears)
	assert.Equal(t, "admin", snapshot.CreatedBy)

	var meta planSnapshotMeta
	require.NoError(t, json.Unmarshal(snapshot.Meta, &meta))
	assert.Equal(t, "Fachbereichsrat", meta.Note)
	assert.Equal(t, meta.Semesters-1, meta.Proposals)

	var plan models.ExamPlan
	require.NoError(t, json.Unmarshal(snapshot.Plan, &plan))
	assert.Len(t, plan.Semesters, meta.Semesters)
}

func TestPlanSnapshotServiceCreateRetriesVersionConflicts(t *testing.T) {
	plans := newPlanServiceForTest(t, source.Static{Periods: samplePeriods()}, nil)

	repo := &snapshotRepoStub{conflicts: 2}
	snapshot, err := NewPlanSnapshotService(repo, plans, nil, zap.NewNop()).Create(context.Background(), dto.CreatePlanSnapshotRequest{}, "admin")
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls)
	assert.Equal(t, "snap-1", snapshot.ID)

	repo = &snapshotRepoStub{conflicts: snapshotVersionAttempts}
	_, err = NewPlanSnapshotService(repo, plans, nil, zap.NewNop()).Create(context.Background(), dto.CreatePlanSnapshotRequest{}, "admin")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestPlanSnapshotServiceListDefaults(t *testing.T) {
	repo := &snapshotRepoStub{}
	svc := NewPlanSnapshotService(repo, nil, nil, zap.NewNop())

	_, pagination, err := svc.List(context.Background(), dto.PlanSnapshotQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 20, repo.filter.PageSize)

	_, _, err = svc.List(context.Background(), dto.PlanSnapshotQuery{PageSize: 500})
	assert.Error(t, err)
}

func TestPlanSnapshotServiceGetNotFound(t *testing.T) {
	svc := NewPlanSnapshotService(&snapshotRepoStub{}, nil, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
