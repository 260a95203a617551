package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/noah-isme/exam-period-api/internal/models"
)

// ErrSnapshotVersionTaken is returned when a concurrent insert claimed the
// same version for a horizon.
var ErrSnapshotVersionTaken = errors.New("plan snapshot version already taken")

const uniqueViolation = "23505"

const planSnapshotColumns = `id, version, boundary, horizon_years, generated_at, plan, meta, created_by, created_at`

// PlanSnapshotRepository persists versioned exam plans.
type PlanSnapshotRepository struct {
	db *sqlx.DB
}

// NewPlanSnapshotRepository constructs the repository.
func NewPlanSnapshotRepository(db *sqlx.DB) *PlanSnapshotRepository {
	return &PlanSnapshotRepository{db: db}
}

func (r *PlanSnapshotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a snapshot assigning the next version for its horizon.
func (r *PlanSnapshotRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, snapshot *models.PlanSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot payload is nil")
	}
	if len(snapshot.Plan) == 0 {
		return fmt.Errorf("snapshot plan is required")
	}
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if len(snapshot.Meta) == 0 {
		snapshot.Meta = types.JSONText(`{}`)
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM plan_snapshots WHERE horizon_years = $1`
	if err := sqlx.GetContext(ctx, target, &snapshot.Version, nextVersionQuery, snapshot.HorizonYears); err != nil {
		return fmt.Errorf("compute next plan snapshot version: %w", err)
	}

	const insertQuery = `
INSERT INTO plan_snapshots (id, version, boundary, horizon_years, generated_at, plan, meta, created_by, created_at)
VALUES (:id, :version, :boundary, :horizon_years, :generated_at, :plan, :meta, :created_by, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, snapshot); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("insert plan snapshot version %d: %w", snapshot.Version, ErrSnapshotVersionTaken)
		}
		return fmt.Errorf("insert plan snapshot: %w", err)
	}
	return nil
}

// List returns snapshots newest first together with the total count.
func (r *PlanSnapshotRepository) List(ctx context.Context, filter models.PlanSnapshotFilter) ([]models.PlanSnapshot, int, error) {
	where := ""
	args := []interface{}{}
	if filter.HorizonYears != nil {
		where = " WHERE horizon_years = $1"
		args = append(args, *filter.HorizonYears)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM plan_snapshots`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count plan snapshots: %w", err)
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	page := models.Pagination{Page: filter.Page, PageSize: pageSize}
	query := fmt.Sprintf(`SELECT %s FROM plan_snapshots%s ORDER BY created_at DESC, version DESC LIMIT $%d OFFSET $%d`,
		planSnapshotColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, page.Offset())

	var snapshots []models.PlanSnapshot
	if err := r.db.SelectContext(ctx, &snapshots, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list plan snapshots: %w", err)
	}
	return snapshots, total, nil
}

// FindByID loads a snapshot by its identifier.
func (r *PlanSnapshotRepository) FindByID(ctx context.Context, id string) (*models.PlanSnapshot, error) {
	query := `SELECT ` + planSnapshotColumns + ` FROM plan_snapshots WHERE id = $1`
	var snapshot models.PlanSnapshot
	if err := r.db.GetContext(ctx, &snapshot, query, id); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
