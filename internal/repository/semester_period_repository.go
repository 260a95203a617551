package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-period-api/internal/models"
)

const semesterPeriodColumns = `id, name, year, winter, lecture_start, lecture_end, hip_start, hip_end, source, created_at, updated_at`

const upsertSemesterPeriodQuery = `INSERT INTO semester_periods (id, name, year, winter, lecture_start, lecture_end, hip_start, hip_end, source, created_at, updated_at)
VALUES (:id, :name, :year, :winter, :lecture_start, :lecture_end, :hip_start, :hip_end, :source, :created_at, :updated_at)
ON CONFLICT (name)
DO UPDATE SET lecture_start = EXCLUDED.lecture_start, lecture_end = EXCLUDED.lecture_end,
              hip_start = EXCLUDED.hip_start, hip_end = EXCLUDED.hip_end,
              source = EXCLUDED.source, updated_at = EXCLUDED.updated_at`

// SemesterPeriodRepository persists lecture periods and project weeks.
type SemesterPeriodRepository struct {
	db *sqlx.DB
}

// NewSemesterPeriodRepository constructs the repository.
func NewSemesterPeriodRepository(db *sqlx.DB) *SemesterPeriodRepository {
	return &SemesterPeriodRepository{db: db}
}

// List returns all stored semesters in semester order.
func (r *SemesterPeriodRepository) List(ctx context.Context) ([]models.SemesterPeriod, error) {
	query := `SELECT ` + semesterPeriodColumns + ` FROM semester_periods ORDER BY year ASC, winter ASC`
	var periods []models.SemesterPeriod
	if err := r.db.SelectContext(ctx, &periods, query); err != nil {
		return nil, fmt.Errorf("list semester periods: %w", err)
	}
	return periods, nil
}

// FindByName loads one semester by canonical name.
func (r *SemesterPeriodRepository) FindByName(ctx context.Context, name string) (*models.SemesterPeriod, error) {
	query := `SELECT ` + semesterPeriodColumns + ` FROM semester_periods WHERE name = $1`
	var period models.SemesterPeriod
	if err := r.db.GetContext(ctx, &period, query, name); err != nil {
		return nil, err
	}
	return &period, nil
}

// Upsert inserts or updates a semester keyed by name.
func (r *SemesterPeriodRepository) Upsert(ctx context.Context, period *models.SemesterPeriod) error {
	prepareSemesterPeriod(period, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, upsertSemesterPeriodQuery, period); err != nil {
		return fmt.Errorf("upsert semester period: %w", err)
	}
	return nil
}

// BulkUpsert upserts all periods within one transaction.
func (r *SemesterPeriodRepository) BulkUpsert(ctx context.Context, periods []models.SemesterPeriod) error {
	if len(periods) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin semester period tx: %w", err)
	}
	now := time.Now().UTC()
	for i := range periods {
		prepareSemesterPeriod(&periods[i], now)
		if _, err := tx.NamedExecContext(ctx, upsertSemesterPeriodQuery, periods[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bulk upsert semester period: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit semester period tx: %w", err)
	}
	return nil
}

func prepareSemesterPeriod(period *models.SemesterPeriod, now time.Time) {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	if period.Source == "" {
		period.Source = "manual"
	}
	if period.CreatedAt.IsZero() {
		period.CreatedAt = now
	}
	period.UpdatedAt = now
}
