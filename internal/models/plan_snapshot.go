package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// PlanSnapshot is a persisted, versioned exam plan for one horizon.
type PlanSnapshot struct {
	ID           string         `db:"id" json:"id"`
	Version      int            `db:"version" json:"version"`
	Boundary     string         `db:"boundary" json:"boundary"`
	HorizonYears int            `db:"horizon_years" json:"horizon_years"`
	GeneratedAt  time.Time      `db:"generated_at" json:"generated_at"`
	Plan         types.JSONText `db:"plan" json:"plan"`
	Meta         types.JSONText `db:"meta" json:"meta"`
	CreatedBy    string         `db:"created_by" json:"created_by"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// PlanSnapshotFilter narrows snapshot listings.
type PlanSnapshotFilter struct {
	HorizonYears *int
	Page         int
	PageSize     int
}
