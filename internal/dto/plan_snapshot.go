package dto

// CreatePlanSnapshotRequest captures POST /plan-snapshots payload.
type CreatePlanSnapshotRequest struct {
	HorizonYears *int   `json:"horizon_years,omitempty" validate:"omitempty,min=0,max=10"`
	Note         string `json:"note,omitempty" validate:"max=500"`
}

// PlanSnapshotQuery filters GET /plan-snapshots.
type PlanSnapshotQuery struct {
	HorizonYears *int `form:"horizon" validate:"omitempty,min=0,max=10"`
	Page         int  `form:"page" validate:"omitempty,min=1"`
	PageSize     int  `form:"page_size" validate:"omitempty,min=1,max=100"`
}
