package dto

import "github.com/noah-isme/exam-period-api/internal/models"

// ExportRequest captures POST /exports payload.
type ExportRequest struct {
	Format       string `json:"format" validate:"required"`
	HorizonYears *int   `json:"horizon_years,omitempty" validate:"omitempty,min=0,max=10"`
	Semester     string `json:"semester,omitempty" validate:"omitempty,max=64"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Format    string              `json:"format"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
