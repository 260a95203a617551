package models

import "time"

// ExportStatus captures background export lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJobParams are the plan options an export job renders with.
type ExportJobParams struct {
	Format       string `json:"format"`
	HorizonYears int    `json:"horizon_years"`
	Semester     string `json:"semester,omitempty"`
}

// ExportJob is the status record of an asynchronous export.
type ExportJob struct {
	ID           string          `json:"id"`
	Params       ExportJobParams `json:"params"`
	Status       ExportStatus    `json:"status"`
	Progress     int             `json:"progress"`
	Attempts     int             `json:"attempts"`
	ObjectKey    string          `json:"object_key,omitempty"`
	ResultURL    *string         `json:"result_url,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
}

// Done reports whether the job reached a terminal state.
func (j *ExportJob) Done() bool {
	return j.Status == ExportStatusFinished || j.Status == ExportStatusFailed
}
