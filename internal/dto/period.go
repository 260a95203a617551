package dto

// UpsertPeriodRequest captures PUT /periods payload. Dates use YYYY-MM-DD.
type UpsertPeriodRequest struct {
	Name         string  `json:"name" validate:"required,max=64"`
	LectureStart string  `json:"lecture_start" validate:"required,datetime=2006-01-02"`
	LectureEnd   string  `json:"lecture_end" validate:"required,datetime=2006-01-02"`
	HIPStart     *string `json:"hip_start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	HIPEnd       *string `json:"hip_end,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// PeriodSyncResponse summarises a scrape-and-store run.
type PeriodSyncResponse struct {
	Semesters []string `json:"semesters"`
	Lectures  int      `json:"lectures"`
	HIPs      int      `json:"hips"`
}
