package dto

// ExamPlanQuery selects the planning horizon and an optional single semester.
type ExamPlanQuery struct {
	HorizonYears *int   `form:"horizon" json:"horizon_years,omitempty" validate:"omitempty,min=0,max=10"`
	Semester     string `form:"semester" json:"semester,omitempty" validate:"omitempty,max=64"`
}

// HolidayResponse lists the weekday holidays of a year.
type HolidayResponse struct {
	Year     int            `json:"year"`
	Holidays []HolidayEntry `json:"holidays"`
}

// HolidayEntry is a single weekday holiday.
type HolidayEntry struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Name    string `json:"name"`
}
