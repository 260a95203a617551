package models

import "time"

// ViolationCode names a scheduling rule breach.
type ViolationCode string

const (
	ViolationLectureWeeks ViolationCode = "LECTURE_WEEKS"
	ViolationBufferBefore ViolationCode = "BUFFER_BEFORE_HIP"
	ViolationBufferAfter  ViolationCode = "BUFFER_AFTER_HIP"
	ViolationEasterWeek   ViolationCode = "EASTER_WEEK"
)

// Violation is advisory and never alters the selected schedule.
type Violation struct {
	Code      ViolationCode `json:"code"`
	Message   string        `json:"message"`
	Actual    int           `json:"actual"`
	Threshold int           `json:"threshold"`
}

// ScheduleStats are derived per candidate placement.
type ScheduleStats struct {
	LectureWeeks   int `json:"lecture_weeks"`
	WeeksBeforeHIP int `json:"weeks_before_hip"`
	WeeksAfterHIP  int `json:"weeks_after_hip"`
}

// HolidayHit records a holiday that displaced an exam day.
type HolidayHit struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

// Holiday is a public holiday entry exposed by the calendar API.
type Holiday struct {
	Date    time.Time `json:"date"`
	Name    string    `json:"name"`
	Weekday string    `json:"weekday"`
}

// SchoolHoliday is a named NRW school holiday range.
type SchoolHoliday struct {
	Year  int       `json:"year" yaml:"year"`
	Name  string    `json:"name" yaml:"name"`
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// ExamBlock is one resolved examination week.
type ExamBlock struct {
	Label    string       `json:"label"`
	Number   int          `json:"number"`
	Monday   time.Time    `json:"monday"`
	Start    time.Time    `json:"start"`
	End      time.Time    `json:"end"`
	Days     []time.Time  `json:"days"`
	Holidays []HolidayHit `json:"holidays,omitempty"`
	Notes    []string     `json:"notes,omitempty"`
	HIP      bool         `json:"hip"`
}

// SemesterPlan is the selected placement for a single semester.
type SemesterPlan struct {
	Name       string        `json:"name"`
	Key        SemesterKey   `json:"key"`
	Proposal   bool          `json:"proposal"`
	Lecture    Period        `json:"lecture"`
	HIP        Period        `json:"hip"`
	Blocks     []ExamBlock   `json:"blocks"`
	Stats      ScheduleStats `json:"stats"`
	Violations []Violation   `json:"violations"`
	Score      int           `json:"score"`
	Shift      int           `json:"shift"`
	Holidays   []Holiday     `json:"holidays,omitempty"`
}

// ExamPlan is the result of one planning run across semesters.
type ExamPlan struct {
	GeneratedAt    time.Time       `json:"generated_at"`
	Boundary       SemesterKey     `json:"boundary"`
	HorizonYears   int             `json:"horizon_years"`
	Semesters      []SemesterPlan  `json:"semesters"`
	SchoolHolidays []SchoolHoliday `json:"school_holidays,omitempty"`
}

// Semester looks up a plan entry by canonical name.
func (p *ExamPlan) Semester(name string) (*SemesterPlan, bool) {
	if p == nil {
		return nil, false
	}
	for i := range p.Semesters {
		if p.Semesters[i].Name == name {
			return &p.Semesters[i], true
		}
	}
	return nil, false
}
