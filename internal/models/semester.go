package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var semesterYearPattern = regexp.MustCompile(`\d{4}`)

// Period is an inclusive calendar date range.
type Period struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// SemesterKey orders semesters: by year, summer before winter.
type SemesterKey struct {
	Year   int  `json:"year"`
	Winter bool `json:"winter"`
}

// ParseSemesterKey extracts the key from names such as "Wintersemester 2024/25".
func ParseSemesterKey(name string) (SemesterKey, bool) {
	match := semesterYearPattern.FindString(name)
	if match == "" {
		return SemesterKey{}, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return SemesterKey{}, false
	}
	return SemesterKey{Year: year, Winter: strings.Contains(name, "Winter")}, true
}

// CanonicalSemesterName normalises a scraped semester label.
func CanonicalSemesterName(name string) (string, bool) {
	key, ok := ParseSemesterKey(name)
	if !ok {
		return "", false
	}
	return key.Name(), true
}

// Name renders the canonical German semester label.
func (k SemesterKey) Name() string {
	if k.Winter {
		return fmt.Sprintf("Wintersemester %d/%02d", k.Year, (k.Year+1)%100)
	}
	return fmt.Sprintf("Sommersemester %d", k.Year)
}

// Less reports whether k is earlier than other.
func (k SemesterKey) Less(other SemesterKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return !k.Winter && other.Winter
}

// After reports whether k is strictly later than other.
func (k SemesterKey) After(other SemesterKey) bool {
	return other.Less(k)
}

// IsZero reports whether the key is unset.
func (k SemesterKey) IsZero() bool {
	return k.Year == 0 && !k.Winter
}

// Next returns the following semester.
func (k SemesterKey) Next() SemesterKey {
	if k.Winter {
		return SemesterKey{Year: k.Year + 1}
	}
	return SemesterKey{Year: k.Year, Winter: true}
}

// FirstGroupSize is the number of exam blocks before the project week.
func (k SemesterKey) FirstGroupSize() int {
	if k.Winter {
		return 2
	}
	return 1
}

// SemesterPeriod is a stored lecture period with its optional project week.
type SemesterPeriod struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Year         int        `db:"year" json:"year"`
	Winter       bool       `db:"winter" json:"winter"`
	LectureStart time.Time  `db:"lecture_start" json:"lecture_start"`
	LectureEnd   time.Time  `db:"lecture_end" json:"lecture_end"`
	HIPStart     *time.Time `db:"hip_start" json:"hip_start,omitempty"`
	HIPEnd       *time.Time `db:"hip_end" json:"hip_end,omitempty"`
	Source       string     `db:"source" json:"source"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Key returns the ordering key of the stored period.
func (p SemesterPeriod) Key() SemesterKey {
	return SemesterKey{Year: p.Year, Winter: p.Winter}
}
