package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/exam-period-api/internal/models"
)

//go:embed default_calendar.yaml
var defaultCalendar []byte

// CalendarRules are the closure and holiday tables used by the planner and
// the exporters.
type CalendarRules struct {
	Rosenmontag    bool
	ChristmasEve   bool
	NewYearsEve    bool
	Extra          map[time.Time]string
	KnownHIPWeeks  map[string]models.Period
	SchoolHolidays []models.SchoolHoliday
}

type calendarFile struct {
	Closures struct {
		Rosenmontag  *bool `yaml:"rosenmontag"`
		ChristmasEve *bool `yaml:"christmas_eve"`
		NewYearsEve  *bool `yaml:"new_years_eve"`
	} `yaml:"closures"`
	Extra []struct {
		Date time.Time `yaml:"date"`
		Name string    `yaml:"name"`
	} `yaml:"extra"`
	KnownHIPWeeks  map[string]models.Period `yaml:"known_hip_weeks"`
	SchoolHolidays []models.SchoolHoliday   `yaml:"school_holidays"`
}

// LoadCalendar reads calendar rules from path, or the built-in rules when
// path is empty.
func LoadCalendar(path string) (*CalendarRules, error) {
	data := defaultCalendar
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read calendar file: %w", err)
		}
		data = raw
	}
	return ParseCalendar(data)
}

// ParseCalendar decodes YAML calendar rules. Closure toggles default to on.
func ParseCalendar(data []byte) (*CalendarRules, error) {
	var file calendarFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse calendar file: %w", err)
	}

	rules := &CalendarRules{
		Rosenmontag:    boolOr(file.Closures.Rosenmontag, true),
		ChristmasEve:   boolOr(file.Closures.ChristmasEve, true),
		NewYearsEve:    boolOr(file.Closures.NewYearsEve, true),
		Extra:          make(map[time.Time]string, len(file.Extra)),
		KnownHIPWeeks:  make(map[string]models.Period, len(file.KnownHIPWeeks)),
		SchoolHolidays: make([]models.SchoolHoliday, 0, len(file.SchoolHolidays)),
	}
	for _, e := range file.Extra {
		if e.Date.IsZero() {
			return nil, fmt.Errorf("extra closure %q has no date", e.Name)
		}
		rules.Extra[utcDay(e.Date)] = e.Name
	}
	for name, period := range file.KnownHIPWeeks {
		canonical, ok := models.CanonicalSemesterName(name)
		if !ok {
			return nil, fmt.Errorf("known HIP week: unrecognised semester %q", name)
		}
		if period.End.Before(period.Start) {
			return nil, fmt.Errorf("known HIP week %q ends before it starts", name)
		}
		rules.KnownHIPWeeks[canonical] = models.Period{Start: utcDay(period.Start), End: utcDay(period.End)}
	}
	for _, h := range file.SchoolHolidays {
		h.Start, h.End = utcDay(h.Start), utcDay(h.End)
		rules.SchoolHolidays = append(rules.SchoolHolidays, h)
	}
	sort.Slice(rules.SchoolHolidays, func(i, j int) bool {
		return rules.SchoolHolidays[i].Start.Before(rules.SchoolHolidays[j].Start)
	})
	return rules, nil
}

// SchoolHolidaysBetween lists school holidays overlapping [from, to].
func (r *CalendarRules) SchoolHolidaysBetween(from, to time.Time) []models.SchoolHoliday {
	result := make([]models.SchoolHoliday, 0)
	if r == nil {
		return result
	}
	for _, h := range r.SchoolHolidays {
		if h.End.Before(from) || h.Start.After(to) {
			continue
		}
		result = append(result, h)
	}
	return result
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func utcDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
