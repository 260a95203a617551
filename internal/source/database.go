package source

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/exam-period-api/internal/models"
)

type periodLister interface {
	List(ctx context.Context) ([]models.SemesterPeriod, error)
}

// Database serves periods stored through the period admin API.
type Database struct {
	repo periodLister
}

// NewDatabase wraps a period repository.
func NewDatabase(repo periodLister) *Database {
	return &Database{repo: repo}
}

// FetchPeriods loads all stored semesters.
func (d *Database) FetchPeriods(ctx context.Context) (Periods, error) {
	rows, err := d.repo.List(ctx)
	if err != nil {
		return Periods{}, fmt.Errorf("list stored periods: %w", err)
	}
	return FromSemesterPeriods(rows), nil
}

// FromSemesterPeriods converts stored rows into period maps.
func FromSemesterPeriods(rows []models.SemesterPeriod) Periods {
	periods := NewPeriods()
	for _, row := range rows {
		name := row.Key().Name()
		periods.Lectures[name] = utcPeriod(models.Period{Start: row.LectureStart, End: row.LectureEnd})
		if row.HIPStart != nil && row.HIPEnd != nil {
			periods.HIPs[name] = utcPeriod(models.Period{Start: *row.HIPStart, End: *row.HIPEnd})
		}
	}
	return periods
}

// ToSemesterPeriods converts period maps into rows for persistence.
func ToSemesterPeriods(p Periods, origin string) []models.SemesterPeriod {
	rows := make([]models.SemesterPeriod, 0, len(p.Lectures))
	for _, name := range sortedKeys(toSet(p.Lectures)) {
		key, _ := models.ParseSemesterKey(name)
		lecture := p.Lectures[name]
		row := models.SemesterPeriod{
			Name:         key.Name(),
			Year:         key.Year,
			Winter:       key.Winter,
			LectureStart: lecture.Start,
			LectureEnd:   lecture.End,
			Source:       origin,
		}
		if hip, ok := p.HIPs[name]; ok {
			start, end := hip.Start, hip.End
			row.HIPStart, row.HIPEnd = &start, &end
		}
		rows = append(rows, row)
	}
	return rows
}

func toSet(m map[string]models.Period) map[string]struct{} {
	set := make(map[string]struct{}, len(m))
	for k := range m {
		set[k] = struct{}{}
	}
	return set
}

// sortedKeys returns parseable semester names in semester order.
func sortedKeys(set map[string]struct{}) []string {
	type entry struct {
		name string
		key  models.SemesterKey
	}
	entries := make([]entry, 0, len(set))
	for name := range set {
		key, ok := models.ParseSemesterKey(name)
		if !ok {
			continue
		}
		entries = append(entries, entry{name: name, key: key})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key.Less(entries[j].key) })
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

func utcPeriod(p models.Period) models.Period {
	return models.Period{Start: utcDay(p.Start), End: utcDay(p.End)}
}

func utcDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
