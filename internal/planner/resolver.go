package planner

import (
	"sort"
	"time"

	"github.com/noah-isme/exam-period-api/internal/models"
)

// DefaultMaxLookbackDays bounds the backward search for replacement exam days.
const DefaultMaxLookbackDays = 21

// ExamDaysPerBlock is the target number of exam days in one block.
const ExamDaysPerBlock = 5

// DaySet is a set of calendar days.
type DaySet map[time.Time]struct{}

// Add inserts the given days.
func (s DaySet) Add(days ...time.Time) {
	for _, d := range days {
		s[Truncate(d)] = struct{}{}
	}
}

// Has reports membership of d.
func (s DaySet) Has(d time.Time) bool {
	_, ok := s[Truncate(d)]
	return ok
}

// ResolvedBlock holds the concrete exam days of a block week.
type ResolvedBlock struct {
	Monday   time.Time
	Days     []time.Time
	Holidays []models.HolidayHit
}

// First returns the earliest exam day, or the Monday when the block is empty.
func (b ResolvedBlock) First() time.Time {
	if len(b.Days) == 0 {
		return b.Monday
	}
	return b.Days[0]
}

// Last returns the latest exam day, or the Friday when the block is empty.
func (b ResolvedBlock) Last() time.Time {
	if len(b.Days) == 0 {
		return b.Monday.AddDate(0, 0, 4)
	}
	return b.Days[len(b.Days)-1]
}

// Resolver turns block Mondays into exam days.
type Resolver struct {
	MaxLookbackDays int
}

// ResolveExamDays resolves a single block with the default lookback.
func ResolveExamDays(monday time.Time, holidays HolidaySet, claimed DaySet) ([]time.Time, []models.HolidayHit) {
	return Resolver{}.Resolve(monday, holidays, claimed)
}

// Resolve keeps the free working days of the week and backfills the missing
// ones from the days before monday. Claimed days are never reused and
// holidays are recorded as hits.
func (r Resolver) Resolve(monday time.Time, holidays HolidaySet, claimed DaySet) ([]time.Time, []models.HolidayHit) {
	monday = Truncate(monday)
	lookback := r.MaxLookbackDays
	if lookback <= 0 {
		lookback = DefaultMaxLookbackDays
	}

	days := make([]time.Time, 0, ExamDaysPerBlock)
	hits := make([]models.HolidayHit, 0)

	for _, d := range WorkingDays(monday) {
		if name, ok := holidays.Name(d); ok {
			hits = append(hits, models.HolidayHit{Date: d, Name: name})
			continue
		}
		if claimed.Has(d) {
			continue
		}
		days = append(days, d)
	}

	limit := monday.AddDate(0, 0, -lookback)
	for cursor := monday.AddDate(0, 0, -1); len(days) < ExamDaysPerBlock && !cursor.Before(limit); cursor = cursor.AddDate(0, 0, -1) {
		if IsWeekend(cursor) {
			continue
		}
		if name, ok := holidays.Name(cursor); ok {
			hits = append(hits, models.HolidayHit{Date: cursor, Name: name})
			continue
		}
		if claimed.Has(cursor) {
			continue
		}
		days = append(days, cursor)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	sort.Slice(hits, func(i, j int) bool { return hits[i].Date.Before(hits[j].Date) })
	return days, hits
}

// ResolveBlocks resolves all blocks of a semester. Later blocks claim their
// days first so earlier blocks backfill around them. The result keeps the
// order of mondays.
func (r Resolver) ResolveBlocks(mondays []time.Time, holidays HolidaySet) []ResolvedBlock {
	resolved := make([]ResolvedBlock, len(mondays))
	claimed := make(DaySet)
	for i := len(mondays) - 1; i >= 0; i-- {
		days, hits := r.Resolve(mondays[i], holidays, claimed)
		claimed.Add(days...)
		resolved[i] = ResolvedBlock{Monday: Truncate(mondays[i]), Days: days, Holidays: hits}
	}
	return resolved
}

// ClaimedDays collects the exam days of all blocks.
func ClaimedDays(blocks []ResolvedBlock) DaySet {
	set := make(DaySet)
	for _, b := range blocks {
		set.Add(b.Days...)
	}
	return set
}
