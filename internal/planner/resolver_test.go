package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExamDaysMondayHoliday(t *testing.T) {
	holidays := NewCalendar(DefaultRules()).Holidays(2024)

	days, hits := ResolveExamDays(Date(2024, time.May, 20), holidays, DaySet{})

	require.Len(t, days, 5)
	assert.Equal(t, Date(2024, time.May, 17), days[0])
	assert.NotContains(t, days, Date(2024, time.May, 20))
	require.Len(t, hits, 1)
	assert.Equal(t, "Pfingstmontag", hits[0].Name)
}

func TestResolveExamDaysMidweekHoliday(t *testing.T) {
	holidays := NewCalendar(DefaultRules()).Holidays(2024)

	days, hits := ResolveExamDays(Date(2024, time.April, 29), holidays, DaySet{})

	assert.Equal(t, []time.Time{
		Date(2024, time.April, 26),
		Date(2024, time.April, 29),
		Date(2024, time.April, 30),
		Date(2024, time.May, 2),
		Date(2024, time.May, 3),
	}, days)
	require.Len(t, hits, 1)
	assert.Equal(t, Date(2024, time.May, 1), hits[0].Date)
}

func TestResolveExamDaysSkipsClaimedWithoutHit(t *testing.T) {
	holidays := NewCalendar(DefaultRules()).Holidays(2024)
	claimed := DaySet{}
	claimed.Add(Date(2024, time.April, 29))

	days, hits := ResolveExamDays(Date(2024, time.April, 29), holidays, claimed)

	assert.Equal(t, []time.Time{
		Date(2024, time.April, 25),
		Date(2024, time.April, 26),
		Date(2024, time.April, 30),
		Date(2024, time.May, 2),
		Date(2024, time.May, 3),
	}, days)
	assert.Len(t, hits, 1)
}

func TestResolveExamDaysBoundedLookback(t *testing.T) {
	monday := Date(2024, time.June, 17)
	closed := HolidaySet{}
	for d := monday.AddDate(0, 0, -14); d.Before(monday.AddDate(0, 0, 5)); d = d.AddDate(0, 0, 1) {
		closed[d] = "Closure"
	}

	days, hits := Resolver{MaxLookbackDays: 7}.Resolve(monday, closed, DaySet{})

	assert.Empty(t, days)
	assert.Len(t, hits, 10)
}

func TestResolveBlocksClaimsInReverseOrder(t *testing.T) {
	holidays := NewCalendar(DefaultRules()).Holidays(2028)
	blocks := []time.Time{
		Date(2028, time.September, 25),
		Date(2028, time.October, 2),
		Date(2028, time.November, 27),
		Date(2029, time.February, 5),
	}

	resolved := Resolver{}.ResolveBlocks(blocks, holidays)

	require.Len(t, resolved, 4)
	assert.Contains(t, resolved[1].Days, Date(2028, time.September, 29), "P1b backfills the Friday before")
	assert.NotContains(t, resolved[1].Days, Date(2028, time.October, 3))
	assert.Contains(t, resolved[0].Days, Date(2028, time.September, 22))
	assert.NotContains(t, resolved[0].Days, Date(2028, time.September, 29))
	for i, b := range resolved {
		assert.Equal(t, blocks[i], b.Monday)
		assert.Len(t, b.Days, 5)
	}
}

func TestResolveBlocksInvariants(t *testing.T) {
	cal := NewCalendar(DefaultRules())
	semesters := [][]time.Time{
		{Date(2024, time.March, 18), Date(2024, time.May, 13), Date(2024, time.July, 8)},
		{Date(2024, time.April, 1), Date(2024, time.April, 29), Date(2024, time.May, 20)},
		{Date(2024, time.September, 23), Date(2024, time.September, 30), Date(2024, time.November, 25), Date(2025, time.February, 3)},
		{Date(2024, time.December, 16), Date(2024, time.December, 23), Date(2024, time.December, 30), Date(2025, time.January, 6)},
	}
	for _, blocks := range semesters {
		holidays := cal.Holidays(blocks[0].Year())
		seen := DaySet{}
		for _, b := range (Resolver{}).ResolveBlocks(blocks, holidays) {
			for _, d := range b.Days {
				assert.False(t, seen.Has(d), "day %s claimed twice", d.Format("2006-01-02"))
				assert.False(t, holidays.Contains(d), "holiday %s used for exams", d.Format("2006-01-02"))
				assert.False(t, IsWeekend(d))
				seen.Add(d)
			}
		}
	}
}
