package planner

import (
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/exam-period-api/internal/models"
)

const day = 24 * time.Hour

// Date builds a calendar day at UTC midnight.
func Date(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the clock part of t, keeping its calendar day.
func Truncate(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// MondayOf returns the Monday of the ISO week containing d.
func MondayOf(d time.Time) time.Time {
	d = Truncate(d)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// NextMonday returns d when it is a Monday, otherwise the following Monday.
func NextMonday(d time.Time) time.Time {
	d = Truncate(d)
	if d.Weekday() == time.Monday {
		return d
	}
	return d.AddDate(0, 0, (8-int(d.Weekday()))%7)
}

// AddWeeks shifts d by n weeks.
func AddWeeks(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, 7*n)
}

// WeeksBetween returns the whole weeks from a to b, negative when b is earlier.
func WeeksBetween(a, b time.Time) int {
	return int(Truncate(b).Sub(Truncate(a))/day) / 7
}

// IsWeekend reports Saturday and Sunday.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WorkingDays returns Monday to Friday of the week starting at monday.
func WorkingDays(monday time.Time) [5]time.Time {
	monday = Truncate(monday)
	var days [5]time.Time
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

// EasterSunday computes the Gregorian Easter date.
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	dayOfMonth := (h+l-7*m+114)%31 + 1
	return Date(year, time.Month(month), dayOfMonth)
}

// Weiberfastnacht is the Thursday opening the street carnival.
func Weiberfastnacht(year int) time.Time {
	return EasterSunday(year).AddDate(0, 0, -52)
}

// Rosenmontag is the carnival Monday, a de facto closure day in Cologne.
func Rosenmontag(year int) time.Time {
	return EasterSunday(year).AddDate(0, 0, -48)
}

// IsEasterWeek reports whether monday starts the week containing Easter Monday.
func IsEasterWeek(monday time.Time) bool {
	easterMonday := EasterSunday(monday.Year()).AddDate(0, 0, 1)
	return MondayOf(easterMonday).Equal(Truncate(monday))
}

// IsChristmasWeek reports whether Mon-Fri of the week contains Dec 24-26 or Jan 1.
func IsChristmasWeek(monday time.Time) bool {
	for _, d := range WorkingDays(monday) {
		if d.Month() == time.December && d.Day() >= 24 && d.Day() <= 26 {
			return true
		}
		if d.Month() == time.January && d.Day() == 1 {
			return true
		}
	}
	return false
}

// HolidayWeeksInRange counts Christmas and New Year weeks between two Mondays, inclusive.
func HolidayWeeksInRange(startMonday, endMonday time.Time) int {
	count := 0
	for cur := Truncate(startMonday); !cur.After(Truncate(endMonday)); cur = AddWeeks(cur, 1) {
		if IsChristmasWeek(cur) {
			count++
		}
	}
	return count
}

// HolidaySet maps calendar days to holiday names. Treat it as read-only.
type HolidaySet map[time.Time]string

// Contains reports whether d is a holiday.
func (h HolidaySet) Contains(d time.Time) bool {
	_, ok := h[Truncate(d)]
	return ok
}

// Name returns the holiday name for d.
func (h HolidaySet) Name(d time.Time) (string, bool) {
	name, ok := h[Truncate(d)]
	return name, ok
}

// Weekdays lists the Mon-Fri holidays in [from, to], sorted by date.
func (h HolidaySet) Weekdays(from, to time.Time) []models.Holiday {
	from, to = Truncate(from), Truncate(to)
	result := make([]models.Holiday, 0)
	for d, name := range h {
		if d.Before(from) || d.After(to) || IsWeekend(d) {
			continue
		}
		result = append(result, models.Holiday{Date: d, Name: name, Weekday: WeekdayLabel(d)})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result
}

var weekdayLabels = [...]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"}

// WeekdayLabel returns the German two-letter weekday abbreviation.
func WeekdayLabel(d time.Time) string {
	return weekdayLabels[d.Weekday()]
}

// Rules selects the additions applied on top of the statutory NRW holidays.
type Rules struct {
	Rosenmontag  bool
	ChristmasEve bool
	NewYearsEve  bool
	// Extra closures, for example university-wide bridge days.
	Extra map[time.Time]string
}

// DefaultRules mirrors the closures observed by the faculty.
func DefaultRules() Rules {
	return Rules{Rosenmontag: true, ChristmasEve: true, NewYearsEve: true}
}

// Calendar builds and memoizes holiday sets per year.
type Calendar struct {
	rules Rules

	mu    sync.Mutex
	cache map[int]HolidaySet
}

// NewCalendar constructs a calendar for the given rules.
func NewCalendar(rules Rules) *Calendar {
	extra := make(map[time.Time]string, len(rules.Extra))
	for d, name := range rules.Extra {
		extra[Truncate(d)] = name
	}
	rules.Extra = extra
	return &Calendar{rules: rules, cache: make(map[int]HolidaySet)}
}

// Holidays returns the holidays of year and year+1.
func (c *Calendar) Holidays(year int) HolidaySet {
	c.mu.Lock()
	defer c.mu.Unlock()
	if set, ok := c.cache[year]; ok {
		return set
	}
	set := make(HolidaySet)
	for _, y := range []int{year, year + 1} {
		addStatutory(set, y)
		c.addClosures(set, y)
	}
	c.cache[year] = set
	return set
}

func (c *Calendar) addClosures(set HolidaySet, year int) {
	if c.rules.Rosenmontag {
		set[Rosenmontag(year)] = "Rosenmontag"
	}
	if eve := Date(year, time.December, 24); c.rules.ChristmasEve && !IsWeekend(eve) {
		set[eve] = "Heiligabend"
	}
	if eve := Date(year, time.December, 31); c.rules.NewYearsEve && !IsWeekend(eve) {
		set[eve] = "Silvester"
	}
	for d, name := range c.rules.Extra {
		if d.Year() == year {
			set[d] = name
		}
	}
}

func addStatutory(set HolidaySet, year int) {
	easter := EasterSunday(year)
	set[Date(year, time.January, 1)] = "Neujahr"
	set[easter.AddDate(0, 0, -2)] = "Karfreitag"
	set[easter.AddDate(0, 0, 1)] = "Ostermontag"
	set[Date(year, time.May, 1)] = "Tag der Arbeit"
	set[easter.AddDate(0, 0, 39)] = "Christi Himmelfahrt"
	set[easter.AddDate(0, 0, 50)] = "Pfingstmontag"
	set[easter.AddDate(0, 0, 60)] = "Fronleichnam"
	set[Date(year, time.October, 3)] = "Tag der Deutschen Einheit"
	set[Date(year, time.November, 1)] = "Allerheiligen"
	set[Date(year, time.December, 25)] = "1. Weihnachtstag"
	set[Date(year, time.December, 26)] = "2. Weihnachtstag"
}
