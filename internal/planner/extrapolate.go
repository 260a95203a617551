package planner

import (
	"sort"
	"time"

	"github.com/noah-isme/exam-period-api/internal/models"
)

// Anchors for synthesized lecture periods.
const (
	summerStartISOWeek = 12
	winterStartISOWeek = 39
	summerLectureDays  = 17*7 + 4
	winterLectureDays  = 19*7 + 4
	hipDurationDays    = 4
)

// Extrapolator fills missing project weeks and synthesizes future semesters.
type Extrapolator struct {
	optimizer *Optimizer
	now       func() time.Time
}

// NewExtrapolator builds an extrapolator. now defaults to time.Now.
func NewExtrapolator(optimizer *Optimizer, now func() time.Time) *Extrapolator {
	if now == nil {
		now = time.Now
	}
	return &Extrapolator{optimizer: optimizer, now: now}
}

// Extrapolate mutates lectures and hips in place and returns the names of
// semesters that received a new lecture period or project week, in semester
// order. Semesters at or before boundary use the fixed project week rule,
// later ones get a proposal from the optimizer. Repeated calls with the same
// clock, boundary and horizon add nothing.
func (e *Extrapolator) Extrapolate(lectures, hips map[string]models.Period, boundary models.SemesterKey, horizonYears int) []string {
	added := make(map[string]models.SemesterKey)

	for name, lecture := range lectures {
		if _, ok := hips[name]; ok {
			continue
		}
		key, ok := models.ParseSemesterKey(name)
		if !ok {
			continue
		}
		hips[name] = e.hipFor(key, lecture, boundary)
		added[name] = key
	}

	cur := models.SemesterKey{Year: e.now().Year()}
	if last, ok := lastKey(lectures); ok {
		cur = last
	}
	targetYear := e.now().Year() + horizonYears

	for cur.Year <= targetYear {
		cur = cur.Next()
		name := cur.Name()
		lecture, ok := lectures[name]
		if !ok {
			lecture = SynthesizeLecturePeriod(cur)
			lectures[name] = lecture
			added[name] = cur
		}
		if _, ok := hips[name]; !ok {
			hips[name] = e.hipFor(cur, lecture, boundary)
			added[name] = cur
		}
	}

	names := make([]string, 0, len(added))
	for name := range added {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return added[names[i]].Less(added[names[j]]) })
	return names
}

func (e *Extrapolator) hipFor(key models.SemesterKey, lecture models.Period, boundary models.SemesterKey) models.Period {
	var monday time.Time
	if !key.After(boundary) {
		monday = e.optimizer.FixedHIP(key.Winter, lecture)
	} else {
		monday, _ = e.optimizer.ProposeHIP(key.Winter, lecture)
	}
	return models.Period{Start: monday, End: monday.AddDate(0, 0, hipDurationDays)}
}

// SynthesizeLecturePeriod derives a lecture period from the ISO week anchors:
// summer starts in week 12, winter in week 39.
func SynthesizeLecturePeriod(key models.SemesterKey) models.Period {
	var (
		start    time.Time
		minWeek  int
		duration int
	)
	if key.Winter {
		start, minWeek, duration = Date(key.Year, time.September, 20), winterStartISOWeek, winterLectureDays
	} else {
		start, minWeek, duration = Date(key.Year, time.March, 10), summerStartISOWeek, summerLectureDays
	}
	for {
		_, week := start.ISOWeek()
		if week >= minWeek && start.Weekday() == time.Monday {
			break
		}
		start = start.AddDate(0, 0, 1)
	}
	return models.Period{Start: start, End: start.AddDate(0, 0, duration)}
}

// BoundaryOf returns the latest semester present in the scraped project
// weeks, or the zero key when there are none.
func BoundaryOf(hips map[string]models.Period) models.SemesterKey {
	key, _ := lastKey(hips)
	return key
}

func lastKey(periods map[string]models.Period) (models.SemesterKey, bool) {
	var (
		last  models.SemesterKey
		found bool
	)
	for name := range periods {
		key, ok := models.ParseSemesterKey(name)
		if !ok {
			continue
		}
		if !found || last.Less(key) {
			last, found = key, true
		}
	}
	return last, found
}
