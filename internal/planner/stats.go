package planner

import (
	"fmt"
	"time"

	"github.com/noah-isme/exam-period-api/internal/models"
)

// Default thresholds of the examination regulations.
const (
	DefaultMinLectureWeeks = 13
	DefaultTargetBuffer    = 7
)

// Thresholds are the limits used to derive violations.
type Thresholds struct {
	MinLectureWeeks int
	TargetBuffer    int
}

// DefaultThresholds returns the regulation limits.
func DefaultThresholds() Thresholds {
	return Thresholds{MinLectureWeeks: DefaultMinLectureWeeks, TargetBuffer: DefaultTargetBuffer}
}

// ComputeStats resolves blocks with the default lookback and derives the
// lecture and buffer week counts.
func ComputeStats(blocks []time.Time, winter bool, lectureStart, lectureEnd time.Time, holidays HolidaySet) models.ScheduleStats {
	resolved := Resolver{}.ResolveBlocks(blocks, holidays)
	return StatsFromResolved(resolved, winter, lectureStart, lectureEnd)
}

// StatsFromResolved derives statistics from already resolved blocks. The
// block order is first group (one block in summer, two in winter), HIP, last.
func StatsFromResolved(blocks []ResolvedBlock, winter bool, lectureStart, lectureEnd time.Time) models.ScheduleStats {
	w := weekCounter{
		exam:  ClaimedDays(blocks),
		start: Truncate(lectureStart),
		end:   Truncate(lectureEnd),
	}

	stats := models.ScheduleStats{}
	for cur := MondayOf(w.start); !cur.After(w.end); cur = AddWeeks(cur, 1) {
		if w.isFullLectureWeek(cur) {
			stats.LectureWeeks++
		}
	}

	numFirst := firstGroupSize(winter)
	if len(blocks) < numFirst+2 {
		return stats
	}
	hip := blocks[len(blocks)-2]
	last := blocks[len(blocks)-1]
	stats.WeeksBeforeHIP = w.between(blocks[numFirst-1].Last(), hip.First())
	stats.WeeksAfterHIP = w.between(hip.Last(), last.First())
	return stats
}

type weekCounter struct {
	exam  DaySet
	start time.Time
	end   time.Time
}

// between counts full lecture weeks from the Monday after `after` up to,
// excluding, the Monday of `before`.
func (w weekCounter) between(after, before time.Time) int {
	stop := MondayOf(before)
	count := 0
	for cur := NextMonday(after.AddDate(0, 0, 1)); cur.Before(stop); cur = AddWeeks(cur, 1) {
		if w.isFullLectureWeek(cur) {
			count++
		}
	}
	return count
}

func (w weekCounter) isFullLectureWeek(monday time.Time) bool {
	if IsChristmasWeek(monday) {
		return false
	}
	overlaps := false
	for _, d := range WorkingDays(monday) {
		if w.exam.Has(d) {
			return false
		}
		if !d.Before(w.start) && !d.After(w.end) {
			overlaps = true
		}
	}
	return overlaps
}

// Violations lists the rule breaches of a placement.
func Violations(stats models.ScheduleStats, blocks []time.Time, t Thresholds) []models.Violation {
	if t.MinLectureWeeks <= 0 {
		t.MinLectureWeeks = DefaultMinLectureWeeks
	}
	if t.TargetBuffer <= 0 {
		t.TargetBuffer = DefaultTargetBuffer
	}

	violations := make([]models.Violation, 0)
	if stats.LectureWeeks < t.MinLectureWeeks {
		violations = append(violations, models.Violation{
			Code:      models.ViolationLectureWeeks,
			Message:   fmt.Sprintf("Vorlesungswochen < %d (%d)", t.MinLectureWeeks, stats.LectureWeeks),
			Actual:    stats.LectureWeeks,
			Threshold: t.MinLectureWeeks,
		})
	}
	if stats.WeeksBeforeHIP < t.TargetBuffer {
		violations = append(violations, models.Violation{
			Code:      models.ViolationBufferBefore,
			Message:   fmt.Sprintf("Wochen vor HIP < %d (%d)", t.TargetBuffer, stats.WeeksBeforeHIP),
			Actual:    stats.WeeksBeforeHIP,
			Threshold: t.TargetBuffer,
		})
	}
	if stats.WeeksAfterHIP < t.TargetBuffer {
		violations = append(violations, models.Violation{
			Code:      models.ViolationBufferAfter,
			Message:   fmt.Sprintf("Wochen nach HIP < %d (%d)", t.TargetBuffer, stats.WeeksAfterHIP),
			Actual:    stats.WeeksAfterHIP,
			Threshold: t.TargetBuffer,
		})
	}
	for _, monday := range blocks {
		if IsEasterWeek(monday) {
			violations = append(violations, models.Violation{
				Code:    models.ViolationEasterWeek,
				Message: fmt.Sprintf("Prüfung in Osterwoche (%s)", Truncate(monday).Format("02.01.2006")),
			})
			break
		}
	}
	return violations
}

func firstGroupSize(winter bool) int {
	return models.SemesterKey{Winter: winter}.FirstGroupSize()
}
