package planner

import (
	"time"

	"github.com/noah-isme/exam-period-api/internal/models"
)

// Config holds the search windows and thresholds of the optimizer.
type Config struct {
	ShiftMin         int     `json:"shift_min"`
	ShiftMax         int     `json:"shift_max"`
	LastBlockOffsets []int   `json:"last_block_offsets"`
	BufferMin        int     `json:"buffer_min"`
	BufferMax        int     `json:"buffer_max"`
	TargetBuffer     int     `json:"target_buffer"`
	MinLectureWeeks  int     `json:"min_lecture_weeks"`
	MaxLookbackDays  int     `json:"max_lookback_days"`
	Weights          Weights `json:"weights"`
}

// DefaultConfig returns the empirically tuned search windows.
func DefaultConfig() Config {
	return Config{
		ShiftMin:         -2,
		ShiftMax:         2,
		LastBlockOffsets: []int{0, 1},
		BufferMin:        6,
		BufferMax:        10,
		TargetBuffer:     DefaultTargetBuffer,
		MinLectureWeeks:  DefaultMinLectureWeeks,
		MaxLookbackDays:  DefaultMaxLookbackDays,
		Weights:          DefaultWeights,
	}
}

func (c Config) normalized() Config {
	if c.ShiftMin > c.ShiftMax {
		c.ShiftMin, c.ShiftMax = c.ShiftMax, c.ShiftMin
	}
	if c.BufferMin > c.BufferMax {
		c.BufferMin, c.BufferMax = c.BufferMax, c.BufferMin
	}
	if len(c.LastBlockOffsets) == 0 {
		c.LastBlockOffsets = []int{0}
	}
	if c.TargetBuffer <= 0 {
		c.TargetBuffer = DefaultTargetBuffer
	}
	if c.MinLectureWeeks <= 0 {
		c.MinLectureWeeks = DefaultMinLectureWeeks
	}
	if c.MaxLookbackDays <= 0 {
		c.MaxLookbackDays = DefaultMaxLookbackDays
	}
	if c.Weights == (Weights{}) {
		c.Weights = DefaultWeights
	}
	return c
}

// Result is a scored placement.
type Result struct {
	Blocks     []time.Time
	Resolved   []ResolvedBlock
	Stats      models.ScheduleStats
	Violations []models.Violation
	Score      int
	Shift      int
}

// Optimizer searches block placements for a semester.
type Optimizer struct {
	cfg      Config
	calendar *Calendar
	resolver Resolver
}

// NewOptimizer builds an optimizer over the given calendar.
func NewOptimizer(cfg Config, calendar *Calendar) *Optimizer {
	cfg = cfg.normalized()
	if calendar == nil {
		calendar = NewCalendar(DefaultRules())
	}
	return &Optimizer{cfg: cfg, calendar: calendar, resolver: Resolver{MaxLookbackDays: cfg.MaxLookbackDays}}
}

// Config returns the effective configuration.
func (o *Optimizer) Config() Config {
	return o.cfg
}

// Optimize places the free blocks around a fixed HIP week. Every pairing of
// a first-group shift and a last-block offset is scored; the lowest score
// wins and ties go to the smallest total shift.
func (o *Optimizer) Optimize(winter bool, lecture models.Period, hipMonday time.Time) Result {
	holidays := o.calendar.Holidays(lecture.Start.Year())
	nominalFirst := MondayOf(lecture.Start)
	nominalLast := MondayOf(lecture.End)
	hip := MondayOf(hipMonday)
	numFirst := firstGroupSize(winter)

	var best *Result
	for shift := o.cfg.ShiftMin; shift <= o.cfg.ShiftMax; shift++ {
		for _, offset := range o.cfg.LastBlockOffsets {
			blocks := make([]time.Time, 0, numFirst+2)
			for i := 0; i < numFirst; i++ {
				blocks = append(blocks, AddWeeks(nominalFirst, shift+i))
			}
			blocks = append(blocks, hip, AddWeeks(nominalLast, offset))

			candidate := o.evaluate(blocks, winter, lecture, holidays, o.cfg.Weights.Placement())
			candidate.Shift = abs(shift) + abs(offset)
			if best == nil || candidate.Score < best.Score ||
				(candidate.Score == best.Score && candidate.Shift < best.Shift) {
				c := candidate
				best = &c
			}
		}
	}
	return *best
}

// ProposeHIP picks a project week for a semester without one by trying each
// buffer size after the first block group. Ties keep the smaller buffer.
func (o *Optimizer) ProposeHIP(winter bool, lecture models.Period) (time.Time, Result) {
	holidays := o.calendar.Holidays(lecture.Start.Year())
	nominalFirst := MondayOf(lecture.Start)
	nominalLast := MondayOf(lecture.End)
	numFirst := firstGroupSize(winter)

	var (
		bestHIP time.Time
		best    *Result
	)
	for buffer := o.cfg.BufferMin; buffer <= o.cfg.BufferMax; buffer++ {
		hip := AddWeeks(nominalFirst, numFirst+buffer)
		blocks := make([]time.Time, 0, numFirst+2)
		for i := 0; i < numFirst; i++ {
			blocks = append(blocks, AddWeeks(nominalFirst, i))
		}
		blocks = append(blocks, hip, nominalLast)

		candidate := o.evaluate(blocks, winter, lecture, holidays, o.cfg.Weights)
		if best == nil || candidate.Score < best.Score {
			c := candidate
			best = &c
			bestHIP = hip
		}
	}
	return bestHIP, *best
}

// FixedHIP applies the regulation default of TargetBuffer lecture weeks
// after the first block group.
func (o *Optimizer) FixedHIP(winter bool, lecture models.Period) time.Time {
	return AddWeeks(MondayOf(lecture.Start), firstGroupSize(winter)+o.cfg.TargetBuffer)
}

// Evaluate resolves and scores an explicit placement around its project week.
func (o *Optimizer) Evaluate(blocks []time.Time, winter bool, lecture models.Period, holidays HolidaySet) Result {
	return o.evaluate(blocks, winter, lecture, holidays, o.cfg.Weights.Placement())
}

func (o *Optimizer) evaluate(blocks []time.Time, winter bool, lecture models.Period, holidays HolidaySet, weights Weights) Result {
	resolved := o.resolver.ResolveBlocks(blocks, holidays)
	stats := StatsFromResolved(resolved, winter, lecture.Start, lecture.End)

	easter := false
	for _, b := range blocks {
		if IsEasterWeek(b) {
			easter = true
			break
		}
	}
	leadGap := 0
	if numFirst := firstGroupSize(winter); len(blocks) >= numFirst {
		leadGap = WeeksBetween(blocks[numFirst-1], MondayOf(lecture.Start))
	}

	score := weights.Score(Evaluation{
		EasterWeek:      easter,
		LectureWeeks:    stats.LectureWeeks,
		MinLectureWeeks: o.cfg.MinLectureWeeks,
		WeeksBeforeHIP:  stats.WeeksBeforeHIP,
		WeeksAfterHIP:   stats.WeeksAfterHIP,
		TargetBuffer:    o.cfg.TargetBuffer,
		LeadGapWeeks:    leadGap,
	})

	return Result{
		Blocks:     blocks,
		Resolved:   resolved,
		Stats:      stats,
		Violations: Violations(stats, blocks, Thresholds{MinLectureWeeks: o.cfg.MinLectureWeeks, TargetBuffer: o.cfg.TargetBuffer}),
		Score:      score,
	}
}
