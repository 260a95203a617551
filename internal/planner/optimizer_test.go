package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-period-api/internal/models"
)

func newTestOptimizer() *Optimizer {
	return NewOptimizer(DefaultConfig(), NewCalendar(DefaultRules()))
}

func TestOptimizeSummerKeepsNominalPlacement(t *testing.T) {
	lecture := models.Period{Start: Date(2024, time.March, 18), End: Date(2024, time.July, 12)}

	result := newTestOptimizer().Optimize(false, lecture, Date(2024, time.May, 13))

	assert.Equal(t, []time.Time{Date(2024, time.March, 18), Date(2024, time.May, 13), Date(2024, time.July, 8)}, result.Blocks)
	assert.Zero(t, result.Score)
	assert.Zero(t, result.Shift)
	assert.Empty(t, result.Violations)
	require.Len(t, result.Resolved, 3)
}

func TestOptimizeWinter(t *testing.T) {
	lecture := models.Period{Start: Date(2024, time.September, 23), End: Date(2025, time.February, 7)}

	result := newTestOptimizer().Optimize(true, lecture, Date(2024, time.November, 25))

	assert.Equal(t, []time.Time{
		Date(2024, time.September, 23),
		Date(2024, time.September, 30),
		Date(2024, time.November, 25),
		Date(2025, time.February, 3),
	}, result.Blocks)
	assert.Equal(t, models.ScheduleStats{LectureWeeks: 14, WeeksBeforeHIP: 7, WeeksAfterHIP: 7}, result.Stats)
	assert.Zero(t, result.Score)
}

func TestOptimizeAvoidsEasterWeek(t *testing.T) {
	lecture := models.Period{Start: Date(2024, time.April, 1), End: Date(2024, time.July, 26)}

	result := newTestOptimizer().Optimize(false, lecture, Date(2024, time.May, 27))

	for _, b := range result.Blocks {
		assert.False(t, IsEasterWeek(b), "block %s in Easter week", b.Format("2006-01-02"))
	}
	for _, v := range result.Violations {
		assert.NotEqual(t, models.ViolationEasterWeek, v.Code)
	}
}

func TestOptimizeTieBreaksOnSmallestShift(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = Weights{EasterWeek: 1}
	opt := NewOptimizer(cfg, NewCalendar(DefaultRules()))
	lecture := models.Period{Start: Date(2024, time.October, 7), End: Date(2025, time.February, 21)}

	result := opt.Optimize(true, lecture, Date(2024, time.December, 2))

	assert.Zero(t, result.Score)
	assert.Zero(t, result.Shift)
	assert.Equal(t, Date(2024, time.October, 7), result.Blocks[0])
	assert.Equal(t, Date(2025, time.February, 17), result.Blocks[3])
}

func TestOptimizeReportsViolationsForBestCandidate(t *testing.T) {
	lecture := models.Period{Start: Date(2024, time.March, 18), End: Date(2024, time.June, 14)}

	result := newTestOptimizer().Optimize(false, lecture, Date(2024, time.April, 29))

	require.NotEmpty(t, result.Violations)
	assert.Greater(t, result.Score, 0)
}

func TestProposeHIP(t *testing.T) {
	opt := newTestOptimizer()

	summer, result := opt.ProposeHIP(false, models.Period{Start: Date(2024, time.March, 18), End: Date(2024, time.July, 12)})
	assert.Equal(t, Date(2024, time.May, 13), summer)
	assert.Zero(t, result.Score)

	winter, _ := opt.ProposeHIP(true, models.Period{Start: Date(2024, time.September, 23), End: Date(2025, time.February, 7)})
	assert.Equal(t, Date(2024, time.November, 25), winter)
}

func TestFixedHIP(t *testing.T) {
	opt := newTestOptimizer()

	assert.Equal(t, Date(2024, time.May, 13), opt.FixedHIP(false, models.Period{Start: Date(2024, time.March, 18)}))
	assert.Equal(t, Date(2024, time.November, 25), opt.FixedHIP(true, models.Period{Start: Date(2024, time.September, 23)}))
}

func TestConfigNormalized(t *testing.T) {
	cfg := Config{ShiftMin: 2, ShiftMax: -1, BufferMin: 9, BufferMax: 6}.normalized()

	assert.Equal(t, -1, cfg.ShiftMin)
	assert.Equal(t, 2, cfg.ShiftMax)
	assert.Equal(t, 6, cfg.BufferMin)
	assert.Equal(t, []int{0}, cfg.LastBlockOffsets)
	assert.Equal(t, DefaultWeights, cfg.Weights)
	assert.Equal(t, DefaultMaxLookbackDays, cfg.MaxLookbackDays)
}
