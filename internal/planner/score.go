package planner

// Weights tune the candidate score. Correctness penalties must dominate the
// buffer terms; the placement shift is only a tie-breaker and not scored.
// BufferImbalance only applies while proposing a project week.
type Weights struct {
	EasterWeek         int `json:"easter_week"`
	ShortLecturePeriod int `json:"short_lecture_period"`
	BufferDeviation    int `json:"buffer_deviation"`
	BufferImbalance    int `json:"buffer_imbalance"`
	LeadGap            int `json:"lead_gap"`
}

// DefaultWeights are the production weights.
var DefaultWeights = Weights{
	EasterWeek:         1000,
	ShortLecturePeriod: 500,
	BufferDeviation:    50,
	BufferImbalance:    1,
	LeadGap:            250,
}

// Evaluation is the date-free summary of one candidate.
type Evaluation struct {
	EasterWeek      bool
	LectureWeeks    int
	MinLectureWeeks int
	WeeksBeforeHIP  int
	WeeksAfterHIP   int
	TargetBuffer    int
	// LeadGapWeeks is how far the first block group ends before the nominal
	// first lecture week.
	LeadGapWeeks int
}

// Placement returns the weights used around a fixed project week, where the
// balance between both buffers is not scored.
func (w Weights) Placement() Weights {
	w.BufferImbalance = 0
	return w
}

// Score returns the penalty of a candidate; lower is better.
func (w Weights) Score(e Evaluation) int {
	score := 0
	if e.EasterWeek {
		score += w.EasterWeek
	}
	if e.LectureWeeks < e.MinLectureWeeks {
		score += w.ShortLecturePeriod
	}
	score += w.BufferDeviation * (abs(e.TargetBuffer-e.WeeksBeforeHIP) + abs(e.TargetBuffer-e.WeeksAfterHIP))
	score += w.BufferImbalance * abs(e.WeeksBeforeHIP-e.WeeksAfterHIP)
	if e.LeadGapWeeks > 1 {
		score += w.LeadGap
	}
	return score
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
