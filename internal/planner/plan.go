package planner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/exam-period-api/internal/models"
)

// Notes attached to plan rows.
const (
	NoteCarnivalWeek = "Karnevalswoche"
	NoteHIPWeek      = "HIP-Woche"
	NoteProposal     = "(Vorschlag)"
)

var (
	summerLabels = []string{"P1", "P2", "P3"}
	winterLabels = []string{"P1a", "P1b", "P2", "P3"}
)

// BlockLabels returns the block labels of a semester in order.
func BlockLabels(winter bool) []string {
	if winter {
		return winterLabels
	}
	return summerLabels
}

// Planner ties calendar, optimizer and extrapolator together.
type Planner struct {
	calendar     *Calendar
	optimizer    *Optimizer
	extrapolator *Extrapolator
}

// New constructs a planner. now defaults to time.Now.
func New(cfg Config, rules Rules, now func() time.Time) *Planner {
	calendar := NewCalendar(rules)
	optimizer := NewOptimizer(cfg, calendar)
	return &Planner{
		calendar:     calendar,
		optimizer:    optimizer,
		extrapolator: NewExtrapolator(optimizer, now),
	}
}

// Calendar exposes the holiday calendar.
func (p *Planner) Calendar() *Calendar {
	return p.calendar
}

// Optimizer exposes the block optimizer.
func (p *Planner) Optimizer() *Optimizer {
	return p.optimizer
}

// Extrapolate delegates to the extrapolator.
func (p *Planner) Extrapolate(lectures, hips map[string]models.Period, boundary models.SemesterKey, horizonYears int) []string {
	return p.extrapolator.Extrapolate(lectures, hips, boundary, horizonYears)
}

// Plan plans every semester of lectures in semester order. A semester
// without a project week gets one by the same rule the extrapolator uses:
// fixed up to boundary, proposed after it. ctx is checked between semesters.
func (p *Planner) Plan(ctx context.Context, lectures, hips map[string]models.Period, boundary models.SemesterKey) ([]models.SemesterPlan, error) {
	names := SortedNames(lectures)
	plans := make([]models.SemesterPlan, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hip, ok := hips[name]
		if !ok {
			key, _ := models.ParseSemesterKey(name)
			hip = p.extrapolator.hipFor(key, lectures[name], boundary)
		}
		plan, err := p.PlanSemester(name, lectures[name], hip, boundary)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// PlanSemester selects the best placement around the given project week and
// renders it as plan rows.
func (p *Planner) PlanSemester(name string, lecture, hip models.Period, boundary models.SemesterKey) (models.SemesterPlan, error) {
	key, ok := models.ParseSemesterKey(name)
	if !ok {
		return models.SemesterPlan{}, fmt.Errorf("unrecognised semester name %q", name)
	}
	lecture = models.Period{Start: Truncate(lecture.Start), End: Truncate(lecture.End)}
	hip = models.Period{Start: Truncate(hip.Start), End: Truncate(hip.End)}
	if lecture.End.Before(lecture.Start) {
		return models.SemesterPlan{}, fmt.Errorf("lecture period of %s ends before it starts", name)
	}

	result := p.optimizer.Optimize(key.Winter, lecture, hip.Start)
	proposal := key.After(boundary)
	target := p.optimizer.Config().TargetBuffer
	numFirst := key.FirstGroupSize()
	labels := BlockLabels(key.Winter)

	blocks := make([]models.ExamBlock, 0, len(result.Resolved))
	for i, rb := range result.Resolved {
		block := models.ExamBlock{
			Label:    labels[i],
			Number:   i + 1,
			Monday:   rb.Monday,
			Start:    rb.First(),
			End:      rb.Last(),
			Days:     rb.Days,
			Holidays: rb.Holidays,
			HIP:      i == len(result.Resolved)-2,
		}
		if touchesCarnival(rb.Days) {
			block.Notes = append(block.Notes, NoteCarnivalWeek)
		}
		if block.HIP {
			note := NoteHIPWeek
			if proposal {
				note += " " + NoteProposal
			}
			block.Notes = append(block.Notes, note)
		}
		if i == numFirst-1 && result.Stats.WeeksBeforeHIP < target {
			block.Notes = append(block.Notes, fmt.Sprintf("Warnung: Puffer vor HIP nur %d Wochen", result.Stats.WeeksBeforeHIP))
		}
		if i == len(result.Resolved)-1 && result.Stats.WeeksAfterHIP < target {
			block.Notes = append(block.Notes, fmt.Sprintf("Warnung: Puffer nach HIP nur %d Wochen", result.Stats.WeeksAfterHIP))
		}
		blocks = append(blocks, block)
	}

	from, to := lecture.Start, lecture.End
	if len(blocks) > 0 {
		if first := blocks[0].Start; first.Before(from) {
			from = first
		}
		if last := blocks[len(blocks)-1].End; last.After(to) {
			to = last
		}
	}

	return models.SemesterPlan{
		Name:       key.Name(),
		Key:        key,
		Proposal:   proposal,
		Lecture:    lecture,
		HIP:        hip,
		Blocks:     blocks,
		Stats:      result.Stats,
		Violations: result.Violations,
		Score:      result.Score,
		Shift:      result.Shift,
		Holidays:   p.calendar.Holidays(lecture.Start.Year()).Weekdays(from, to),
	}, nil
}

func touchesCarnival(days []time.Time) bool {
	for _, d := range days {
		if MondayOf(d).Equal(MondayOf(Weiberfastnacht(d.Year()))) {
			return true
		}
	}
	return false
}

// SortedNames returns the parseable semester names of periods in semester order.
func SortedNames(periods map[string]models.Period) []string {
	type entry struct {
		name string
		key  models.SemesterKey
	}
	entries := make([]entry, 0, len(periods))
	for name := range periods {
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
