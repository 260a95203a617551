package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/exam-period-api/internal/models"
)

const dateLayout = "02.01.2006"

var weekdayLabels = [...]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"}

func formatDate(d time.Time) string {
	return d.Format(dateLayout)
}

func formatDay(d time.Time) string {
	return weekdayLabels[d.Weekday()] + " " + formatDate(d)
}

func formatRange(b models.ExamBlock) string {
	return formatDay(b.Start) + " - " + formatDay(b.End)
}

func formatPeriod(p models.Period) string {
	return formatDate(p.Start) + " - " + formatDate(p.End)
}

func formatHits(hits []models.HolidayHit) string {
	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		parts = append(parts, fmt.Sprintf("%s (%s)", h.Date.Format("02.01."), h.Name))
	}
	return strings.Join(parts, ", ")
}

func formatNotes(notes []string) string {
	return strings.Join(notes, "; ")
}

func semesterTitle(s models.SemesterPlan) string {
	if s.Proposal {
		return s.Name + " (VORSCHLAG)"
	}
	return s.Name
}

// schoolHolidaysFor picks the NRW school holidays shown next to a semester:
// autumn holidays for winter, Easter and summer holidays for summer.
func schoolHolidaysFor(s models.SemesterPlan, all []models.SchoolHoliday) []models.SchoolHoliday {
	wanted := map[string]bool{"Osterferien": !s.Key.Winter, "Sommerferien": !s.Key.Winter, "Herbstferien": s.Key.Winter}
	result := make([]models.SchoolHoliday, 0)
	for _, h := range all {
		if h.Year == s.Lecture.Start.Year() && wanted[h.Name] {
			result = append(result, h)
		}
	}
	return result
}

// Block dataset headers.
const (
	ColSemester = "Semester"
	ColBlock    = "Block"
	ColNumber   = "Prüfungswoche"
	ColStart    = "Beginn"
	ColEnd      = "Ende"
	ColRange    = "Zeitraum"
	ColHolidays = "Feiertage"
	ColNotes    = "Anmerkungen"
	ColProposal = "Vorschlag"
)

// BlockDataset flattens all exam blocks of a plan into one table.
func BlockDataset(plan *models.ExamPlan) Dataset {
	data := Dataset{Headers: []string{ColSemester, ColBlock, ColNumber, ColStart, ColEnd, ColRange, ColHolidays, ColNotes, ColProposal}}
	for _, s := range plan.Semesters {
		proposal := "nein"
		if s.Proposal {
			proposal = "ja"
		}
		for _, b := range s.Blocks {
			data.Rows = append(data.Rows, map[string]string{
				ColSemester: s.Name,
				ColBlock:    b.Label,
				ColNumber:   fmt.Sprintf("%d", b.Number),
				ColStart:    b.Start.Format("2006-01-02"),
				ColEnd:      b.End.Format("2006-01-02"),
				ColRange:    formatRange(b),
				ColHolidays: formatHits(b.Holidays),
				ColNotes:    formatNotes(b.Notes),
				ColProposal: proposal,
			})
		}
	}
	return data
}
