package export

import (
	"fmt"
	"strings"

	ics "github.com/arran4/golang-ical"

	"github.com/noah-isme/exam-period-api/internal/models"
)

const defaultProductID = "-//TH Köln Exam Periods//exam-period-api//DE"

// ICSExporter renders each exam block as an all-day event.
type ICSExporter struct {
	productID string
}

// NewICSExporter builds an iCalendar exporter.
func NewICSExporter(productID string) *ICSExporter {
	if productID == "" {
		productID = defaultProductID
	}
	return &ICSExporter{productID: productID}
}

// Render produces the iCalendar document. DTEND is exclusive, so it is set to
// the day after the last exam day.
func (e *ICSExporter) Render(plan *models.ExamPlan) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetProductId(e.productID)
	cal.SetMethod(ics.MethodPublish)

	for _, s := range plan.Semesters {
		for _, b := range s.Blocks {
			event := cal.AddEvent(eventUID(s, b))
			event.SetSummary(fmt.Sprintf("Prüfungswoche %d %s", b.Number, s.Name))
			event.SetAllDayStartAt(b.Start)
			event.SetAllDayEndAt(b.End.AddDate(0, 0, 1))
			if !plan.GeneratedAt.IsZero() {
				event.SetDtStampTime(plan.GeneratedAt)
			}
			if desc := eventDescription(s, b); desc != "" {
				event.SetDescription(desc)
			}
		}
	}

	return []byte(cal.Serialize()), nil
}

func eventUID(s models.SemesterPlan, b models.ExamBlock) string {
	season := "ss"
	if s.Key.Winter {
		season = "ws"
	}
	return fmt.Sprintf("%s%d-%s@exam-period-api", season, s.Key.Year, strings.ToLower(b.Label))
}

func eventDescription(s models.SemesterPlan, b models.ExamBlock) string {
	parts := make([]string, 0, 3)
	if s.Proposal {
		parts = append(parts, "Vorschlag")
	}
	if len(b.Holidays) > 0 {
		parts = append(parts, "Feiertage: "+formatHits(b.Holidays))
	}
	if len(b.Notes) > 0 {
		parts = append(parts, formatNotes(b.Notes))
	}
	return strings.Join(parts, "; ")
}
