package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/noah-isme/exam-period-api/internal/models"
)

type rgb struct{ r, g, b int }

var (
	colorExam    = rgb{255, 165, 0}
	colorLecture = rgb{220, 70, 70}
	colorHIP     = rgb{255, 225, 0}
	colorHoliday = rgb{70, 170, 90}
	colorFree    = rgb{235, 235, 235}
)

const (
	pageMargin   = 15.0
	timelineTop  = 48.0
	timelineCell = 14.0
)

// PDFExporter draws a week timeline per semester followed by the block table.
type PDFExporter struct{}

// NewPDFExporter builds a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render produces the PDF document, one landscape page per semester.
func (e *PDFExporter) Render(plan *models.ExamPlan) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if len(plan.Semesters) == 0 {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 10, tr("Keine Semester geplant"), "", 1, "L", false, 0, "")
	}
	for _, s := range plan.Semesters {
		e.renderSemester(pdf, tr, s, schoolHolidaysFor(s, plan.SchoolHolidays))
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) renderSemester(pdf *gofpdf.Fpdf, tr func(string) string, s models.SemesterPlan, school []models.SchoolHoliday) {
	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - 2*pageMargin

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, tr("Semesterplan: "+semesterTitle(s)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Vorlesungszeit: "+formatPeriod(s.Lecture)), "", 1, "L", false, 0, "")

	legend := []struct {
		label string
		color rgb
	}{{"Prüfung", colorExam}, {"Vorlesung", colorLecture}, {"HIP-Woche", colorHIP}, {"Feiertag", colorHoliday}}
	x := pageMargin
	for _, item := range legend {
		fill(pdf, item.color)
		pdf.Rect(x, 33, 5, 5, "F")
		pdf.Text(x+7, 37, tr(item.label))
		x += 40
	}

	e.drawTimeline(pdf, s, usable)

	pdf.SetXY(pageMargin, timelineTop+timelineCell+14)
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{
		fmt.Sprintf("Anzahl Vorlesungswochen: %d", s.Stats.LectureWeeks),
		fmt.Sprintf("Vorlesungswochen vor HIP: %d", s.Stats.WeeksBeforeHIP),
		fmt.Sprintf("Vorlesungswochen nach HIP: %d", s.Stats.WeeksAfterHIP),
	} {
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	if len(s.Violations) > 0 {
		pdf.SetTextColor(200, 0, 0)
		for _, v := range s.Violations {
			pdf.CellFormat(0, 5, tr("Verletzt: "+v.Message), "", 1, "L", false, 0, "")
		}
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(3)

	widths := []float64{22, 70, 75, usable - 167}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"P-Woche", "Zeitraum", "Feiertage", "Anmerkungen"} {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, b := range s.Blocks {
		row := []string{b.Label, formatRange(b), formatHits(b.Holidays), formatNotes(b.Notes)}
		for i, v := range row {
			pdf.CellFormat(widths[i], 6, tr(v), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)

	if len(school) > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, tr("Ferientermine NRW:"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, h := range school {
			pdf.CellFormat(0, 5, tr(fmt.Sprintf("%s: %s - %s", h.Name, formatDate(h.Start), formatDate(h.End))), "", 1, "L", false, 0, "")
		}
	}
	if len(s.Holidays) > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, tr("Feiertage (unter der Woche):"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, h := range s.Holidays {
			pdf.CellFormat(0, 5, tr(fmt.Sprintf("%s %s: %s", h.Weekday, formatDate(h.Date), h.Name)), "", 1, "L", false, 0, "")
		}
	}
}

// drawTimeline renders one cell per week from the Monday of the earliest
// lecture or exam day to the Sunday of the latest one.
func (e *PDFExporter) drawTimeline(pdf *gofpdf.Fpdf, s models.SemesterPlan, usable float64) {
	from, to := s.Lecture.Start, s.Lecture.End
	exam := make(map[time.Time]bool)
	for _, b := range s.Blocks {
		for _, d := range b.Days {
			exam[d] = true
		}
		if b.Start.Before(from) {
			from = b.Start
		}
		if b.End.After(to) {
			to = b.End
		}
	}
	holidays := make(map[time.Time]bool, len(s.Holidays))
	for _, h := range s.Holidays {
		holidays[h.Date] = true
	}

	start := mondayOf(from)
	weeks := int(mondayOf(to).Sub(start).Hours()/(24*7)) + 1
	if weeks <= 0 {
		return
	}
	width := usable / float64(weeks)

	pdf.SetFont("Helvetica", "", 6)
	for i := 0; i < weeks; i++ {
		monday := start.AddDate(0, 0, 7*i)
		x := pageMargin + float64(i)*width

		color := colorFree
		if !monday.AddDate(0, 0, 4).Before(s.Lecture.Start) && !monday.After(s.Lecture.End) {
			color = colorLecture
		}
		isHIP := !s.HIP.Start.Before(monday) && s.HIP.Start.Before(monday.AddDate(0, 0, 7))
		for d := 0; d < 5 && !isHIP; d++ {
			if exam[monday.AddDate(0, 0, d)] {
				color = colorExam
				break
			}
		}
		if isHIP {
			color = colorHIP
		}
		fill(pdf, color)
		pdf.Rect(x, timelineTop, width, timelineCell, "F")

		fill(pdf, colorHoliday)
		for d := 0; d < 5; d++ {
			if holidays[monday.AddDate(0, 0, d)] {
				pdf.Rect(x+float64(d)*width/5, timelineTop, width/5, timelineCell, "F")
			}
		}
		pdf.SetDrawColor(80, 80, 80)
		pdf.Rect(x, timelineTop, width, timelineCell, "D")

		pdf.Text(x+0.5, timelineTop-1.5, monday.Format("02.01."))
		pdf.Text(x+0.5, timelineTop+timelineCell+4, fmt.Sprintf("W%d", i+1))
	}
}

func fill(pdf *gofpdf.Fpdf, c rgb) {
	pdf.SetFillColor(c.r, c.g, c.b)
}

func mondayOf(d time.Time) time.Time {
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
