package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/exam-period-api/internal/models"
)

// OverviewSheet is the name of the summary worksheet.
const OverviewSheet = "Übersicht"

var (
	overviewHeaders = []interface{}{"Semester", "Vorlesungszeit", "HIP-Woche", "Vorlesungswochen", "Wochen vor HIP", "Wochen nach HIP", "Score", "Verletzungen", "Vorschlag"}
	blockHeaders    = []interface{}{"Prüfungswoche", "Block", "Zeitraum", "Feiertage", "Anmerkungen"}
)

// XLSXExporter renders an overview sheet plus one sheet per semester.
type XLSXExporter struct{}

// NewXLSXExporter builds a workbook exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render produces the workbook bytes.
func (e *XLSXExporter) Render(plan *models.ExamPlan) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	overview, err := f.NewSheet(OverviewSheet)
	if err != nil {
		return nil, fmt.Errorf("create overview sheet: %w", err)
	}
	f.SetActiveSheet(overview)
	f.DeleteSheet("Sheet1")

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C0504D"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	warning, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFD966"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create warning style: %w", err)
	}

	if err := writeRow(f, OverviewSheet, 1, overviewHeaders); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(OverviewSheet, "A1", "I1", header); err != nil {
		return nil, fmt.Errorf("style overview header: %w", err)
	}
	if err := f.SetColWidth(OverviewSheet, "A", "C", 26); err != nil {
		return nil, fmt.Errorf("size overview columns: %w", err)
	}

	for i, s := range plan.Semesters {
		row := i + 2
		proposal := "nein"
		if s.Proposal {
			proposal = "ja"
		}
		values := []interface{}{
			s.Name, formatPeriod(s.Lecture), formatPeriod(s.HIP),
			s.Stats.LectureWeeks, s.Stats.WeeksBeforeHIP, s.Stats.WeeksAfterHIP,
			s.Score, len(s.Violations), proposal,
		}
		if err := writeRow(f, OverviewSheet, row, values); err != nil {
			return nil, err
		}
		if len(s.Violations) > 0 {
			if err := f.SetCellStyle(OverviewSheet, cell(1, row), cell(9, row), warning); err != nil {
				return nil, fmt.Errorf("style overview row: %w", err)
			}
		}
		if err := e.writeSemester(f, s, header); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *XLSXExporter) writeSemester(f *excelize.File, s models.SemesterPlan, header int) error {
	sheet := SheetName(s.Key)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	if err := writeRow(f, sheet, 1, []interface{}{semesterTitle(s)}); err != nil {
		return err
	}
	if err := writeRow(f, sheet, 2, []interface{}{"Vorlesungszeit: " + formatPeriod(s.Lecture)}); err != nil {
		return err
	}
	if err := writeRow(f, sheet, 4, blockHeaders); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A4", "E4", header); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	for i, b := range s.Blocks {
		values := []interface{}{b.Number, b.Label, formatRange(b), formatHits(b.Holidays), formatNotes(b.Notes)}
		if err := writeRow(f, sheet, i+5, values); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "C", "E", 34); err != nil {
		return fmt.Errorf("size %s columns: %w", sheet, err)
	}
	return nil
}

// SheetName returns a worksheet name for a semester. Sheet names may not
// contain '/', so the winter suffix uses '-'.
func SheetName(key models.SemesterKey) string {
	if key.Winter {
		return fmt.Sprintf("WS %d-%02d", key.Year, (key.Year+1)%100)
	}
	return fmt.Sprintf("SS %d", key.Year)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	if err := f.SetSheetRow(sheet, cell(1, row), &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
