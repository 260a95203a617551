package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/exam-period-api/internal/models"
)

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"md": FormatMarkdown, "Markdown": FormatMarkdown, ".ics": FormatICS, " PDF ": FormatPDF, "xlsx": FormatXLSX, "csv": FormatCSV}
	for raw, want := range cases {
		got, err := ParseFormat(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("docx")
	assert.Error(t, err)
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
}

func TestRegistryRendersAllFormats(t *testing.T) {
	registry := NewRegistry(Options{})
	assert.Equal(t, []Format{FormatCSV, FormatICS, FormatMarkdown, FormatPDF, FormatXLSX}, registry.Formats())
	for _, f := range registry.Formats() {
		data, err := registry.Render(f, samplePlan())
		require.NoError(t, err, f)
		assert.NotEmpty(t, data, f)
	}

	_, err := registry.Render(Format("docx"), samplePlan())
	assert.Error(t, err)
	_, err = registry.Render(FormatCSV, nil)
	assert.Error(t, err)
}

func TestMarkdownExporter(t *testing.T) {
	data, err := NewMarkdownExporter("").Render(samplePlan())
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "# Vorschlag Prüfungszeiträume Informatik\n"))
	assert.Contains(t, out, "## Sommersemester 2024\n")
	assert.Contains(t, out, "## Wintersemester 2026/27 (VORSCHLAG)\n")
	assert.Contains(t, out, "Vorlesungszeit: 18.03.2024 - 12.07.2024")
	assert.Contains(t, out, "| 2 | Fr 10.05.2024 - Fr 17.05.2024 | 20.05. (Pfingstmontag) | HIP-Woche |")
	assert.Contains(t, out, "**VERLETZTE BEDINGUNGEN:**\n- Vorlesungswochen < 13 (12)")
	assert.Contains(t, out, "Anzahl Vorlesungswochen: 12")
	assert.Equal(t, 1, strings.Count(out, "VERLETZTE"))
}

func TestCSVExporter(t *testing.T) {
	data, err := NewCSVExporter(0).Render(samplePlan())
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 8)
	assert.Equal(t, ColSemester, records[0][0])
	assert.Equal(t, []string{"Sommersemester 2024", "P2", "2", "2024-05-10", "2024-05-17"}, records[2][:5])
	assert.Equal(t, "ja", records[7][8])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter(',').RenderDataset(Dataset{})
	assert.Error(t, err)
}

func TestICSExporter(t *testing.T) {
	data, err := NewICSExporter("").Render(samplePlan())
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 7)

	first := events[0]
	assert.Equal(t, "Prüfungswoche 1 Sommersemester 2024", first.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "20240318", first.GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20240323", first.GetProperty(ics.ComponentPropertyDtEnd).Value)
	assert.Equal(t, "ss2024-p1@exam-period-api", first.GetProperty(ics.ComponentPropertyUniqueId).Value)
	assert.Contains(t, events[6].GetProperty(ics.ComponentPropertyDescription).Value, "Vorschlag")
}

func TestXLSXExporter(t *testing.T) {
	data, err := NewXLSXExporter().Render(samplePlan())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{OverviewSheet, "SS 2024", "WS 2026-27"}, f.GetSheetList())
	name, err := f.GetCellValue(OverviewSheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Wintersemester 2026/27", name)

	rows, err := f.GetRows("SS 2024")
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, "Fr 10.05.2024 - Fr 17.05.2024", rows[5][2])
}

func TestPDFExporter(t *testing.T) {
	data, err := NewPDFExporter().Render(samplePlan())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	empty, err := NewPDFExporter().Render(&models.ExamPlan{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(empty, []byte("%PDF")))
}

func TestSchoolHolidaysFor(t *testing.T) {
	plan := samplePlan()
	summer := schoolHolidaysFor(plan.Semesters[0], plan.SchoolHolidays)
	require.Len(t, summer, 1)
	assert.Equal(t, "Osterferien", summer[0].Name)

	winter := schoolHolidaysFor(plan.Semesters[1], plan.SchoolHolidays)
	require.Len(t, winter, 1)
	assert.Equal(t, 2026, winter[0].Start.Year())
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "WS 2099-00", SheetName(models.SemesterKey{Year: 2099, Winter: true}))
	assert.Equal(t, "SS 2030", SheetName(models.SemesterKey{Year: 2030}))
}
