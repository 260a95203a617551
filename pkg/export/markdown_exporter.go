package export

import (
	"fmt"
	"strings"

	"github.com/noah-isme/exam-period-api/internal/models"
)

const defaultTitle = "Vorschlag Prüfungszeiträume Informatik"

// MarkdownExporter renders one table per semester.
type MarkdownExporter struct {
	title string
}

// NewMarkdownExporter builds a Markdown exporter with the document title.
func NewMarkdownExporter(title string) *MarkdownExporter {
	if title == "" {
		title = defaultTitle
	}
	return &MarkdownExporter{title: title}
}

// Render produces the Markdown document.
func (e *MarkdownExporter) Render(plan *models.ExamPlan) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", e.title)

	for _, s := range plan.Semesters {
		fmt.Fprintf(&b, "## %s\n\n", semesterTitle(s))
		fmt.Fprintf(&b, "Vorlesungszeit: %s\n\n", formatPeriod(s.Lecture))

		if len(s.Violations) > 0 {
			b.WriteString("**VERLETZTE BEDINGUNGEN:**\n")
			for _, v := range s.Violations {
				fmt.Fprintf(&b, "- %s\n", v.Message)
			}
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "Anzahl Vorlesungswochen: %d\n", s.Stats.LectureWeeks)
		fmt.Fprintf(&b, "Vorlesungswochen vor HIP: %d\n", s.Stats.WeeksBeforeHIP)
		fmt.Fprintf(&b, "Vorlesungswochen nach HIP: %d\n\n", s.Stats.WeeksAfterHIP)

		b.WriteString("| Prüfungswoche | Zeitraum | Feiertage | Anmerkungen |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, block := range s.Blocks {
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
				block.Number, formatRange(block), formatHits(block.Holidays), formatNotes(block.Notes))
		}
		b.WriteString("\n")
	}

	return []byte(b.String()), nil
}
