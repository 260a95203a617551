package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/exam-period-api/internal/models"
)

// Format identifies an export artifact type.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatICS      Format = "ics"
	FormatPDF      Format = "pdf"
	FormatCSV      Format = "csv"
	FormatXLSX     Format = "xlsx"
)

var contentTypes = map[Format]string{
	FormatMarkdown: "text/markdown; charset=utf-8",
	FormatICS:      "text/calendar; charset=utf-8",
	FormatPDF:      "application/pdf",
	FormatCSV:      "text/csv; charset=utf-8",
	FormatXLSX:     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ParseFormat accepts a format name or file extension.
func ParseFormat(raw string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(raw)), "."))
	if f == "markdown" {
		f = FormatMarkdown
	}
	if _, ok := contentTypes[f]; !ok {
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
	return f, nil
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	return contentTypes[f]
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Renderer turns a plan into an artifact.
type Renderer interface {
	Render(plan *models.ExamPlan) ([]byte, error)
}

// Options customise the built-in renderers.
type Options struct {
	Title     string
	ProductID string
	CSVComma  rune
}

// Registry dispatches rendering by format.
type Registry struct {
	renderers map[Format]Renderer
}

// NewRegistry registers all built-in renderers.
func NewRegistry(opts Options) *Registry {
	return &Registry{renderers: map[Format]Renderer{
		FormatMarkdown: NewMarkdownExporter(opts.Title),
		FormatICS:      NewICSExporter(opts.ProductID),
		FormatPDF:      NewPDFExporter(),
		FormatCSV:      NewCSVExporter(opts.CSVComma),
		FormatXLSX:     NewXLSXExporter(),
	}}
}

// Register replaces or adds a renderer.
func (r *Registry) Register(f Format, renderer Renderer) {
	r.renderers[f] = renderer
}

// Formats lists the registered formats in a stable order.
func (r *Registry) Formats() []Format {
	formats := make([]Format, 0, len(r.renderers))
	for f := range r.renderers {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// Render produces the artifact for the requested format.
func (r *Registry) Render(f Format, plan *models.ExamPlan) ([]byte, error) {
	renderer, ok := r.renderers[f]
	if !ok {
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
	if plan == nil {
		return nil, fmt.Errorf("render %s: plan is nil", f)
	}
	return renderer.Render(plan)
}
