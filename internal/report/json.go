package report

import (
	"encoding/json"
	"io"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

// JSONRenderer renders a patient summary as indented JSON, the machine
// interchange form of the report.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSON renderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// ContentType returns the MIME type of the rendered output.
func (r *JSONRenderer) ContentType() string {
	return "application/json"
}

// Render writes the summary as indented JSON.
func (r *JSONRenderer) Render(w io.Writer, summary *domain.PatientSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(summary)
}

// ForFormat returns the renderer for a format name ("md", "latex", "json").
func ForFormat(format string, cat domain.Catalog) (domain.ReportRenderer, error) {
	switch format {
	case "md", "markdown":
		return NewMarkdownRenderer(cat), nil
	case "latex", "tex":
		return NewLaTeXRenderer(cat), nil
	case "json":
		return NewJSONRenderer(), nil
	default:
		return nil, domain.ErrNotFound
	}
}
