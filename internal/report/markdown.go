package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

// MarkdownRenderer renders a patient summary as a clinical Markdown report.
type MarkdownRenderer struct {
	catalog domain.Catalog
}

// NewMarkdownRenderer creates a Markdown renderer. The catalog supplies
// reference-range strings for result lines; a nil catalog omits them.
func NewMarkdownRenderer(cat domain.Catalog) *MarkdownRenderer {
	return &MarkdownRenderer{catalog: cat}
}

// ContentType returns the MIME type of the rendered output.
func (r *MarkdownRenderer) ContentType() string {
	return "text/markdown; charset=utf-8"
}

// Render writes the Markdown report.
func (r *MarkdownRenderer) Render(w io.Writer, summary *domain.PatientSummary) error {
	var b strings.Builder

	fmt.Fprintf(&b, "## Patient Summary - ID: %s\n\n", summary.PatientID)

	for _, hs := range summary.HealthSummaries {
		fmt.Fprintf(&b, "**Health Domain: %s**\n", hs.Domain)
		for _, result := range hs.Findings {
			fmt.Fprintf(&b, "- %s\n", resultLine(result, normalRange(r.catalog, result.AnalyteCode)))
		}
		for _, tf := range hs.Trends {
			fmt.Fprintf(&b, "- **Trend**: %s\n", trendLine(tf))
		}
		if hs.Narrative != "" {
			fmt.Fprintf(&b, "- %s\n", hs.Narrative)
		}
		b.WriteString("\n")
	}

	if len(summary.Skipped) > 0 {
		b.WriteString("**Skipped Entries**\n")
		for _, skip := range summary.Skipped {
			fmt.Fprintf(&b, "- %s (%s)\n", skip.Result.TestName, skip.Reason)
		}
		b.WriteString("\n")
	}

	if summary.OverallNarrative != "" {
		fmt.Fprintf(&b, "🧠 **Summary**: %s\n", summary.OverallNarrative)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
