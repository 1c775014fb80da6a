package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

var latexEscaper = strings.NewReplacer(
	"\\", "\\textbackslash{}",
	"&", "\\&",
	"%", "\\%",
	"$", "\\$",
	"#", "\\#",
	"_", "\\_",
	"{", "\\{",
	"}", "\\}",
	"~", "\\textasciitilde{}",
	"^", "\\textasciicircum{}",
	"↑", "$\\uparrow$",
	"↓", "$\\downarrow$",
)

func latexEscape(s string) string {
	return latexEscaper.Replace(s)
}

// LaTeXRenderer renders a patient summary as a standalone LaTeX document.
type LaTeXRenderer struct {
	catalog domain.Catalog
}

// NewLaTeXRenderer creates a LaTeX renderer.
func NewLaTeXRenderer(cat domain.Catalog) *LaTeXRenderer {
	return &LaTeXRenderer{catalog: cat}
}

// ContentType returns the MIME type of the rendered output.
func (r *LaTeXRenderer) ContentType() string {
	return "application/x-latex"
}

// Render writes the LaTeX report.
func (r *LaTeXRenderer) Render(w io.Writer, summary *domain.PatientSummary) error {
	var b strings.Builder

	b.WriteString("\\documentclass{article}\n")
	b.WriteString("\\usepackage[utf8]{inputenc}\n")
	b.WriteString("\\usepackage{amsmath}\n")
	b.WriteString("\\usepackage{booktabs}\n")
	b.WriteString("\\title{Patient Lab Summary}\n")
	b.WriteString("\\begin{document}\n")
	b.WriteString("\\maketitle\n\n")

	fmt.Fprintf(&b, "\\section{Patient Summary - ID: %s}\n\n", latexEscape(summary.PatientID))

	for _, hs := range summary.HealthSummaries {
		fmt.Fprintf(&b, "\\subsection{%s}\n", latexEscape(string(hs.Domain)))
		b.WriteString("\\begin{itemize}\n")
		for _, result := range hs.Findings {
			line := resultLine(result, normalRange(r.catalog, result.AnalyteCode))
			fmt.Fprintf(&b, "\\item %s\n", latexEscape(line))
		}
		for _, tf := range hs.Trends {
			fmt.Fprintf(&b, "\\item \\textbf{Trend}: %s\n", latexEscape(trendLine(tf)))
		}
		if hs.Narrative != "" {
			fmt.Fprintf(&b, "\\item %s\n", latexEscape(hs.Narrative))
		}
		b.WriteString("\\end{itemize}\n\n")
	}

	if len(summary.Skipped) > 0 {
		b.WriteString("\\subsection{Skipped Entries}\n")
		b.WriteString("\\begin{itemize}\n")
		for _, skip := range summary.Skipped {
			fmt.Fprintf(&b, "\\item %s (%s)\n", latexEscape(skip.Result.TestName), latexEscape(string(skip.Reason)))
		}
		b.WriteString("\\end{itemize}\n\n")
	}

	if summary.OverallNarrative != "" {
		b.WriteString("\\section{Summary}\n")
		b.WriteString(latexEscape(summary.OverallNarrative) + "\n\n")
	}

	b.WriteString("\\end{document}\n")

	_, err := io.WriteString(w, b.String())
	return err
}
