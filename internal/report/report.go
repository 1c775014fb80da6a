// Package report renders structured patient summaries for display. Renderers
// consume engine output and never influence it: a summary renders identically
// no matter which format is requested.
package report

import (
	"fmt"
	"strings"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

// formatValue renders a lab value without trailing zeros.
func formatValue(v float64) string {
	return fmt.Sprintf("%g", v)
}

// formatPercent renders a fractional change as a signed percentage.
func formatPercent(pct float64) string {
	return fmt.Sprintf("%+.1f%%", pct*100)
}

// resultLine renders "Creatinine: 1.6 mg/dL ↑ (0.6-1.3)"; the status arrow
// and reference range are omitted when empty.
func resultLine(r domain.NormalizedResult, rangeStr string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s", r.DisplayName, formatValue(r.Value), r.Unit)
	if arrow := r.Status.Arrow(); arrow != "" {
		b.WriteString(" " + arrow)
	}
	if rangeStr != "" {
		fmt.Fprintf(&b, " (%s)", rangeStr)
	}
	return b.String()
}

// trendLine renders "eGFR -10.0% (Worsening) - Moderate kidney dysfunction
// (Stage 3a CKD)".
func trendLine(tf domain.TrendFinding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%s)", tf.DisplayName, formatPercent(tf.PercentChange), tf.Direction)
	if tf.StagingLabel != "" {
		fmt.Fprintf(&b, " - %s", tf.StagingLabel)
	}
	return b.String()
}

// normalRange looks up the display range for a result, tolerating a nil
// catalog or an unknown code with an empty string.
func normalRange(cat domain.Catalog, code string) string {
	if cat == nil {
		return ""
	}
	rr, err := cat.NormalRange(code)
	if err != nil {
		return ""
	}
	return rr.String()
}
