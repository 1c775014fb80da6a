package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

// AssemblerService merges classification and trend outputs into the final
// domain-grouped patient summary. Narratives come from fixed sentence
// templates only; there is no free-text generation and no external call.
type AssemblerService struct {
	logger *logrus.Logger
}

// NewAssemblerService creates a new summary assembler service.
func NewAssemblerService(logger *logrus.Logger) *AssemblerService {
	return &AssemblerService{logger: logger}
}

// Assemble builds the patient summary. Domains appear in the canonical
// order with empty domains omitted; trends follow the bucket's first-seen
// analyte order; skipped entries are carried through untouched.
func (s *AssemblerService) Assemble(
	patientID string,
	buckets map[domain.HealthDomain]*domain.DomainBucket,
	trends map[string]*domain.TrendFinding,
	skipped []domain.SkippedEntry,
) *domain.PatientSummary {
	summaries := make([]domain.HealthSummary, 0, len(buckets))

	for _, d := range domain.DomainOrder {
		bucket, ok := buckets[d]
		if !ok || len(bucket.Findings) == 0 {
			continue
		}

		var domainTrends []domain.TrendFinding
		for _, code := range bucket.Codes {
			if tf, ok := trends[code]; ok {
				domainTrends = append(domainTrends, *tf)
			}
		}

		summaries = append(summaries, domain.HealthSummary{
			Domain:    d,
			Findings:  bucket.Findings,
			Trends:    domainTrends,
			Narrative: s.domainNarrative(bucket, domainTrends),
		})
	}

	summary := &domain.PatientSummary{
		PatientID:        patientID,
		HealthSummaries:  summaries,
		OverallNarrative: s.overallNarrative(summaries),
		Skipped:          skipped,
	}

	s.logger.WithFields(logrus.Fields{
		"patient_id": patientID,
		"domains":    len(summaries),
		"skipped":    len(skipped),
	}).Debug("Assembled patient summary")

	return summary
}

// domainNarrative renders the per-domain sentence from the worst status and
// any trend findings.
func (s *AssemblerService) domainNarrative(bucket *domain.DomainBucket, trends []domain.TrendFinding) string {
	var conclusions []string
	var recommendations []string

	for _, tf := range trends {
		switch {
		case tf.StagingLabel != defaultStagingLabel:
			conclusions = append(conclusions, tf.StagingLabel)
		case tf.Direction != domain.Stable:
			conclusions = append(conclusions, fmt.Sprintf("%s %s", tf.DisplayName, strings.ToLower(tf.Direction.String())))
		}
		if tf.Recommendation != "" {
			recommendations = append(recommendations, tf.Recommendation)
		}
	}

	if len(conclusions) > 0 {
		text := strings.Join(conclusions, "; ")
		if recs := dedupe(recommendations); len(recs) > 0 {
			text += " - suggest " + strings.Join(recs, ", ")
		}
		return text
	}

	abnormal := bucket.AbnormalFindings()
	if len(abnormal) > 0 {
		parts := make([]string, 0, len(abnormal))
		for _, r := range abnormal {
			parts = append(parts, fmt.Sprintf("%s %s", r.DisplayName, r.Status.Arrow()))
		}
		return "Abnormal values: " + strings.Join(parts, ", ") + " - follow up as clinically indicated"
	}

	return "Values within normal limits"
}

// overallNarrative builds the patient-level sentence: one clause per domain
// with at least one abnormal status or non-Stable trend, in domain order.
func (s *AssemblerService) overallNarrative(summaries []domain.HealthSummary) string {
	var clauses []string
	var recommendations []string

	for _, hs := range summaries {
		desc := significantClause(hs)
		if desc == "" {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s: %s", hs.Domain, desc))
		for _, tf := range hs.Trends {
			if tf.Recommendation != "" {
				recommendations = append(recommendations, tf.Recommendation)
			}
		}
	}

	if len(clauses) == 0 {
		return "No significant findings across reported lab results."
	}

	text := "Significant findings - " + strings.Join(clauses, "; ") + "."
	if recs := dedupe(recommendations); len(recs) > 0 {
		text += " Recommend " + strings.Join(recs, ", ") + "."
	}
	return text
}

// significantClause describes why a domain needs attention, or returns ""
// when it does not.
func significantClause(hs domain.HealthSummary) string {
	for _, tf := range hs.Trends {
		if tf.StagingLabel != defaultStagingLabel {
			return tf.StagingLabel
		}
		if tf.Direction != domain.Stable {
			return fmt.Sprintf("%s %s", tf.DisplayName, strings.ToLower(tf.Direction.String()))
		}
	}

	var abnormal []string
	for _, r := range hs.Findings {
		if r.Status.IsAbnormal() {
			abnormal = append(abnormal, r.DisplayName+" "+r.Status.Arrow())
		}
	}
	if len(abnormal) > 0 {
		return "abnormal " + strings.Join(dedupe(abnormal), ", ")
	}

	return ""
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
