package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

func bucketFor(d domain.HealthDomain, results ...domain.NormalizedResult) *domain.DomainBucket {
	bucket := &domain.DomainBucket{
		Domain: d,
		Series: make(map[string][]domain.NormalizedResult),
	}
	for _, r := range results {
		if _, seen := bucket.Series[r.AnalyteCode]; !seen {
			bucket.Codes = append(bucket.Codes, r.AnalyteCode)
		}
		bucket.Series[r.AnalyteCode] = append(bucket.Series[r.AnalyteCode], r)
		bucket.Findings = append(bucket.Findings, r)
	}
	return bucket
}

func TestAssembleDomainOrderFixed(t *testing.T) {
	a := NewAssemblerService(testLogger())

	buckets := map[domain.HealthDomain]*domain.DomainBucket{
		domain.Lipid: bucketFor(domain.Lipid,
			normalizedResult("2093-3", "Total Cholesterol", domain.Lipid, 180, "2024-01-15", domain.StatusNormal)),
		domain.Renal: bucketFor(domain.Renal,
			normalizedResult("2160-0", "Creatinine", domain.Renal, 1.6, "2024-01-15", domain.StatusHigh)),
		domain.Endocrine: bucketFor(domain.Endocrine,
			normalizedResult("4548-4", "HbA1c", domain.Endocrine, 5.0, "2024-01-15", domain.StatusNormal)),
	}

	summary := a.Assemble("PT123456", buckets, nil, nil)

	require.Len(t, summary.HealthSummaries, 3)
	assert.Equal(t, domain.Renal, summary.HealthSummaries[0].Domain)
	assert.Equal(t, domain.Endocrine, summary.HealthSummaries[1].Domain)
	assert.Equal(t, domain.Lipid, summary.HealthSummaries[2].Domain)
}

func TestAssembleOmitsEmptyDomains(t *testing.T) {
	a := NewAssemblerService(testLogger())

	buckets := map[domain.HealthDomain]*domain.DomainBucket{
		domain.Renal: bucketFor(domain.Renal,
			normalizedResult("2160-0", "Creatinine", domain.Renal, 1.0, "2024-01-15", domain.StatusNormal)),
		domain.Thyroid: {Domain: domain.Thyroid, Series: map[string][]domain.NormalizedResult{}},
	}

	summary := a.Assemble("PT123456", buckets, nil, nil)
	require.Len(t, summary.HealthSummaries, 1)
	assert.Equal(t, domain.Renal, summary.HealthSummaries[0].Domain)
}

func TestAssembleNormalNarrative(t *testing.T) {
	a := NewAssemblerService(testLogger())

	buckets := map[domain.HealthDomain]*domain.DomainBucket{
		domain.Renal: bucketFor(domain.Renal,
			normalizedResult("2160-0", "Creatinine", domain.Renal, 1.0, "2024-01-15", domain.StatusNormal)),
	}

	summary := a.Assemble("PT123456", buckets, nil, nil)
	require.Len(t, summary.HealthSummaries, 1)
	assert.Equal(t, "Values within normal limits", summary.HealthSummaries[0].Narrative)
	assert.Equal(t, "No significant findings across reported lab results.", summary.OverallNarrative)
}

func TestAssembleAbnormalWithoutTrendNarrative(t *testing.T) {
	a := NewAssemblerService(testLogger())

	buckets := map[domain.HealthDomain]*domain.DomainBucket{
		domain.Renal: bucketFor(domain.Renal,
			normalizedResult("2160-0", "Creatinine", domain.Renal, 1.6, "2024-01-15", domain.StatusHigh),
			normalizedResult("33914-3", "eGFR", domain.Renal, 54, "2024-01-15", domain.StatusLow)),
	}

	summary := a.Assemble("PT123456", buckets, nil, nil)
	require.Len(t, summary.HealthSummaries, 1)
	assert.Equal(t,
		"Abnormal values: Creatinine ↑, eGFR ↓ - follow up as clinically indicated",
		summary.HealthSummaries[0].Narrative)
	assert.Equal(t,
		"Significant findings - Renal: abnormal Creatinine ↑, eGFR ↓.",
		summary.OverallNarrative)
}

func TestAssembleTrendNarrativeWithRecommendation(t *testing.T) {
	a := NewAssemblerService(testLogger())

	buckets := map[domain.HealthDomain]*domain.DomainBucket{
		domain.Renal: bucketFor(domain.Renal,
			normalizedResult("33914-3", "eGFR", domain.Renal, 54, "2024-01-15", domain.StatusLow)),
	}
	trends := map[string]*domain.TrendFinding{
		"33914-3": {
			AnalyteCode:    "33914-3",
			DisplayName:    "eGFR",
			PercentChange:  -0.10,
			Direction:      domain.Worsening,
			StagingLabel:   "Moderate kidney dysfunction (Stage 3a CKD)",
			Recommendation: "monitor renal function",
		},
	}

	summary := a.Assemble("PT123456", buckets, trends, nil)
	require.Len(t, summary.HealthSummaries, 1)
	assert.Equal(t,
		"Moderate kidney dysfunction (Stage 3a CKD) - suggest monitor renal function",
		summary.HealthSummaries[0].Narrative)
	assert.Equal(t,
		"Significant findings - Renal: Moderate kidney dysfunction (Stage 3a CKD). Recommend monitor renal function.",
		summary.OverallNarrative)
}

func TestAssembleStableUnstagedTrendIsQuiet(t *testing.T) {
	a := NewAssemblerService(testLogger())

	buckets := map[domain.HealthDomain]*domain.DomainBucket{
		domain.Endocrine: bucketFor(domain.Endocrine,
			normalizedResult("4548-4", "HbA1c", domain.Endocrine, 5.0, "2024-01-15", domain.StatusNormal)),
	}
	trends := map[string]*domain.TrendFinding{
		"4548-4": {
			AnalyteCode:  "4548-4",
			DisplayName:  "HbA1c",
			Direction:    domain.Stable,
			StagingLabel: "within expected range",
		},
	}

	summary := a.Assemble("PT123456", buckets, trends, nil)
	require.Len(t, summary.HealthSummaries, 1)
	assert.Equal(t, "Values within normal limits", summary.HealthSummaries[0].Narrative)
	assert.Equal(t, "No significant findings across reported lab results.", summary.OverallNarrative)
}

func TestAssembleDedupesRepeatedRecommendations(t *testing.T) {
	a := NewAssemblerService(testLogger())

	buckets := map[domain.HealthDomain]*domain.DomainBucket{
		domain.Renal: bucketFor(domain.Renal,
			normalizedResult("2160-0", "Creatinine", domain.Renal, 1.6, "2024-01-15", domain.StatusHigh),
			normalizedResult("33914-3", "eGFR", domain.Renal, 54, "2024-01-15", domain.StatusLow)),
	}
	trends := map[string]*domain.TrendFinding{
		"2160-0": {
			AnalyteCode:    "2160-0",
			DisplayName:    "Creatinine",
			Direction:      domain.Worsening,
			StagingLabel:   "Mildly elevated creatinine",
			Recommendation: "monitor renal function",
		},
		"33914-3": {
			AnalyteCode:    "33914-3",
			DisplayName:    "eGFR",
			Direction:      domain.Worsening,
			StagingLabel:   "Moderate kidney dysfunction (Stage 3a CKD)",
			Recommendation: "monitor renal function",
		},
	}

	summary := a.Assemble("PT123456", buckets, trends, nil)
	require.Len(t, summary.HealthSummaries, 1)
	assert.Equal(t,
		"Mildly elevated creatinine; Moderate kidney dysfunction (Stage 3a CKD) - suggest monitor renal function",
		summary.HealthSummaries[0].Narrative)
}

func TestAssembleCarriesSkippedEntries(t *testing.T) {
	a := NewAssemblerService(testLogger())

	skipped := []domain.SkippedEntry{
		{
			Result: labResult("Mystery Marker", 1.0, "mg/dL", "2024-01-15"),
			Reason: domain.SkipUnknownTest,
		},
	}

	summary := a.Assemble("PT123456", nil, nil, skipped)
	assert.Equal(t, "PT123456", summary.PatientID)
	require.Len(t, summary.Skipped, 1)
	assert.Equal(t, domain.SkipUnknownTest, summary.Skipped[0].Reason)
	assert.Empty(t, summary.HealthSummaries)
}
