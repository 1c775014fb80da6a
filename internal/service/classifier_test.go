package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

func normalizedResult(code, name string, d domain.HealthDomain, value float64, date string, status domain.Status) domain.NormalizedResult {
	return domain.NormalizedResult{
		AnalyteCode: code,
		DisplayName: name,
		RawName:     name,
		Domain:      d,
		Value:       value,
		Unit:        "mg/dL",
		Date:        mustDate(date),
		Status:      status,
	}
}

func TestClassifyIsStrictPartition(t *testing.T) {
	c := NewClassifierService(testLogger())

	input := []domain.NormalizedResult{
		normalizedResult("2160-0", "Creatinine", domain.Renal, 1.6, "2024-01-15", domain.StatusHigh),
		normalizedResult("4548-4", "HbA1c", domain.Endocrine, 7.2, "2024-01-15", domain.StatusHigh),
		normalizedResult("2160-0", "Creatinine", domain.Renal, 1.4, "2024-06-15", domain.StatusHigh),
		normalizedResult("2093-3", "Total Cholesterol", domain.Lipid, 180, "2024-01-15", domain.StatusNormal),
	}

	buckets := c.Classify(input)

	total := 0
	for _, bucket := range buckets {
		total += len(bucket.Findings)
		for _, r := range bucket.Findings {
			assert.Equal(t, bucket.Domain, r.Domain)
		}
	}
	assert.Equal(t, len(input), total, "every result lands in exactly one bucket")
	assert.Len(t, buckets, 3)
}

func TestClassifySeriesPreserveInputOrder(t *testing.T) {
	c := NewClassifierService(testLogger())

	input := []domain.NormalizedResult{
		normalizedResult("2160-0", "Creatinine", domain.Renal, 1.6, "2024-06-15", domain.StatusHigh),
		normalizedResult("33914-3", "eGFR", domain.Renal, 54, "2024-01-15", domain.StatusLow),
		normalizedResult("2160-0", "Creatinine", domain.Renal, 1.4, "2024-01-15", domain.StatusHigh),
	}

	buckets := c.Classify(input)
	renal, ok := buckets[domain.Renal]
	require.True(t, ok)

	assert.Equal(t, []string{"2160-0", "33914-3"}, renal.Codes, "first-seen analyte order")

	series := renal.Series["2160-0"]
	require.Len(t, series, 2)
	assert.Equal(t, 1.6, series[0].Value, "input order kept, not date-sorted")
	assert.Equal(t, 1.4, series[1].Value)
}

func TestClassifyUnsetDomainFallsBackToOther(t *testing.T) {
	c := NewClassifierService(testLogger())

	input := []domain.NormalizedResult{
		normalizedResult("X-1", "Experimental Marker", "", 1.0, "2024-01-15", domain.StatusNormal),
	}

	buckets := c.Classify(input)
	other, ok := buckets[domain.Other]
	require.True(t, ok)
	assert.Len(t, other.Findings, 1)
}

func TestClassifyEmptyInput(t *testing.T) {
	c := NewClassifierService(testLogger())
	assert.Empty(t, c.Classify(nil))
}
