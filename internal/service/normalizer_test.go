package service

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/catalog"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func builtinCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(catalog.BuiltinEntries(), testLogger())
	require.NoError(t, err)
	return c
}

func newNormalizer(t *testing.T) *NormalizerService {
	t.Helper()
	n, err := NewNormalizerService(testLogger(), builtinCatalog(t))
	require.NoError(t, err)
	return n
}

func labResult(name string, value float64, unit, date string) domain.LabResult {
	d, err := domain.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return domain.LabResult{TestName: name, Value: value, Unit: unit, Date: d}
}

func TestNormalizeKnownTest(t *testing.T) {
	n := newNormalizer(t)

	result, skip := n.Normalize(labResult("Creatinine", 1.6, "mg/dL", "2024-01-15"))
	require.Nil(t, skip)
	require.NotNil(t, result)

	assert.Equal(t, "2160-0", result.AnalyteCode)
	assert.Equal(t, "Creatinine", result.DisplayName)
	assert.Equal(t, domain.Renal, result.Domain)
	assert.Equal(t, "mg/dL", result.Unit)
	assert.Equal(t, 1.6, result.Value)
	assert.Equal(t, domain.StatusHigh, result.Status)
}

func TestNormalizeSynonymsResolveToSameAnalyte(t *testing.T) {
	n := newNormalizer(t)

	names := []string{"Creatinine", "serum creatinine", "CR", "  Serum   Creatinine  "}
	for _, name := range names {
		result, skip := n.Normalize(labResult(name, 1.0, "mg/dL", "2024-01-15"))
		require.Nil(t, skip, "name %q", name)
		assert.Equal(t, "2160-0", result.AnalyteCode, "name %q", name)
		assert.Equal(t, name, result.RawName, "raw name preserved")
	}
}

func TestNormalizeUnitConversion(t *testing.T) {
	n := newNormalizer(t)

	tests := []struct {
		name      string
		input     domain.LabResult
		wantValue float64
		wantUnit  string
	}{
		{
			name:      "creatinine umol/L to mg/dL",
			input:     labResult("Creatinine", 141.5, "umol/L", "2024-01-15"),
			wantValue: 141.5 / 88.42,
			wantUnit:  "mg/dL",
		},
		{
			name:      "glucose mmol/L to mg/dL",
			input:     labResult("Fasting Glucose", 6.66, "mmol/L", "2024-01-15"),
			wantValue: 6.66 * 18.0182,
			wantUnit:  "mg/dL",
		},
		{
			name:      "creatinine micro sign variant",
			input:     labResult("Creatinine", 141.5, "µmol/L", "2024-01-15"),
			wantValue: 141.5 / 88.42,
			wantUnit:  "mg/dL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, skip := n.Normalize(tt.input)
			require.Nil(t, skip)
			assert.InDelta(t, tt.wantValue, result.Value, 1e-9)
			assert.Equal(t, tt.wantUnit, result.Unit)
		})
	}
}

func TestNormalizeUnknownTestSkips(t *testing.T) {
	n := newNormalizer(t)

	result, skip := n.Normalize(labResult("Mystery Marker", 1.0, "mg/dL", "2024-01-15"))
	assert.Nil(t, result)
	require.NotNil(t, skip)
	assert.Equal(t, domain.SkipUnknownTest, skip.Reason)
	assert.Equal(t, "Mystery Marker", skip.Result.TestName)
	assert.Contains(t, skip.Detail, "Mystery Marker")
}

func TestNormalizeUnsupportedUnitSkips(t *testing.T) {
	n := newNormalizer(t)

	result, skip := n.Normalize(labResult("Creatinine", 1.6, "furlongs", "2024-01-15"))
	assert.Nil(t, result)
	require.NotNil(t, skip)
	assert.Equal(t, domain.SkipUnsupportedUnit, skip.Reason)
	assert.Contains(t, skip.Detail, "furlongs")
}

func TestNormalizeBoundaryValuesAreNormal(t *testing.T) {
	n := newNormalizer(t)

	for _, value := range []float64{0.6, 1.3} {
		result, skip := n.Normalize(labResult("Creatinine", value, "mg/dL", "2024-01-15"))
		require.Nil(t, skip)
		assert.Equal(t, domain.StatusNormal, result.Status, "value %v", value)
	}
}

func TestNormalizeAllPartitionsPreservingOrder(t *testing.T) {
	n := newNormalizer(t)

	input := []domain.LabResult{
		labResult("Creatinine", 1.6, "mg/dL", "2024-01-15"),
		labResult("Mystery Marker", 1.0, "mg/dL", "2024-01-15"),
		labResult("HbA1c", 7.2, "%", "2024-01-15"),
		labResult("eGFR", 54, "stones", "2024-01-15"),
	}

	normalized, skipped := n.NormalizeAll(input)

	require.Len(t, normalized, 2)
	require.Len(t, skipped, 2)
	assert.Equal(t, len(input), len(normalized)+len(skipped), "nothing dropped")

	assert.Equal(t, "2160-0", normalized[0].AnalyteCode)
	assert.Equal(t, "4548-4", normalized[1].AnalyteCode)
	assert.Equal(t, domain.SkipUnknownTest, skipped[0].Reason)
	assert.Equal(t, domain.SkipUnsupportedUnit, skipped[1].Reason)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	n := newNormalizer(t)

	input := labResult("Creatinine", 141.5, "umol/L", "2024-01-15")
	before := input

	_, skip := n.Normalize(input)
	require.Nil(t, skip)
	assert.Equal(t, before, input)
}

func TestResolverCachesRepeatedLookups(t *testing.T) {
	resolver, err := NewNameResolver(testLogger(), builtinCatalog(t))
	require.NoError(t, err)

	first, err := resolver.Resolve("Serum Creatinine")
	require.NoError(t, err)
	second, err := resolver.Resolve("serum creatinine")
	require.NoError(t, err)

	assert.Same(t, first, second, "normalized name hits the cache")
}

func TestResolverDoesNotCacheMisses(t *testing.T) {
	resolver, err := NewNameResolver(testLogger(), builtinCatalog(t))
	require.NoError(t, err)

	_, err = resolver.Resolve("Mystery Marker")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = resolver.Resolve("Mystery Marker")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func mustDate(s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
