package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

func patientData(patientID string, value float64) *domain.PatientData {
	date, _ := domain.ParseDate("2024-01-15")
	return &domain.PatientData{
		PatientID: patientID,
		Labs: []domain.LabResult{
			{TestName: "Creatinine", Value: value, Unit: "mg/dL", Date: date},
		},
	}
}

func TestKeyIsDeterministic(t *testing.T) {
	first, err := Key(patientData("PT123456", 1.6))
	require.NoError(t, err)
	second, err := Key(patientData("PT123456", 1.6))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "labsynth:summary:"))
}

func TestKeyChangesWithInput(t *testing.T) {
	base, err := Key(patientData("PT123456", 1.6))
	require.NoError(t, err)

	differentValue, err := Key(patientData("PT123456", 1.7))
	require.NoError(t, err)
	differentPatient, err := Key(patientData("PT654321", 1.6))
	require.NoError(t, err)

	assert.NotEqual(t, base, differentValue)
	assert.NotEqual(t, base, differentPatient)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(domain.CacheConfig{RedisURL: "not-a-url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Redis URL")
}
