package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadBuiltinOnly(t *testing.T) {
	c, err := Load(domain.CatalogConfig{}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, len(BuiltinEntries()), c.Len())

	analyte, err := c.Lookup("HbA1c")
	require.NoError(t, err)
	assert.Equal(t, "4548-4", analyte.Code)
}

func TestLoadWithOverlayFile(t *testing.T) {
	path := writeCatalogFile(t, `
analytes:
  - code: "2160-0"
    display_name: "Creatinine"
    domain: "Renal"
    canonical_unit: "mg/dL"
    normal_low: 0.5
    normal_high: 1.2
    polarity: "LOWER_IS_BETTER"
    synonyms: ["Creatinine", "Serum Creatinine"]
  - code: "14957-5"
    display_name: "Microalbumin"
    domain: "Renal"
    canonical_unit: "mg/L"
    normal_high: 30
    polarity: "LOWER_IS_BETTER"
    synonyms: ["Microalbumin", "Urine Microalbumin"]
`)

	c, err := Load(domain.CatalogConfig{File: path}, testLogger())
	require.NoError(t, err)

	// Overlaid entry replaces the built-in range.
	rr, err := c.NormalRange("2160-0")
	require.NoError(t, err)
	assert.Equal(t, 0.5, *rr.Low)
	assert.Equal(t, 1.2, *rr.High)

	// New entry is appended and resolvable.
	analyte, err := c.Lookup("urine microalbumin")
	require.NoError(t, err)
	assert.Equal(t, "14957-5", analyte.Code)
	assert.Equal(t, len(BuiltinEntries())+1, c.Len())
}

func TestLoadFailsFastOnInvalidOverlay(t *testing.T) {
	path := writeCatalogFile(t, `
analytes:
  - code: "9999-9"
    display_name: "Broken"
    domain: "Renal"
    canonical_unit: "mg/dL"
    normal_low: 10
    normal_high: 5
    synonyms: ["Broken"]
`)

	_, err := Load(domain.CatalogConfig{File: path}, testLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidCatalogEntry)
}

func TestLoadFailsOnDomainOutsideEnumeratedSet(t *testing.T) {
	path := writeCatalogFile(t, `
analytes:
  - code: "9999-9"
    display_name: "Broken"
    domain: "Orthopedic"
    canonical_unit: "mg/dL"
    synonyms: ["Broken"]
`)

	_, err := Load(domain.CatalogConfig{File: path}, testLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidCatalogEntry)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(domain.CatalogConfig{File: "/nonexistent/catalog.yaml"}, testLogger())
	require.Error(t, err)
}
