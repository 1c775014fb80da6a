package domain

import (
	"context"
	"io"
)

// Catalog exposes the static reference table of canonical analytes.
// Implementations are immutable after load and safe for concurrent readers.
type Catalog interface {
	// Lookup resolves a raw test name to its canonical analyte. Matching is
	// case-insensitive and synonym-exact; no fuzzy matching. Returns
	// ErrNotFound when no synonym matches.
	Lookup(rawName string) (*CanonicalAnalyte, error)

	// Get returns the analyte for a canonical code.
	Get(code string) (*CanonicalAnalyte, error)

	// NormalRange returns the analyte's reference range in canonical units.
	NormalRange(code string) (ReferenceRange, error)

	// StagingRules returns the analyte's staging rules ordered
	// most-severe-first.
	StagingRules(code string) ([]StagingRule, error)

	// Conversion returns the multiplicative factor from fromUnit to the
	// analyte's canonical unit, or ErrNotFound when no entry exists.
	Conversion(code, fromUnit string) (float64, error)

	// Codes returns all canonical codes, sorted.
	Codes() []string
}

// Normalizer maps a raw lab entry to a canonical, range-classified result.
type Normalizer interface {
	Normalize(result LabResult) (*NormalizedResult, *SkippedEntry)
}

// DomainClassifier groups normalized results into per-domain buckets.
type DomainClassifier interface {
	Classify(results []NormalizedResult) map[HealthDomain]*DomainBucket
}

// TrendAnalyzer derives longitudinal conclusions per analyte series.
type TrendAnalyzer interface {
	// Analyze returns ErrNoTrend (not a failure) for series with fewer than
	// two entries or a zero baseline.
	Analyze(code string, series []NormalizedResult) (*TrendFinding, error)
}

// SummaryAssembler merges classification and trend outputs into the final
// domain-grouped patient summary.
type SummaryAssembler interface {
	Assemble(patientID string, buckets map[HealthDomain]*DomainBucket, trends map[string]*TrendFinding, skipped []SkippedEntry) *PatientSummary
}

// Synthesizer runs the full pipeline for one patient.
type Synthesizer interface {
	Synthesize(ctx context.Context, data *PatientData) (*PatientSummary, error)
}

// ReportRenderer formats a structured patient summary for display. Renderers
// are external collaborators: they consume engine output and never influence
// its decisions.
type ReportRenderer interface {
	Render(w io.Writer, summary *PatientSummary) error
	ContentType() string
}

// SummaryRepository persists synthesized summaries for later retrieval.
type SummaryRepository interface {
	Save(ctx context.Context, record *SummaryRecord) error
	GetByID(ctx context.Context, id string) (*SummaryRecord, error)
	ListByPatient(ctx context.Context, patientID string, limit int) ([]*SummaryRecord, error)
}

// ConfigManager provides access to validated application configuration.
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetCatalogConfig() *CatalogConfig
	Validate() error
}
