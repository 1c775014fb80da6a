// Package domain contains core business entities and types for longitudinal
// laboratory result synthesis: canonical analyte identities, normalized
// results, health-domain grouping, and trend findings.
//
// Analyte codes follow LOINC (Logical Observation Identifiers Names and
// Codes); only the notion of a canonical code is used, not the full external
// code system.
package domain

import (
	"errors"
	"time"
)

// HealthDomain represents a physiological system grouping used to organize
// lab findings for a clinical reader.
type HealthDomain string

const (
	Renal          HealthDomain = "Renal"
	Endocrine      HealthDomain = "Endocrine"
	Lipid          HealthDomain = "Lipid"
	Thyroid        HealthDomain = "Thyroid"
	Hematology     HealthDomain = "Hematology"
	Liver          HealthDomain = "Liver"
	Cardiovascular HealthDomain = "Cardiovascular"
	Immunology     HealthDomain = "Immunology"
	Other          HealthDomain = "Other"
)

// DomainOrder is the canonical presentation order for health domains in a
// patient summary. Domains without findings are omitted at assembly time.
var DomainOrder = []HealthDomain{
	Renal,
	Endocrine,
	Lipid,
	Thyroid,
	Hematology,
	Liver,
	Cardiovascular,
	Immunology,
	Other,
}

// Status represents the Normal/High/Low classification of a value against
// its reference range. Boundary values are Normal (closed interval).
type Status string

const (
	StatusNormal Status = "Normal"
	StatusHigh   Status = "High"
	StatusLow    Status = "Low"
)

// TrendDirection represents the clinical direction of a longitudinal trend.
type TrendDirection string

const (
	Improving TrendDirection = "Improving"
	Worsening TrendDirection = "Worsening"
	Stable    TrendDirection = "Stable"
)

// Polarity declares whether higher or lower values are clinically better for
// an analyte. It is part of the catalog, never inferred from the data.
type Polarity string

const (
	LowerIsBetter  Polarity = "LOWER_IS_BETTER"
	HigherIsBetter Polarity = "HIGHER_IS_BETTER"
)

// SkipReason explains why a raw lab entry produced no NormalizedResult.
// Skips are collected and surfaced alongside the summary, never silently
// dropped and never fatal to the patient's synthesis.
type SkipReason string

const (
	SkipUnknownTest     SkipReason = "UNKNOWN_TEST"
	SkipUnsupportedUnit SkipReason = "UNSUPPORTED_UNIT"
)

// Validation errors for clinical data integrity
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidDomain       = errors.New("invalid health domain")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidDirection    = errors.New("invalid trend direction")
	ErrInvalidPolarity     = errors.New("invalid polarity")
	ErrInvalidStagingRule  = errors.New("invalid staging rule")
	ErrInvalidCatalogEntry = errors.New("invalid catalog entry")
	ErrNoTrend             = errors.New("no trend")
)

// IsValid validates the health domain against the fixed enumerated set.
// Catalog loading depends on this to fail fast on misconfigured entries.
func (d HealthDomain) IsValid() bool {
	switch d {
	case Renal, Endocrine, Lipid, Thyroid, Hematology, Liver, Cardiovascular, Immunology, Other:
		return true
	default:
		return false
	}
}

// String returns the string representation of the health domain.
func (d HealthDomain) String() string {
	return string(d)
}

// IsValid validates the status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusNormal, StatusHigh, StatusLow:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Arrow returns the report indicator for an abnormal status (↑, ↓, or empty
// for Normal), matching clinical report conventions.
func (s Status) Arrow() string {
	switch s {
	case StatusHigh:
		return "↑"
	case StatusLow:
		return "↓"
	default:
		return ""
	}
}

// IsAbnormal reports whether the status requires reader attention.
func (s Status) IsAbnormal() bool {
	return s == StatusHigh || s == StatusLow
}

// LogFields returns structured logging fields for audit trails.
func (s Status) LogFields() map[string]any {
	return map[string]any{
		"status":      string(s),
		"is_abnormal": s.IsAbnormal(),
		"is_valid":    s.IsValid(),
	}
}

// IsValid validates the trend direction.
func (td TrendDirection) IsValid() bool {
	switch td {
	case Improving, Worsening, Stable:
		return true
	default:
		return false
	}
}

// String returns the string representation of the trend direction.
func (td TrendDirection) String() string {
	return string(td)
}

// IsValid validates the polarity.
func (p Polarity) IsValid() bool {
	switch p {
	case LowerIsBetter, HigherIsBetter:
		return true
	default:
		return false
	}
}

// String returns the string representation of the polarity.
func (p Polarity) String() string {
	return string(p)
}

// IsValid validates the skip reason.
func (sr SkipReason) IsValid() bool {
	switch sr {
	case SkipUnknownTest, SkipUnsupportedUnit:
		return true
	default:
		return false
	}
}

// String returns the string representation of the skip reason.
func (sr SkipReason) String() string {
	return string(sr)
}

// Date is a calendar date (no time-of-day component). Lab results carry
// collection dates only; chronological ordering and trend windows are
// defined over dates, not timestamps.
type Date struct {
	time.Time
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// NewDate constructs a Date at UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON decodes a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// String returns the YYYY-MM-DD representation.
func (d Date) String() string {
	return d.Format(DateLayout)
}
