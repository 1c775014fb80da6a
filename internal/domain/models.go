package domain

import (
	"errors"
	"fmt"
)

// LabResult is a single raw laboratory measurement as supplied by the
// ingesting collaborator. It is immutable once ingested; the engine receives
// a read-only sequence per patient and never mutates it.
type LabResult struct {
	TestName string  `json:"test_name" validate:"required"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit" validate:"required"`
	Date     Date    `json:"date" validate:"required"`
}

// Validate ensures the raw lab entry is structurally usable before it enters
// the normalization pipeline.
func (r *LabResult) Validate() error {
	if r.TestName == "" {
		return fmt.Errorf("lab result validation: %w", errors.New("test name is required"))
	}
	if r.Unit == "" {
		return fmt.Errorf("lab result validation: %w", errors.New("unit is required"))
	}
	if r.Date.IsZero() {
		return fmt.Errorf("lab result validation: %w", errors.New("date is required"))
	}
	return nil
}

// PatientData is the per-patient input envelope: an ordered sequence of raw
// lab results. Any ingestion format (JSON, PDF-extracted table, CSV) must be
// converted to this shape before reaching the engine.
type PatientData struct {
	PatientID string      `json:"patient_id" validate:"required"`
	Labs      []LabResult `json:"labs"`
}

// Validate checks the input envelope and every contained lab entry.
func (p *PatientData) Validate() error {
	if p.PatientID == "" {
		return fmt.Errorf("patient data validation: %w", errors.New("patient ID is required"))
	}
	for i := range p.Labs {
		if err := p.Labs[i].Validate(); err != nil {
			return fmt.Errorf("patient data validation: lab %d: %w", i, err)
		}
	}
	return nil
}

// ReferenceRange is a numeric normal range in the analyte's canonical unit.
// Either bound may be open (nil): eGFR has no upper bound, LDL no lower.
type ReferenceRange struct {
	Low  *float64 `json:"low,omitempty"`
	High *float64 `json:"high,omitempty"`
}

// Contains reports whether the value lies within the range. Bounds are
// inclusive: boundary values classify as Normal.
func (rr ReferenceRange) Contains(value float64) bool {
	if rr.Low != nil && value < *rr.Low {
		return false
	}
	if rr.High != nil && value > *rr.High {
		return false
	}
	return true
}

// Classify maps a canonical-unit value onto a Status against this range.
func (rr ReferenceRange) Classify(value float64) Status {
	if rr.Low != nil && value < *rr.Low {
		return StatusLow
	}
	if rr.High != nil && value > *rr.High {
		return StatusHigh
	}
	return StatusNormal
}

// String renders the range for clinical reports ("0.6-1.3", ">60", "<200").
func (rr ReferenceRange) String() string {
	switch {
	case rr.Low != nil && rr.High != nil:
		return fmt.Sprintf("%s-%s", trimFloat(*rr.Low), trimFloat(*rr.High))
	case rr.Low != nil:
		return fmt.Sprintf(">%s", trimFloat(*rr.Low))
	case rr.High != nil:
		return fmt.Sprintf("<%s", trimFloat(*rr.High))
	default:
		return ""
	}
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	return s
}

// CompareOp is the comparison operator of a staging rule threshold.
type CompareOp string

const (
	OpLessThan       CompareOp = "lt"
	OpLessOrEqual    CompareOp = "lte"
	OpGreaterThan    CompareOp = "gt"
	OpGreaterOrEqual CompareOp = "gte"
)

// IsValid validates the comparison operator.
func (op CompareOp) IsValid() bool {
	switch op {
	case OpLessThan, OpLessOrEqual, OpGreaterThan, OpGreaterOrEqual:
		return true
	default:
		return false
	}
}

// Evaluate applies the operator to value vs. threshold.
func (op CompareOp) Evaluate(value, threshold float64) bool {
	switch op {
	case OpLessThan:
		return value < threshold
	case OpLessOrEqual:
		return value <= threshold
	case OpGreaterThan:
		return value > threshold
	case OpGreaterOrEqual:
		return value >= threshold
	default:
		return false
	}
}

// StagingRule maps a threshold on the latest canonical-unit value to a
// clinical severity label and recommendation (e.g., eGFR < 30 → "Stage 4
// CKD"). Rules for an analyte are ordered most-severe-first so that the
// first match is the deterministic tie-break.
type StagingRule struct {
	Op             CompareOp `json:"op"`
	Threshold      float64   `json:"threshold"`
	Label          string    `json:"label"`
	Recommendation string    `json:"recommendation,omitempty"`
}

// Matches reports whether the latest value satisfies this rule's threshold.
func (sr StagingRule) Matches(value float64) bool {
	return sr.Op.Evaluate(value, sr.Threshold)
}

// Validate ensures the staging rule is usable for deterministic matching.
func (sr StagingRule) Validate() error {
	if !sr.Op.IsValid() {
		return fmt.Errorf("staging rule validation: %w: operator %q", ErrInvalidStagingRule, sr.Op)
	}
	if sr.Label == "" {
		return fmt.Errorf("staging rule validation: %w: label is required", ErrInvalidStagingRule)
	}
	return nil
}

// UnitConversion is a fixed multiplicative conversion between a reported
// unit and an analyte's canonical unit. Conversions are analyte-specific;
// generic dimensional analysis is deliberately out of scope.
type UnitConversion struct {
	FromUnit string  `json:"from_unit"`
	ToUnit   string  `json:"to_unit"`
	Factor   float64 `json:"factor"`
}

// CanonicalAnalyte is a static catalog entry: the canonical identity of a
// measurable test, its accepted name synonyms, unit, normal range, health
// domain, polarity, and ordered staging rules. Read-only after load.
type CanonicalAnalyte struct {
	Code          string           `json:"code" validate:"required"` // LOINC-style code, e.g. "2160-0"
	DisplayName   string           `json:"display_name" validate:"required"`
	Domain        HealthDomain     `json:"domain"`
	CanonicalUnit string           `json:"canonical_unit"`
	NormalRange   ReferenceRange   `json:"normal_range"`
	Polarity      Polarity         `json:"polarity"`
	Synonyms      []string         `json:"synonyms"`
	StagingRules  []StagingRule    `json:"staging_rules,omitempty"` // ordered most-severe-first
	Conversions   []UnitConversion `json:"conversions,omitempty"`
}

// Validate enforces the load-time invariants every downstream guarantee
// depends on. A failure here is fatal to engine start.
func (a *CanonicalAnalyte) Validate() error {
	if a.Code == "" {
		return fmt.Errorf("analyte validation: %w: code is required", ErrInvalidCatalogEntry)
	}
	if a.DisplayName == "" {
		return fmt.Errorf("analyte validation: %w: display name is required (code %s)", ErrInvalidCatalogEntry, a.Code)
	}
	if a.Domain != "" && !a.Domain.IsValid() {
		return fmt.Errorf("analyte validation: %w: domain %q outside the enumerated set (code %s)", ErrInvalidCatalogEntry, a.Domain, a.Code)
	}
	if a.NormalRange.Low != nil && a.NormalRange.High != nil && *a.NormalRange.Low > *a.NormalRange.High {
		return fmt.Errorf("analyte validation: %w: normal_low %g > normal_high %g (code %s)", ErrInvalidCatalogEntry, *a.NormalRange.Low, *a.NormalRange.High, a.Code)
	}
	if a.Polarity != "" && !a.Polarity.IsValid() {
		return fmt.Errorf("analyte validation: %w: polarity %q (code %s)", ErrInvalidCatalogEntry, a.Polarity, a.Code)
	}
	if len(a.Synonyms) == 0 {
		return fmt.Errorf("analyte validation: %w: at least one synonym is required (code %s)", ErrInvalidCatalogEntry, a.Code)
	}
	for i, rule := range a.StagingRules {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("analyte validation: code %s rule %d: %w", a.Code, i, err)
		}
	}
	for i, conv := range a.Conversions {
		if conv.Factor <= 0 {
			return fmt.Errorf("analyte validation: %w: conversion %d has non-positive factor (code %s)", ErrInvalidCatalogEntry, i, a.Code)
		}
		if conv.FromUnit == "" || conv.ToUnit == "" {
			return fmt.Errorf("analyte validation: %w: conversion %d has empty unit (code %s)", ErrInvalidCatalogEntry, i, a.Code)
		}
	}
	return nil
}

// EffectiveDomain returns the analyte's domain, falling back to the reserved
// Other domain when unset. Results are never dropped for lacking a domain.
func (a *CanonicalAnalyte) EffectiveDomain() HealthDomain {
	if a.Domain == "" {
		return Other
	}
	return a.Domain
}

// NormalizedResult is a LabResult resolved to a canonical analyte, converted
// to the canonical unit, and classified against the normal range. Derived,
// never mutated after creation.
type NormalizedResult struct {
	AnalyteCode string       `json:"analyte_code"`
	DisplayName string       `json:"display_name"`
	RawName     string       `json:"raw_name"`
	Domain      HealthDomain `json:"domain"`
	Value       float64      `json:"value"` // in the canonical unit
	Unit        string       `json:"unit"`  // canonical unit
	Date        Date         `json:"date"`
	Status      Status       `json:"status"`
}

// SkippedEntry reports a raw lab entry that produced no NormalizedResult,
// with the reason. Part of the engine output, not an error.
type SkippedEntry struct {
	Result LabResult  `json:"result"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// DomainBucket groups normalized results for one health domain, keyed by
// analyte code with input chronological order preserved within each series.
// Rebuilt per synthesis call; not persisted.
type DomainBucket struct {
	Domain   HealthDomain                  `json:"domain"`
	Codes    []string                      `json:"codes"` // analyte codes in first-seen order
	Series   map[string][]NormalizedResult `json:"series"`
	Findings []NormalizedResult            `json:"findings"` // all results, input order
}

// WorstStatus returns the most attention-worthy status in the bucket.
// High and Low both outrank Normal; High outranks Low only by convention of
// first occurrence.
func (b *DomainBucket) WorstStatus() Status {
	worst := StatusNormal
	for _, r := range b.Findings {
		if r.Status.IsAbnormal() {
			worst = r.Status
			break
		}
	}
	return worst
}

// AbnormalFindings returns the bucket's out-of-range results in input order.
func (b *DomainBucket) AbnormalFindings() []NormalizedResult {
	var out []NormalizedResult
	for _, r := range b.Findings {
		if r.Status.IsAbnormal() {
			out = append(out, r)
		}
	}
	return out
}

// TrendFinding is the longitudinal conclusion for one analyte, derived from
// the earliest and latest of at least two chronologically ordered results.
type TrendFinding struct {
	AnalyteCode    string         `json:"analyte_code"`
	DisplayName    string         `json:"display_name"`
	PercentChange  float64        `json:"percent_change"` // fractional, e.g. -0.10
	Direction      TrendDirection `json:"direction"`
	StagingLabel   string         `json:"staging_label"`
	Recommendation string         `json:"recommendation,omitempty"`
	EarliestDate   Date           `json:"earliest_date"`
	LatestDate     Date           `json:"latest_date"`
	LatestValue    float64        `json:"latest_value"`
}

// HealthSummary is the per-domain section of a patient summary.
type HealthSummary struct {
	Domain    HealthDomain       `json:"domain"`
	Findings  []NormalizedResult `json:"findings"`
	Trends    []TrendFinding     `json:"trends,omitempty"`
	Narrative string             `json:"narrative"`
}

// PatientSummary is the full structured output of one synthesis call,
// handed to external report renderers. The engine itself produces no display
// strings beyond the fixed narrative templates.
type PatientSummary struct {
	PatientID        string          `json:"patient_id"`
	HealthSummaries  []HealthSummary `json:"health_summaries"`
	OverallNarrative string          `json:"overall_narrative"`
	Skipped          []SkippedEntry  `json:"skipped,omitempty"`
}
