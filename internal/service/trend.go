package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

// noiseThreshold is the fractional change below which a series is reported
// Stable regardless of polarity.
const noiseThreshold = 0.02

// defaultStagingLabel is returned when the latest value satisfies no staging
// rule for the analyte.
const defaultStagingLabel = "within expected range"

// TrendService derives longitudinal conclusions per analyte series. The
// trend compares only the earliest and latest entries of the window; this
// endpoint-only behavior is the defined contract, not an average slope over
// intermediate points.
type TrendService struct {
	logger  *logrus.Logger
	catalog domain.Catalog
}

// NewTrendService creates a new trend analyzer service.
func NewTrendService(logger *logrus.Logger, cat domain.Catalog) *TrendService {
	return &TrendService{logger: logger, catalog: cat}
}

// Analyze computes the trend finding for one analyte series. Series with
// fewer than two entries, or with a zero earliest value, yield ErrNoTrend —
// an expected outcome, not a failure. The series is expected sorted
// ascending by date; Analyze sorts a copy to guarantee the precondition
// without mutating the caller's slice.
func (s *TrendService) Analyze(code string, series []domain.NormalizedResult) (*domain.TrendFinding, error) {
	if len(series) < 2 {
		return nil, domain.ErrNoTrend
	}

	analyte, err := s.catalog.Get(code)
	if err != nil {
		return nil, fmt.Errorf("trend analysis for %s: %w", code, err)
	}

	sorted := make([]domain.NormalizedResult, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})

	earliest := sorted[0]
	latest := sorted[len(sorted)-1]

	if earliest.Value == 0 {
		// Zero baseline makes percent change undefined; report no trend
		// rather than propagating an arithmetic fault.
		return nil, domain.ErrNoTrend
	}

	pct := (latest.Value - earliest.Value) / earliest.Value
	direction := s.direction(pct, analyte.Polarity)
	label, recommendation := s.stage(analyte, latest.Value)

	finding := &domain.TrendFinding{
		AnalyteCode:    code,
		DisplayName:    analyte.DisplayName,
		PercentChange:  pct,
		Direction:      direction,
		StagingLabel:   label,
		Recommendation: recommendation,
		EarliestDate:   earliest.Date,
		LatestDate:     latest.Date,
		LatestValue:    latest.Value,
	}

	s.logger.WithFields(logrus.Fields{
		"analyte_code":   code,
		"percent_change": pct,
		"direction":      direction,
		"staging_label":  label,
	}).Debug("Computed trend finding")

	return finding, nil
}

// AnalyzeAll runs trend analysis for each analyte series in the buckets,
// keyed by analyte code. Series without a trend are simply absent from the
// result map.
func (s *TrendService) AnalyzeAll(buckets map[domain.HealthDomain]*domain.DomainBucket) map[string]*domain.TrendFinding {
	trends := make(map[string]*domain.TrendFinding)

	for _, bucket := range buckets {
		for _, code := range bucket.Codes {
			finding, err := s.Analyze(code, bucket.Series[code])
			if err != nil {
				// ErrNoTrend is the expected outcome for single-point and
				// zero-baseline series.
				continue
			}
			trends[code] = finding
		}
	}

	return trends
}

// direction maps a fractional change onto a clinical direction using the
// analyte's catalog polarity. Changes below the noise threshold are Stable.
func (s *TrendService) direction(pct float64, polarity domain.Polarity) domain.TrendDirection {
	if math.Abs(pct) < noiseThreshold {
		return domain.Stable
	}

	increased := pct > 0
	if polarity == domain.HigherIsBetter {
		if increased {
			return domain.Improving
		}
		return domain.Worsening
	}

	// LowerIsBetter, and the conservative default for unset polarity.
	if increased {
		return domain.Worsening
	}
	return domain.Improving
}

// stage evaluates the analyte's ordered staging rules against the latest
// value only. Rules are ordered most-severe-first, so the first match is the
// deterministic tie-break. Trend direction never alters staging.
func (s *TrendService) stage(analyte *domain.CanonicalAnalyte, latest float64) (string, string) {
	for _, rule := range analyte.StagingRules {
		if rule.Matches(latest) {
			return rule.Label, rule.Recommendation
		}
	}
	return defaultStagingLabel, ""
}
