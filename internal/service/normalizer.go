package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

// NormalizerService maps raw lab entries to canonical, range-classified
// results. It is a pure function of its input and the static catalog: no
// side effects, no mutation of the input.
type NormalizerService struct {
	logger   *logrus.Logger
	catalog  domain.Catalog
	resolver *NameResolver
}

// NewNormalizerService creates a new normalizer service.
func NewNormalizerService(logger *logrus.Logger, cat domain.Catalog) (*NormalizerService, error) {
	resolver, err := NewNameResolver(logger, cat)
	if err != nil {
		return nil, fmt.Errorf("creating name resolver: %w", err)
	}
	return &NormalizerService{
		logger:   logger,
		catalog:  cat,
		resolver: resolver,
	}, nil
}

// Normalize resolves the analyte, converts the value to the canonical unit,
// and computes the status against the reference range. Entries that cannot
// be normalized come back as SkippedEntry with a reason; a skip never aborts
// the patient's synthesis.
func (s *NormalizerService) Normalize(result domain.LabResult) (*domain.NormalizedResult, *domain.SkippedEntry) {
	analyte, err := s.resolver.Resolve(result.TestName)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"raw_name": result.TestName,
			"reason":   domain.SkipUnknownTest,
		}).Debug("Skipping lab entry")
		return nil, &domain.SkippedEntry{
			Result: result,
			Reason: domain.SkipUnknownTest,
			Detail: fmt.Sprintf("no catalog match for test name %q", result.TestName),
		}
	}

	factor, err := s.catalog.Conversion(analyte.Code, result.Unit)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"raw_name":     result.TestName,
			"analyte_code": analyte.Code,
			"unit":         result.Unit,
			"reason":       domain.SkipUnsupportedUnit,
		}).Debug("Skipping lab entry")
		return nil, &domain.SkippedEntry{
			Result: result,
			Reason: domain.SkipUnsupportedUnit,
			Detail: fmt.Sprintf("no conversion from %q to canonical unit %q for %s", result.Unit, analyte.CanonicalUnit, analyte.Code),
		}
	}

	value := result.Value * factor

	return &domain.NormalizedResult{
		AnalyteCode: analyte.Code,
		DisplayName: analyte.DisplayName,
		RawName:     result.TestName,
		Domain:      analyte.EffectiveDomain(),
		Value:       value,
		Unit:        analyte.CanonicalUnit,
		Date:        result.Date,
		Status:      analyte.NormalRange.Classify(value),
	}, nil
}

// NormalizeAll normalizes a sequence, partitioning it into results and
// skipped entries while preserving input order in both.
func (s *NormalizerService) NormalizeAll(results []domain.LabResult) ([]domain.NormalizedResult, []domain.SkippedEntry) {
	normalized := make([]domain.NormalizedResult, 0, len(results))
	var skipped []domain.SkippedEntry

	for _, r := range results {
		n, skip := s.Normalize(r)
		if skip != nil {
			skipped = append(skipped, *skip)
			continue
		}
		normalized = append(normalized, *n)
	}

	return normalized, skipped
}
