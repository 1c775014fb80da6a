package service

import (
	"github.com/sirupsen/logrus"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

// ClassifierService groups normalized results into per-domain buckets. The
// grouping key is the domain already carried on each result (assigned from
// the catalog at normalization time, never re-derived here), so the grouping
// is a strict partition of the input.
type ClassifierService struct {
	logger *logrus.Logger
}

// NewClassifierService creates a new domain classifier service.
func NewClassifierService(logger *logrus.Logger) *ClassifierService {
	return &ClassifierService{logger: logger}
}

// Classify partitions results into domain buckets. Within a bucket, results
// are grouped further by analyte code with input chronological order
// preserved. Results with an unset domain land in the reserved Other domain;
// nothing is ever dropped.
func (s *ClassifierService) Classify(results []domain.NormalizedResult) map[domain.HealthDomain]*domain.DomainBucket {
	buckets := make(map[domain.HealthDomain]*domain.DomainBucket)

	for _, r := range results {
		d := r.Domain
		if d == "" {
			d = domain.Other
		}

		bucket, ok := buckets[d]
		if !ok {
			bucket = &domain.DomainBucket{
				Domain: d,
				Series: make(map[string][]domain.NormalizedResult),
			}
			buckets[d] = bucket
		}

		if _, seen := bucket.Series[r.AnalyteCode]; !seen {
			bucket.Codes = append(bucket.Codes, r.AnalyteCode)
		}
		bucket.Series[r.AnalyteCode] = append(bucket.Series[r.AnalyteCode], r)
		bucket.Findings = append(bucket.Findings, r)
	}

	s.logger.WithFields(logrus.Fields{
		"results": len(results),
		"domains": len(buckets),
	}).Debug("Classified results into domain buckets")

	return buckets
}
