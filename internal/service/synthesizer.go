package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

// SynthesizerService orchestrates the full pipeline for one patient:
// normalize, classify into domains, analyze trends, assemble the summary.
// Every stage is deterministic, so equal input always yields an equal
// summary.
type SynthesizerService struct {
	logger     *logrus.Logger
	normalizer *NormalizerService
	classifier *ClassifierService
	trends     *TrendService
	assembler  *AssemblerService
}

// NewSynthesizerService wires the pipeline stages over a shared catalog.
func NewSynthesizerService(logger *logrus.Logger, cat domain.Catalog) (*SynthesizerService, error) {
	normalizer, err := NewNormalizerService(logger, cat)
	if err != nil {
		return nil, fmt.Errorf("failed to create normalizer: %w", err)
	}

	return &SynthesizerService{
		logger:     logger,
		normalizer: normalizer,
		classifier: NewClassifierService(logger),
		trends:     NewTrendService(logger, cat),
		assembler:  NewAssemblerService(logger),
	}, nil
}

// Synthesize runs the pipeline over a patient's raw lab history.
func (s *SynthesizerService) Synthesize(ctx context.Context, data *domain.PatientData) (*domain.PatientSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid patient data: %w", err)
	}

	log := s.logger.WithFields(logrus.Fields{
		"patient_id": data.PatientID,
		"results":    len(data.Labs),
	})
	log.Info("Starting lab synthesis")

	normalized, skipped := s.normalizer.NormalizeAll(data.Labs)
	log.WithFields(logrus.Fields{
		"normalized": len(normalized),
		"skipped":    len(skipped),
	}).Debug("Normalization complete")

	buckets := s.classifier.Classify(normalized)
	trends := s.trends.AnalyzeAll(buckets)

	summary := s.assembler.Assemble(data.PatientID, buckets, trends, skipped)
	log.WithFields(logrus.Fields{
		"domains": len(summary.HealthSummaries),
		"trends":  len(trends),
	}).Info("Lab synthesis complete")

	return summary, nil
}
