package catalog

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

// fileAnalyte is the YAML shape of a catalog entry. Ranges use explicit
// normal_low/normal_high keys so open bounds are simply omitted keys.
type fileAnalyte struct {
	Code          string           `mapstructure:"code"`
	DisplayName   string           `mapstructure:"display_name"`
	Domain        string           `mapstructure:"domain"`
	CanonicalUnit string           `mapstructure:"canonical_unit"`
	NormalLow     *float64         `mapstructure:"normal_low"`
	NormalHigh    *float64         `mapstructure:"normal_high"`
	Polarity      string           `mapstructure:"polarity"`
	Synonyms      []string         `mapstructure:"synonyms"`
	StagingRules  []fileStaging    `mapstructure:"staging_rules"`
	Conversions   []fileConversion `mapstructure:"conversions"`
}

type fileStaging struct {
	Op             string  `mapstructure:"op"`
	Threshold      float64 `mapstructure:"threshold"`
	Label          string  `mapstructure:"label"`
	Recommendation string  `mapstructure:"recommendation"`
}

type fileConversion struct {
	FromUnit string  `mapstructure:"from_unit"`
	ToUnit   string  `mapstructure:"to_unit"`
	Factor   float64 `mapstructure:"factor"`
}

type catalogFile struct {
	Analytes []fileAnalyte `mapstructure:"analytes"`
}

// Load constructs the catalog once at process start. The built-in table is
// always the base; when cfg.File is set, its entries overlay the built-in
// ones by code (new codes are appended). Validation failures are fatal.
func Load(cfg domain.CatalogConfig, logger *logrus.Logger) (*Catalog, error) {
	entries := BuiltinEntries()

	if cfg.File != "" {
		overlay, err := readFile(cfg.File)
		if err != nil {
			return nil, &domain.CatalogError{Source: cfg.File, Err: err}
		}
		entries = merge(entries, overlay)
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"file":    cfg.File,
				"entries": len(overlay),
			}).Info("Applied catalog overlay file")
		}
	}

	return New(entries, logger)
}

// readFile parses a YAML catalog file into analyte entries.
func readFile(path string) ([]domain.CanonicalAnalyte, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var file catalogFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("unmarshaling catalog file: %w", err)
	}

	entries := make([]domain.CanonicalAnalyte, 0, len(file.Analytes))
	for _, fa := range file.Analytes {
		entry := domain.CanonicalAnalyte{
			Code:          fa.Code,
			DisplayName:   fa.DisplayName,
			Domain:        domain.HealthDomain(fa.Domain),
			CanonicalUnit: fa.CanonicalUnit,
			NormalRange:   domain.ReferenceRange{Low: fa.NormalLow, High: fa.NormalHigh},
			Polarity:      domain.Polarity(fa.Polarity),
			Synonyms:      fa.Synonyms,
		}
		for _, sr := range fa.StagingRules {
			entry.StagingRules = append(entry.StagingRules, domain.StagingRule{
				Op:             domain.CompareOp(sr.Op),
				Threshold:      sr.Threshold,
				Label:          sr.Label,
				Recommendation: sr.Recommendation,
			})
		}
		for _, conv := range fa.Conversions {
			entry.Conversions = append(entry.Conversions, domain.UnitConversion{
				FromUnit: conv.FromUnit,
				ToUnit:   conv.ToUnit,
				Factor:   conv.Factor,
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// merge overlays file entries onto the base table by code.
func merge(base, overlay []domain.CanonicalAnalyte) []domain.CanonicalAnalyte {
	index := make(map[string]int, len(base))
	for i, entry := range base {
		index[entry.Code] = i
	}

	out := make([]domain.CanonicalAnalyte, len(base))
	copy(out, base)
	for _, entry := range overlay {
		if i, ok := index[entry.Code]; ok {
			out[i] = entry
		} else {
			out = append(out, entry)
		}
	}
	return out
}
