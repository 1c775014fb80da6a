// Package catalog provides the static reference table of canonical analytes:
// synonym-aware name resolution, reference ranges, unit conversions, and
// staging rules. The catalog is immutable after construction and safe for
// concurrent readers; all load-time validation happens in New.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

// Catalog is an immutable lookup table over canonical analytes.
type Catalog struct {
	byCode    map[string]*domain.CanonicalAnalyte
	bySynonym map[string]string // normalized synonym -> canonical code
	codes     []string
}

// New builds a catalog from analyte entries, validating every entry and
// every synonym. Any invalid entry is fatal: the engine must not start with
// a catalog it cannot trust.
func New(entries []domain.CanonicalAnalyte, logger *logrus.Logger) (*Catalog, error) {
	c := &Catalog{
		byCode:    make(map[string]*domain.CanonicalAnalyte, len(entries)),
		bySynonym: make(map[string]string),
	}

	for i := range entries {
		entry := entries[i]
		if err := entry.Validate(); err != nil {
			return nil, &domain.CatalogError{Code: entry.Code, Source: "catalog", Err: err}
		}
		if _, dup := c.byCode[entry.Code]; dup {
			return nil, &domain.CatalogError{
				Code:   entry.Code,
				Source: "catalog",
				Err:    fmt.Errorf("%w: duplicate analyte code", domain.ErrInvalidCatalogEntry),
			}
		}
		c.byCode[entry.Code] = &entry
		c.codes = append(c.codes, entry.Code)

		for _, syn := range entry.Synonyms {
			key := NormalizeName(syn)
			if key == "" {
				return nil, &domain.CatalogError{
					Code:   entry.Code,
					Source: "catalog",
					Err:    fmt.Errorf("%w: empty synonym", domain.ErrInvalidCatalogEntry),
				}
			}
			if existing, ok := c.bySynonym[key]; ok && existing != entry.Code {
				// A name claimed by two analytes can never resolve
				// deterministically; reject the catalog outright.
				return nil, &domain.CatalogError{
					Code:   entry.Code,
					Source: "catalog",
					Err:    fmt.Errorf("%w: synonym %q already mapped to %s", domain.ErrInvalidCatalogEntry, syn, existing),
				}
			}
			c.bySynonym[key] = entry.Code
		}
	}

	sort.Strings(c.codes)

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"analytes": len(c.byCode),
			"synonyms": len(c.bySynonym),
		}).Info("Reference catalog loaded")
	}

	return c, nil
}

// NormalizeName canonicalizes a raw test name for synonym matching:
// lowercase, trimmed, inner whitespace collapsed. Matching remains exact
// after normalization; no fuzzy or partial matching.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// NormalizeUnit canonicalizes a unit string for comparison. Unit spellings
// vary across lab feeds (µmol/L vs umol/L, mL/min/1.73m² vs ...m2); the
// comparison ignores case and those spelling variants only.
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	u = strings.ReplaceAll(u, "µ", "u")
	u = strings.ReplaceAll(u, "²", "2")
	return u
}

// Lookup resolves a raw test name to its canonical analyte.
func (c *Catalog) Lookup(rawName string) (*domain.CanonicalAnalyte, error) {
	code, ok := c.bySynonym[NormalizeName(rawName)]
	if !ok {
		return nil, fmt.Errorf("lookup %q: %w", rawName, domain.ErrNotFound)
	}
	return c.byCode[code], nil
}

// Get returns the analyte for a canonical code.
func (c *Catalog) Get(code string) (*domain.CanonicalAnalyte, error) {
	analyte, ok := c.byCode[code]
	if !ok {
		return nil, fmt.Errorf("analyte %s: %w", code, domain.ErrNotFound)
	}
	return analyte, nil
}

// NormalRange returns the analyte's reference range in canonical units.
func (c *Catalog) NormalRange(code string) (domain.ReferenceRange, error) {
	analyte, err := c.Get(code)
	if err != nil {
		return domain.ReferenceRange{}, err
	}
	return analyte.NormalRange, nil
}

// StagingRules returns the analyte's staging rules ordered most-severe-first.
func (c *Catalog) StagingRules(code string) ([]domain.StagingRule, error) {
	analyte, err := c.Get(code)
	if err != nil {
		return nil, err
	}
	return analyte.StagingRules, nil
}

// Conversion returns the multiplicative factor converting fromUnit into the
// analyte's canonical unit. A unit equal to the canonical unit (after
// normalization) converts with factor 1. Only conversions enumerated in the
// catalog are honored.
func (c *Catalog) Conversion(code, fromUnit string) (float64, error) {
	analyte, err := c.Get(code)
	if err != nil {
		return 0, err
	}

	from := NormalizeUnit(fromUnit)
	if from == NormalizeUnit(analyte.CanonicalUnit) {
		return 1, nil
	}
	for _, conv := range analyte.Conversions {
		if NormalizeUnit(conv.FromUnit) == from && NormalizeUnit(conv.ToUnit) == NormalizeUnit(analyte.CanonicalUnit) {
			return conv.Factor, nil
		}
	}
	return 0, fmt.Errorf("conversion %s from %q to %q: %w", code, fromUnit, analyte.CanonicalUnit, domain.ErrNotFound)
}

// Codes returns all canonical codes, sorted.
func (c *Catalog) Codes() []string {
	out := make([]string, len(c.codes))
	copy(out, c.codes)
	return out
}

// Len returns the number of analytes in the catalog.
func (c *Catalog) Len() int {
	return len(c.byCode)
}
