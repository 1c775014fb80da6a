// Package service implements the lab synthesis pipeline: normalization,
// domain classification, longitudinal trend analysis, and summary assembly.
package service

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/catalog"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

const resolverCacheSize = 256

// NameResolver resolves raw test names to canonical analytes through the
// catalog, caching resolutions by normalized name. Longitudinal inputs
// repeat the same handful of test names per patient, so the cache turns
// repeat lookups into O(1) hits. Resolution results are identical with or
// without the cache.
type NameResolver struct {
	logger  *logrus.Logger
	catalog domain.Catalog
	cache   *lru.Cache
}

// NewNameResolver creates a name resolver backed by the given catalog.
func NewNameResolver(logger *logrus.Logger, cat domain.Catalog) (*NameResolver, error) {
	cache, err := lru.New(resolverCacheSize)
	if err != nil {
		return nil, err
	}
	return &NameResolver{
		logger:  logger,
		catalog: cat,
		cache:   cache,
	}, nil
}

// Resolve maps a raw test name to its canonical analyte. Matching is the
// catalog's: case-insensitive, synonym-exact, no fuzzy fallback.
func (r *NameResolver) Resolve(rawName string) (*domain.CanonicalAnalyte, error) {
	key := catalog.NormalizeName(rawName)

	if cached, ok := r.cache.Get(key); ok {
		return cached.(*domain.CanonicalAnalyte), nil
	}

	analyte, err := r.catalog.Lookup(rawName)
	if err != nil {
		return nil, err
	}

	r.cache.Add(key, analyte)
	r.logger.WithFields(logrus.Fields{
		"raw_name":     rawName,
		"analyte_code": analyte.Code,
	}).Debug("Resolved raw test name")

	return analyte, nil
}
