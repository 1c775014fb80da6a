package review

import (
	"fmt"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

// Open creates the review store selected by configuration.
func Open(cfg domain.ReviewConfig) (Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	case "postgres":
		return NewPostgresStoreFromURL(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown review backend: %s", cfg.Backend)
	}
}
