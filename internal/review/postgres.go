package review

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL review store.
// It expects the schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL review store from a
// connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Save stores or updates a review for a staging conclusion.
func (s *PostgresStore) Save(ctx context.Context, review *Review) error {
	now := time.Now()

	query := `
		INSERT INTO reviews (
			patient_id, analyte_code, suggested_label, reviewed_label,
			agreed, reviewer, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (patient_id, analyte_code) DO UPDATE SET
			suggested_label = EXCLUDED.suggested_label,
			reviewed_label = EXCLUDED.reviewed_label,
			agreed = EXCLUDED.agreed,
			reviewer = EXCLUDED.reviewer,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		review.PatientID,
		review.AnalyteCode,
		review.SuggestedLabel,
		review.ReviewedLabel,
		review.Agreed,
		review.Reviewer,
		review.Notes,
		now,
		now,
	).Scan(&review.ID, &review.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}

	review.UpdatedAt = now
	return nil
}

// Get retrieves the review for a patient's analyte conclusion.
func (s *PostgresStore) Get(ctx context.Context, patientID, analyteCode string) (*Review, error) {
	query := `
		SELECT id, patient_id, analyte_code, suggested_label, reviewed_label,
			agreed, reviewer, notes, created_at, updated_at
		FROM reviews
		WHERE patient_id = $1 AND analyte_code = $2
		LIMIT 1
	`

	rv, err := scanReview(s.db.QueryRowContext(ctx, query, patientID, analyteCode))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return rv, nil
}

// List returns reviews with pagination, newest first.
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*Review, error) {
	query := `
		SELECT id, patient_id, analyte_code, suggested_label, reviewed_label,
			agreed, reviewer, notes, created_at, updated_at
		FROM reviews
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var result []*Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, rv)
	}
	return result, rows.Err()
}

// Count returns the total number of reviews.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reviews").Scan(&count)
	return count, err
}

// Delete removes a review by ID.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = $1", id)
	return err
}

// ExportJSON exports all reviews to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.List(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list reviews: %w", err)
	}

	export := &Export{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Count:      len(all),
		Reviews:    all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// ImportJSON imports reviews from a JSON reader.
func (s *PostgresStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	var export Export
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, rv := range export.Reviews {
		existing, err := s.Get(ctx, rv.PatientID, rv.AnalyteCode)
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
		}

		if existing != nil {
			skipped++
			continue
		}

		if err := s.Save(ctx, rv); err != nil {
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
