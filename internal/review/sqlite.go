package review

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite review store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// scanner is an interface for sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanReview scans a row into a Review struct.
func scanReview(s scanner) (*Review, error) {
	rv := &Review{}
	err := s.Scan(
		&rv.ID, &rv.PatientID, &rv.AnalyteCode,
		&rv.SuggestedLabel, &rv.ReviewedLabel, &rv.Agreed,
		&rv.Reviewer, &rv.Notes, &rv.CreatedAt, &rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patient_id TEXT NOT NULL,
		analyte_code TEXT NOT NULL,
		suggested_label TEXT NOT NULL,
		reviewed_label TEXT NOT NULL,
		agreed INTEGER NOT NULL DEFAULT 0,
		reviewer TEXT DEFAULT '',
		notes TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(patient_id, analyte_code)
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_patient ON reviews(patient_id);
	CREATE INDEX IF NOT EXISTS idx_reviews_analyte ON reviews(analyte_code);
	CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Save stores or updates a review for a staging conclusion.
func (s *SQLiteStore) Save(ctx context.Context, review *Review) error {
	now := time.Now()

	var existingID int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM reviews WHERE patient_id = ? AND analyte_code = ?",
		review.PatientID, review.AnalyteCode,
	).Scan(&existingID)

	if err == nil {
		review.ID = existingID
		review.UpdatedAt = now

		_, err = s.db.ExecContext(ctx, `
			UPDATE reviews SET
				suggested_label = ?,
				reviewed_label = ?,
				agreed = ?,
				reviewer = ?,
				notes = ?,
				updated_at = ?
			WHERE id = ?
		`,
			review.SuggestedLabel,
			review.ReviewedLabel,
			review.Agreed,
			review.Reviewer,
			review.Notes,
			now,
			existingID,
		)
		return err
	}

	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing: %w", err)
	}

	review.CreatedAt = now
	review.UpdatedAt = now

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (
			patient_id, analyte_code, suggested_label, reviewed_label,
			agreed, reviewer, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		review.PatientID,
		review.AnalyteCode,
		review.SuggestedLabel,
		review.ReviewedLabel,
		review.Agreed,
		review.Reviewer,
		review.Notes,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	review.ID = id

	return nil
}

// Get retrieves the review for a patient's analyte conclusion.
func (s *SQLiteStore) Get(ctx context.Context, patientID, analyteCode string) (*Review, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, patient_id, analyte_code, suggested_label, reviewed_label,
			agreed, reviewer, notes, created_at, updated_at
		FROM reviews
		WHERE patient_id = ? AND analyte_code = ?
		LIMIT 1
	`, patientID, analyteCode)

	rv, err := scanReview(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return rv, nil
}

// List returns reviews with pagination, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_id, analyte_code, suggested_label, reviewed_label,
			agreed, reviewer, notes, created_at, updated_at
		FROM reviews
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
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
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reviews").Scan(&count)
	return count, err
}

// Delete removes a review by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = ?", id)
	return err
}

// maxExportLimit is the maximum number of entries to export at once.
const maxExportLimit = 1000000

// ExportJSON exports all reviews to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
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
func (s *SQLiteStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
