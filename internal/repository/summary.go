// Package repository persists synthesized patient summaries in PostgreSQL.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

// SummaryRepository handles summary record persistence.
type SummaryRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewSummaryRepository creates a new summary repository.
func NewSummaryRepository(db *pgxpool.Pool, logger *logrus.Logger) *SummaryRepository {
	return &SummaryRepository{
		db:  db,
		log: logger,
	}
}

// Save inserts a summary record. The structured summary is stored as JSONB
// so it round-trips exactly as the engine produced it.
func (r *SummaryRepository) Save(ctx context.Context, record *domain.SummaryRecord) error {
	summaryJSON, err := json.Marshal(record.Summary)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}

	query := `
		INSERT INTO summaries (
			id, patient_id, request_id, summary, lab_count,
			skipped_count, processing_time_ms, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	_, err = r.db.Exec(ctx, query,
		record.ID,
		record.PatientID,
		record.RequestID,
		summaryJSON,
		record.LabCount,
		record.SkippedCount,
		record.ProcessingTimeMs,
		record.CreatedAt,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"summary_id": record.ID,
			"patient_id": record.PatientID,
			"error":      err,
		}).Error("Failed to save summary record")
		return fmt.Errorf("saving summary record: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"summary_id": record.ID,
		"patient_id": record.PatientID,
	}).Info("Summary record saved")

	return nil
}

// GetByID retrieves a summary record by its ID.
func (r *SummaryRepository) GetByID(ctx context.Context, id string) (*domain.SummaryRecord, error) {
	query := `
		SELECT id, patient_id, request_id, summary, lab_count,
			   skipped_count, processing_time_ms, created_at
		FROM summaries
		WHERE id = $1`

	record, err := r.scanRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("summary %s: %w", id, domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"summary_id": id,
			"error":      err,
		}).Error("Failed to get summary record")
		return nil, fmt.Errorf("getting summary record: %w", err)
	}

	return record, nil
}

// ListByPatient retrieves the most recent summary records for a patient.
func (r *SummaryRepository) ListByPatient(ctx context.Context, patientID string, limit int) ([]*domain.SummaryRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, patient_id, request_id, summary, lab_count,
			   skipped_count, processing_time_ms, created_at
		FROM summaries
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing summary records: %w", err)
	}
	defer rows.Close()

	var records []*domain.SummaryRecord
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning summary record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summary records: %w", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SummaryRepository) scanRecord(row rowScanner) (*domain.SummaryRecord, error) {
	var record domain.SummaryRecord
	var summaryJSON []byte

	err := row.Scan(
		&record.ID,
		&record.PatientID,
		&record.RequestID,
		&summaryJSON,
		&record.LabCount,
		&record.SkippedCount,
		&record.ProcessingTimeMs,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(summaryJSON, &record.Summary); err != nil {
		return nil, fmt.Errorf("decoding stored summary: %w", err)
	}

	return &record, nil
}
