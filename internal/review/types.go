// Package review provides clinician review storage for synthesized staging
// conclusions. It stores agreements and overrides so engine output can be
// audited against clinical judgment.
package review

import (
	"context"
	"io"
	"time"
)

// Review represents a clinician's review of a staging conclusion.
type Review struct {
	ID             int64     `json:"id,omitempty"`
	PatientID      string    `json:"patient_id"`
	AnalyteCode    string    `json:"analyte_code"`
	SuggestedLabel string    `json:"suggested_label"`          // engine's staging label
	ReviewedLabel  string    `json:"reviewed_label"`           // clinician's conclusion
	Agreed         bool      `json:"agreed"`                   // did the clinician agree?
	Reviewer       string    `json:"reviewer,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Store defines the interface for review storage operations.
type Store interface {
	// Save stores or updates a review. A review for the same
	// patient+analyte pair replaces the previous one.
	Save(ctx context.Context, review *Review) error

	// Get retrieves the review for a patient's analyte conclusion.
	// Returns nil without error when none exists.
	Get(ctx context.Context, patientID, analyteCode string) (*Review, error)

	// List returns reviews with pagination, newest first.
	List(ctx context.Context, limit, offset int) ([]*Review, error)

	// Count returns the total number of reviews.
	Count(ctx context.Context) (int64, error)

	// Delete removes a review by ID.
	Delete(ctx context.Context, id int64) error

	// ExportJSON exports all reviews to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports reviews from a JSON reader. Existing
	// patient+analyte pairs are skipped, not overwritten.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// Export represents the JSON export format.
type Export struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Reviews    []*Review `json:"reviews"`
}
