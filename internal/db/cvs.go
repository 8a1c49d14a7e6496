package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cv-tailor/internal/types"
)

// ErrCVNotFound is returned when no CV record exists for an id.
var ErrCVNotFound = fmt.Errorf("cv record not found")

// CVRecord is a stored generated CV.
type CVRecord struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	AnalysisResultID string        `json:"analysis_result_id"`
	Status           string        `json:"status"`
	Data             *types.CVData `json:"data,omitempty"`
	Diagnostic       string        `json:"diagnostic,omitempty"`
}

// GetCV retrieves a CV record by id.
func (db *DB) GetCV(ctx context.Context, id string) (*CVRecord, error) {
	record := &CVRecord{ID: id}
	var dataJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT user_id, analysis_result_id, status, data, COALESCE(diagnostic, '')
		 FROM generated_cvs WHERE id = $1`,
		id,
	).Scan(&record.UserID, &record.AnalysisResultID, &record.Status, &dataJSON, &record.Diagnostic)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrCVNotFound
		}
		return nil, fmt.Errorf("failed to get cv: %w", err)
	}

	if len(dataJSON) > 0 {
		record.Data = &types.CVData{}
		if err := json.Unmarshal(dataJSON, record.Data); err != nil {
			return nil, fmt.Errorf("failed to parse stored cv data: %w", err)
		}
	}

	return record, nil
}

// SetCVProcessing marks the CV record as processing before any
// downstream work starts.
func (db *DB) SetCVProcessing(ctx context.Context, id string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE generated_cvs SET status = $1, diagnostic = NULL, updated_at = NOW() WHERE id = $2`,
		types.StatusProcessing, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark cv processing: %w", err)
	}
	return nil
}

// CompleteCV stores the generated document and marks the record
// completed. The data column is replaced wholesale.
func (db *DB) CompleteCV(ctx context.Context, id string, data *types.CVData) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal cv data: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`UPDATE generated_cvs
		 SET status = $1, data = $2, diagnostic = NULL, updated_at = NOW()
		 WHERE id = $3`,
		types.StatusCompleted, dataJSON, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete cv: %w", err)
	}
	return nil
}

// FailCV marks the record failed with a diagnostic message.
func (db *DB) FailCV(ctx context.Context, id, diagnostic string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE generated_cvs SET status = $1, diagnostic = $2, updated_at = NOW() WHERE id = $3`,
		types.StatusFailed, diagnostic, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark cv failed: %w", err)
	}
	return nil
}
