package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cv-tailor/internal/types"
)

// ErrAnalysisNotFound is returned when no analysis record exists for an id.
var ErrAnalysisNotFound = fmt.Errorf("analysis result not found")

// AnalysisRecord is a stored analysis result. Requirements carries the
// job requirements extracted during analysis; CV generation reuses them
// instead of re-extracting.
type AnalysisRecord struct {
	ID               string                 `json:"id"`
	UserID           string                 `json:"user_id"`
	JobDescriptionID string                 `json:"job_description_id"`
	Status           string                 `json:"status"`
	Result           *types.AnalysisResult  `json:"result,omitempty"`
	Requirements     *types.JobRequirements `json:"requirements,omitempty"`
	Diagnostic       string                 `json:"diagnostic,omitempty"`
}

// GetAnalysis retrieves an analysis record by id.
func (db *DB) GetAnalysis(ctx context.Context, id string) (*AnalysisRecord, error) {
	record := &AnalysisRecord{ID: id}
	var resultJSON, requirementsJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT user_id, job_description_id, status, result, requirements, COALESCE(diagnostic, '')
		 FROM analysis_results WHERE id = $1`,
		id,
	).Scan(&record.UserID, &record.JobDescriptionID, &record.Status,
		&resultJSON, &requirementsJSON, &record.Diagnostic)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	if len(resultJSON) > 0 {
		record.Result = &types.AnalysisResult{}
		if err := json.Unmarshal(resultJSON, record.Result); err != nil {
			return nil, fmt.Errorf("failed to parse stored analysis result: %w", err)
		}
	}
	if len(requirementsJSON) > 0 {
		record.Requirements = &types.JobRequirements{}
		if err := json.Unmarshal(requirementsJSON, record.Requirements); err != nil {
			return nil, fmt.Errorf("failed to parse stored requirements: %w", err)
		}
	}

	return record, nil
}

// SetAnalysisProcessing marks the analysis record as processing. The
// transition is persisted before any downstream work so a crash mid-run
// is observable.
func (db *DB) SetAnalysisProcessing(ctx context.Context, id string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE analysis_results SET status = $1, diagnostic = NULL, updated_at = NOW() WHERE id = $2`,
		types.StatusProcessing, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark analysis processing: %w", err)
	}
	return nil
}

// CompleteAnalysis stores the result and requirements and marks the
// record completed, replacing any previous payload wholesale.
func (db *DB) CompleteAnalysis(ctx context.Context, id string, result *types.AnalysisResult, requirements *types.JobRequirements) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}
	requirementsJSON, err := json.Marshal(requirements)
	if err != nil {
		return fmt.Errorf("failed to marshal requirements: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`UPDATE analysis_results
		 SET status = $1, result = $2, requirements = $3, diagnostic = NULL, updated_at = NOW()
		 WHERE id = $4`,
		types.StatusCompleted, resultJSON, requirementsJSON, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete analysis: %w", err)
	}
	return nil
}

// FailAnalysis marks the record failed with a diagnostic message for
// operator visibility.
func (db *DB) FailAnalysis(ctx context.Context, id, diagnostic string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE analysis_results SET status = $1, diagnostic = $2, updated_at = NOW() WHERE id = $3`,
		types.StatusFailed, diagnostic, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark analysis failed: %w", err)
	}
	return nil
}
