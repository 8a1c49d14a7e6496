package pipeline

import (
	"context"

	"github.com/jonathan/cv-tailor/internal/db"
	"github.com/jonathan/cv-tailor/internal/types"
)

// Store is the persistence boundary the orchestrator depends on. All
// writes are whole-document replacements so task retries stay
// idempotent. *db.DB implements it; tests use an in-memory fake.
type Store interface {
	GetProfileSnapshot(ctx context.Context, userID string) (*types.ProfileSnapshot, error)
	ReplaceProfile(ctx context.Context, snapshot *types.ProfileSnapshot) error

	GetAnalysis(ctx context.Context, id string) (*db.AnalysisRecord, error)
	SetAnalysisProcessing(ctx context.Context, id string) error
	CompleteAnalysis(ctx context.Context, id string, result *types.AnalysisResult, requirements *types.JobRequirements) error
	FailAnalysis(ctx context.Context, id, diagnostic string) error

	GetCV(ctx context.Context, id string) (*db.CVRecord, error)
	SetCVProcessing(ctx context.Context, id string) error
	CompleteCV(ctx context.Context, id string, data *types.CVData) error
	FailCV(ctx context.Context, id, diagnostic string) error
}

var _ Store = (*db.DB)(nil)
