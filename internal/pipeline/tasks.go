package pipeline

import (
	"context"

	"go.uber.org/zap"
)

// Task kinds accepted at the task boundary.
const (
	TaskAnalyze       = "analyze"
	TaskGenerateCV    = "generateCV"
	TaskImportProfile = "importProfile"
)

// AnalyzeTask builds a runner task for the analyze operation. The
// analysis record id is the idempotency boundary: re-submitting the
// same id is safe.
func (o *Orchestrator) AnalyzeTask(p AnalyzePayload) Task {
	return Task{
		Kind: TaskAnalyze,
		ID:   p.AnalysisResultID,
		Run: func(ctx context.Context) error {
			return o.Analyze(ctx, p)
		},
		Fail: func(ctx context.Context, diagnostic string) error {
			return o.store.FailAnalysis(ctx, p.AnalysisResultID, diagnostic)
		},
	}
}

// GenerateCVTask builds a runner task for the generateCV operation,
// addressed by the CV record id.
func (o *Orchestrator) GenerateCVTask(p GenerateCVPayload) Task {
	return Task{
		Kind: TaskGenerateCV,
		ID:   p.CVID,
		Run: func(ctx context.Context) error {
			return o.GenerateCV(ctx, p)
		},
		Fail: func(ctx context.Context, diagnostic string) error {
			return o.store.FailCV(ctx, p.CVID, diagnostic)
		},
	}
}

// ImportProfileTask builds a runner task for the importProfile
// operation. There is no status record to fail; the outcome is the
// replaced profile or a logged error.
func (o *Orchestrator) ImportProfileTask(p ImportProfilePayload) Task {
	return Task{
		Kind: TaskImportProfile,
		ID:   p.UserID,
		Run: func(ctx context.Context) error {
			return o.ImportProfile(ctx, p)
		},
		Fail: func(ctx context.Context, diagnostic string) error {
			o.logger.Error("profile import failed",
				zap.String("user_id", p.UserID),
				zap.String("diagnostic", diagnostic))
			return nil
		},
	}
}
