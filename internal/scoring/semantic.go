package scoring

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/prompts"
	"github.com/jonathan/cv-tailor/internal/requirements"
	"github.com/jonathan/cv-tailor/internal/schemas"
	"github.com/jonathan/cv-tailor/internal/types"
)

type semanticResponse struct {
	Assessments []struct {
		ExperienceID string `json:"experience_id"`
		Reason       string `json:"reason"`
	} `json:"assessments"`
}

// AnnotateSemanticRelevance asks the generator for semantic connections
// between the top-scored experiences and the requirements, and appends
// them to the matching reasons lists. Scores and ordering are untouched:
// the heuristic numbers stay authoritative. Any generation failure is
// logged and the input returned unchanged.
func AnnotateSemanticRelevance(ctx context.Context, gen llm.Generator, logger *zap.Logger, req *types.JobRequirements, scored []types.ScoredExperience) []types.ScoredExperience {
	if gen == nil || len(scored) == 0 || req.Empty() {
		return scored
	}

	topN := SemanticAssessmentTopN
	if topN > len(scored) {
		topN = len(scored)
	}

	var sb strings.Builder
	for _, s := range scored[:topN] {
		fmt.Fprintf(&sb, "%s: %s at %s. %s\n",
			s.Experience.ID, s.Experience.Position, s.Experience.Company, s.Experience.Description)
	}

	prompt := prompts.Format(prompts.MustGet("scoring.json", "semantic-relevance"), map[string]string{
		"Requirements": requirements.Summary(req),
		"Experiences":  sb.String(),
	})

	var resp semanticResponse
	if err := gen.GenerateStructured(ctx, prompt, schemas.MustGet(schemas.SemanticRelevance), llm.TierLite, &resp); err != nil {
		logger.Warn("semantic relevance assessment failed, keeping heuristic scores only",
			zap.Error(err))
		return scored
	}

	byID := make(map[string]int, len(scored))
	for i, s := range scored {
		byID[s.Experience.ID] = i
	}
	for _, a := range resp.Assessments {
		if i, ok := byID[a.ExperienceID]; ok && strings.TrimSpace(a.Reason) != "" {
			scored[i].Reasons = append(scored[i].Reasons, a.Reason)
		}
	}

	return scored
}
