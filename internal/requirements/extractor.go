// Package requirements turns free-text job descriptions into structured
// JobRequirements via LLM extraction, with caching and a safe fallback.
package requirements

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/cv-tailor/internal/cache"
	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/prompts"
	"github.com/jonathan/cv-tailor/internal/schemas"
	"github.com/jonathan/cv-tailor/internal/types"
)

// Extractor extracts structured requirements from job description text.
// Results are cached by a hash of the description; callers must treat
// them as immutable.
type Extractor struct {
	gen        llm.Generator
	cache      *cache.Cache
	logger     *zap.Logger
	successTTL time.Duration
	failureTTL time.Duration
}

// NewExtractor creates an extractor. cache may be shared with other stages.
func NewExtractor(gen llm.Generator, c *cache.Cache, logger *zap.Logger) *Extractor {
	return &Extractor{
		gen:        gen,
		cache:      c,
		logger:     logger,
		successTTL: cache.RequirementsTTL,
		failureTTL: cache.RequirementsFailureTTL,
	}
}

// Extract returns the structured requirements for jobDescription.
// Identical text yields the cached result within TTL. On a malformed or
// failed generation it returns an all-empty requirements object instead
// of failing the caller, cached for a short TTL so a failing generator
// is not hammered. The only returned error is context cancellation.
func (e *Extractor) Extract(ctx context.Context, jobDescription string) (*types.JobRequirements, error) {
	text := NormalizeDescription(jobDescription)
	key := cache.Key("requirements", text)

	if cached, ok := e.cache.Get(key); ok {
		if req, ok := cached.(*types.JobRequirements); ok {
			return req, nil
		}
	}

	prompt := prompts.Format(prompts.MustGet("extraction.json", "extract-requirements"), map[string]string{
		"JobDescription": text,
	})

	var req types.JobRequirements
	err := e.gen.GenerateStructured(ctx, prompt, schemas.MustGet(schemas.JobRequirements), llm.TierStandard, &req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn("requirements extraction failed, using empty fallback",
			zap.Error(err))
		fallback := emptyRequirements()
		e.cache.Set(key, fallback, e.failureTTL)
		return fallback, nil
	}

	normalizeRequirements(&req)
	e.cache.Set(key, &req, e.successTTL)
	return &req, nil
}

func emptyRequirements() *types.JobRequirements {
	return &types.JobRequirements{
		RequiredSkills:      []string{},
		PreferredSkills:     []string{},
		Qualifications:      []string{},
		ExperienceLevel:     "",
		KeyResponsibilities: []string{},
	}
}

// normalizeRequirements trims entries, drops duplicates and removes
// preferred skills already listed as required.
func normalizeRequirements(req *types.JobRequirements) {
	req.RequiredSkills = dedupe(req.RequiredSkills)
	req.PreferredSkills = dedupe(req.PreferredSkills)
	req.Qualifications = dedupe(req.Qualifications)
	req.KeyResponsibilities = dedupe(req.KeyResponsibilities)

	required := make(map[string]bool, len(req.RequiredSkills))
	for _, s := range req.RequiredSkills {
		required[strings.ToLower(s)] = true
	}
	preferred := req.PreferredSkills[:0]
	for _, s := range req.PreferredSkills {
		if !required[strings.ToLower(s)] {
			preferred = append(preferred, s)
		}
	}
	req.PreferredSkills = preferred

	switch req.ExperienceLevel {
	case types.LevelEntry, types.LevelMid, types.LevelSenior, types.LevelExecutive, "":
	default:
		req.ExperienceLevel = ""
	}
}

func dedupe(values []string) []string {
	result := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		lower := strings.ToLower(v)
		if v == "" || seen[lower] {
			continue
		}
		seen[lower] = true
		result = append(result, v)
	}
	return result
}

// Summary renders requirements as compact JSON for embedding in prompts.
func Summary(req *types.JobRequirements) string {
	data, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return string(data)
}

// SortedSkills returns required then preferred skills, each alphabetized.
// Used by stages that need a deterministic skill listing.
func SortedSkills(req *types.JobRequirements) []string {
	required := append([]string(nil), req.RequiredSkills...)
	preferred := append([]string(nil), req.PreferredSkills...)
	sort.Strings(required)
	sort.Strings(preferred)
	return append(required, preferred...)
}
