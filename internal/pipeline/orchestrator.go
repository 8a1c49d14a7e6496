// Package pipeline orchestrates the tailoring stages into idempotent,
// retryable tasks. Each task runs its stages strictly sequentially and
// persists its state machine (pending, processing, completed or failed)
// so a crash mid-run is observable and a re-run is safe.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/cv-tailor/internal/analysis"
	"github.com/jonathan/cv-tailor/internal/cache"
	"github.com/jonathan/cv-tailor/internal/db"
	"github.com/jonathan/cv-tailor/internal/expansion"
	"github.com/jonathan/cv-tailor/internal/generation"
	"github.com/jonathan/cv-tailor/internal/importer"
	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/planning"
	"github.com/jonathan/cv-tailor/internal/requirements"
	"github.com/jonathan/cv-tailor/internal/scoring"
	"github.com/jonathan/cv-tailor/internal/types"
	"github.com/jonathan/cv-tailor/internal/validation"
)

// AnalyzePayload is the analyze task input.
type AnalyzePayload struct {
	UserID           string
	JobDescriptionID string
	JobDescription   string
	AnalysisResultID string
}

// GenerateCVPayload is the generateCV task input. The referenced
// analysis must be completed and carry stored requirements.
type GenerateCVPayload struct {
	UserID           string
	JobDescriptionID string
	AnalysisResultID string
	JobDescription   string
	CVID             string
}

// ImportProfilePayload is the importProfile task input. FileContent may
// be empty, in which case the document is fetched from FileURL.
type ImportProfilePayload struct {
	UserID      string
	FileURL     string
	FileContent []byte
	FileType    string
	FileName    string
}

// Options configures an Orchestrator.
type Options struct {
	Store     Store
	Generator llm.Generator
	Logger    *zap.Logger

	// Cache is optional. When nil the orchestrator constructs and owns
	// one, starting interval cleanup and stopping it on Close.
	Cache *cache.Cache

	Weights         scoring.Weights
	MinSkillScore   int
	MaxSkills       int
	SemanticScoring bool

	// Now is the clock used by deterministic scoring. Defaults to
	// time.Now.
	Now func() time.Time
}

// Orchestrator wires the stages together and exposes one method per
// task kind.
type Orchestrator struct {
	store    Store
	gen      llm.Generator
	logger   *zap.Logger
	cache    *cache.Cache
	ownCache bool

	weights       scoring.Weights
	minSkillScore int
	maxSkills     int
	semantic      bool
	now           func() time.Time

	extractor *requirements.Extractor
	planner   *planning.Planner
	generator *generation.Generator
	importer  *importer.Importer
}

// New creates an orchestrator from opts.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	c := opts.Cache
	ownCache := false
	if c == nil {
		c = cache.New()
		c.StartCleanup(cache.DefaultCleanupInterval)
		ownCache = true
	}

	weights := opts.Weights
	if weights == (scoring.Weights{}) {
		weights = scoring.DefaultWeights()
	}
	minScore := opts.MinSkillScore
	if minScore == 0 {
		minScore = scoring.DefaultMinSkillScore
	}
	maxSkills := opts.MaxSkills
	if maxSkills == 0 {
		maxSkills = scoring.DefaultMaxSkills
	}

	return &Orchestrator{
		store:         opts.Store,
		gen:           opts.Generator,
		logger:        logger,
		cache:         c,
		ownCache:      ownCache,
		weights:       weights,
		minSkillScore: minScore,
		maxSkills:     maxSkills,
		semantic:      opts.SemanticScoring,
		now:           now,
		extractor:     requirements.NewExtractor(opts.Generator, c, logger),
		planner:       planning.NewPlanner(opts.Generator, logger),
		generator:     generation.NewGenerator(opts.Generator, logger),
		importer:      importer.NewImporter(opts.Generator, logger),
	}
}

// Close releases resources the orchestrator owns.
func (o *Orchestrator) Close() {
	if o.ownCache {
		o.cache.Stop()
	}
}

// Analyze extracts requirements from the job description, scores the
// user's profile against them and stores the match analysis. Status
// transitions are persisted before and after the work.
func (o *Orchestrator) Analyze(ctx context.Context, p AnalyzePayload) error {
	if err := o.store.SetAnalysisProcessing(ctx, p.AnalysisResultID); err != nil {
		return stageError(StagePersistence, err, "analysis_id", p.AnalysisResultID)
	}

	profile, err := o.store.GetProfileSnapshot(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, db.ErrProfileNotFound) {
			return Terminal(stageError(StagePersistence, err, "user_id", p.UserID))
		}
		return stageError(StagePersistence, err, "user_id", p.UserID)
	}

	description := requirements.NormalizeDescription(p.JobDescription)
	req, err := o.extractor.Extract(ctx, description)
	if err != nil {
		return stageError(StageRequirements, err, "job_description_id", p.JobDescriptionID)
	}

	scoredExps := scoring.ScoreExperiences(profile.WorkExperiences, req, o.weights, o.now())
	if o.semantic {
		scoredExps = scoring.AnnotateSemanticRelevance(ctx, o.gen, o.logger, req, scoredExps)
	}
	o.cache.Set(o.experienceCacheKey(p.UserID, p.JobDescriptionID), scoredExps, cache.RelevantExperienceTTL)

	relatedIDs := expansion.RelatedIDs(req, profile.Skills)
	scoredSkills := scoring.ScoreSkills(profile.Skills, req, relatedIDs, o.weights)

	result := analysis.Analyze(req, profile, scoredExps, scoredSkills)

	if err := o.store.CompleteAnalysis(ctx, p.AnalysisResultID, result, req); err != nil {
		return stageError(StagePersistence, err, "analysis_id", p.AnalysisResultID)
	}

	o.logger.Info("analysis completed",
		zap.String("analysis_id", p.AnalysisResultID),
		zap.Int("match_score", result.MatchScore),
		zap.Int("missing_skills", len(result.MissingSkills)))
	return nil
}

// GenerateCV plans, generates and validates a tailored CV from a
// completed analysis. Requirements are reused from the analysis record;
// their absence is a hard failure, never a re-extraction. Content that
// fails validation is regenerated once, then the task fails with the
// violation list.
func (o *Orchestrator) GenerateCV(ctx context.Context, p GenerateCVPayload) error {
	if err := o.store.SetCVProcessing(ctx, p.CVID); err != nil {
		return stageError(StagePersistence, err, "cv_id", p.CVID)
	}

	record, err := o.store.GetAnalysis(ctx, p.AnalysisResultID)
	if err != nil {
		if errors.Is(err, db.ErrAnalysisNotFound) {
			return Terminal(stageError(StagePersistence, err, "analysis_id", p.AnalysisResultID))
		}
		return stageError(StagePersistence, err, "analysis_id", p.AnalysisResultID)
	}
	if record.Status != types.StatusCompleted {
		return Terminal(stageError(StagePersistence,
			fmt.Errorf("analysis is %s, not completed", record.Status),
			"analysis_id", p.AnalysisResultID))
	}
	if record.Requirements == nil {
		return Terminal(stageError(StagePersistence,
			errors.New("analysis carries no stored requirements"),
			"analysis_id", p.AnalysisResultID))
	}
	req := record.Requirements

	profile, err := o.store.GetProfileSnapshot(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, db.ErrProfileNotFound) {
			return Terminal(stageError(StagePersistence, err, "user_id", p.UserID))
		}
		return stageError(StagePersistence, err, "user_id", p.UserID)
	}

	scoredExps := o.scoredExperiences(p.UserID, p.JobDescriptionID, profile, req)
	relatedIDs := expansion.RelatedIDs(req, profile.Skills)
	scoredSkills := scoring.ScoreSkills(profile.Skills, req, relatedIDs, o.weights)
	surfaced := scoring.FilterSkillsByRelevance(scoredSkills, o.minSkillScore, o.maxSkills)

	structure, err := o.planner.Plan(ctx, planning.Inputs{
		Requirements:      req,
		ScoredExperiences: scoredExps,
		ScoredSkills:      surfaced,
		Profile:           profile,
	})
	if err != nil {
		return stageError(StagePlanning, err, "cv_id", p.CVID)
	}

	data, result, err := o.generateValidated(ctx, profile, req, structure)
	if err != nil {
		return err
	}
	if !result.IsValid {
		return Terminal(stageError(StageValidation,
			fmt.Errorf("content rejected: %s", strings.Join(result.Violations, "; ")),
			"cv_id", p.CVID))
	}

	if err := o.store.CompleteCV(ctx, p.CVID, data); err != nil {
		return stageError(StagePersistence, err, "cv_id", p.CVID)
	}

	o.logger.Info("cv generation completed",
		zap.String("cv_id", p.CVID),
		zap.Int("experiences", len(data.Experiences)),
		zap.Int("skill_groups", len(data.SkillGroups)),
		zap.Strings("warnings", result.Warnings))
	return nil
}

// generateValidated runs generation plus validation, regenerating once
// when validation rejects the content. Invalid content is never
// persisted.
func (o *Orchestrator) generateValidated(ctx context.Context, profile *types.ProfileSnapshot, req *types.JobRequirements, structure *types.CVStructure) (*types.CVData, validation.Result, error) {
	data, err := o.generator.Generate(ctx, profile, req, structure)
	if err != nil {
		return nil, validation.Result{}, stageError(StageGeneration, err)
	}

	result := validation.Validate(data, profile)
	if result.IsValid {
		return data, result, nil
	}

	o.logger.Warn("generated content failed validation, regenerating once",
		zap.Strings("violations", result.Violations))

	data, err = o.generator.Generate(ctx, profile, req, structure)
	if err != nil {
		return nil, validation.Result{}, stageError(StageGeneration, err)
	}
	return data, validation.Validate(data, profile), nil
}

// ImportProfile extracts a profile from the uploaded document and
// replaces the stored profile wholesale in one transaction.
func (o *Orchestrator) ImportProfile(ctx context.Context, p ImportProfilePayload) error {
	snapshot, err := o.importer.ExtractProfile(ctx, p.UserID, p.FileURL, p.FileContent, p.FileType)
	if err != nil {
		return stageError(StageImport, err, "user_id", p.UserID, "file_type", p.FileType)
	}

	if err := o.store.ReplaceProfile(ctx, snapshot); err != nil {
		return stageError(StagePersistence, err, "user_id", p.UserID)
	}

	o.logger.Info("profile imported",
		zap.String("user_id", p.UserID),
		zap.Int("experiences", len(snapshot.WorkExperiences)),
		zap.Int("skills", len(snapshot.Skills)))
	return nil
}

// scoredExperiences reuses the scores cached by a recent analysis for
// the same user and job, recomputing from the stored requirements when
// the entry has expired.
func (o *Orchestrator) scoredExperiences(userID, jobDescriptionID string, profile *types.ProfileSnapshot, req *types.JobRequirements) []types.ScoredExperience {
	key := o.experienceCacheKey(userID, jobDescriptionID)
	if v, ok := o.cache.Get(key); ok {
		if scored, ok := v.([]types.ScoredExperience); ok {
			return scored
		}
	}
	scored := scoring.ScoreExperiences(profile.WorkExperiences, req, o.weights, o.now())
	o.cache.Set(key, scored, cache.RelevantExperienceTTL)
	return scored
}

func (o *Orchestrator) experienceCacheKey(userID, jobDescriptionID string) string {
	return cache.Key("relevant-experience", userID, jobDescriptionID)
}
