// Package planning decides the CV document structure: section order,
// experience detail levels and skill grouping. Numeric decisions are
// deterministic; only the semantic grouping of skills consults the
// generator, and its output is validated before being accepted.
package planning

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/scoring"
	"github.com/jonathan/cv-tailor/internal/types"
)

// Structural constants enforced in code, not delegated to the generator.
const (
	MinSkillGroups    = 3
	MaxSkillGroups    = 5
	MaxSurfacedSkills = 20
	MinSkillsToShow   = 10
	MaxSkillsToShow   = 25
)

// Section names in their default order.
const (
	SectionHeader     = "header"
	SectionSummary    = "summary"
	SectionSkills     = "skills"
	SectionExperience = "experience"
	SectionEducation  = "education"
	SectionLanguages  = "languages"
)

// Planner builds CVStructure values.
type Planner struct {
	gen             llm.Generator
	logger          *zap.Logger
	detailThreshold int
}

// NewPlanner creates a planner. gen may be nil, in which case skill
// grouping always uses the flat fallback.
func NewPlanner(gen llm.Generator, logger *zap.Logger) *Planner {
	return &Planner{
		gen:             gen,
		logger:          logger,
		detailThreshold: scoring.DetailThreshold,
	}
}

// Inputs carries everything the planner needs. ScoredSkills is expected
// to be pre-filtered to the most relevant skills; ScoredExperiences is
// the full sorted list.
type Inputs struct {
	Requirements      *types.JobRequirements
	ScoredExperiences []types.ScoredExperience
	ScoredSkills      []types.ScoredSkill
	Profile           *types.ProfileSnapshot
}

// Plan produces the document structure. It never fails on generator
// errors: grouping degrades to a single flat "Skills" group.
func (p *Planner) Plan(ctx context.Context, in Inputs) (*types.CVStructure, error) {
	surfaced := in.ScoredSkills
	if len(surfaced) > MaxSurfacedSkills {
		surfaced = surfaced[:MaxSurfacedSkills]
	}

	structure := &types.CVStructure{
		Sections:        p.planSections(in.Profile),
		ExperienceOrder: p.planExperiences(in.ScoredExperiences),
		SkillGroups:     p.planSkillGroups(ctx, in.Requirements, surfaced),
		MaxSkillsToShow: clamp(len(surfaced), MinSkillsToShow, MaxSkillsToShow),
		SummaryLength:   p.planSummaryLength(in),
	}
	return structure, nil
}

func (p *Planner) planSections(profile *types.ProfileSnapshot) []string {
	sections := []string{SectionHeader, SectionSummary, SectionSkills, SectionExperience}
	if profile != nil && len(profile.Education) > 0 {
		sections = append(sections, SectionEducation)
	}
	if profile != nil && len(profile.Languages) > 0 {
		sections = append(sections, SectionLanguages)
	}
	return sections
}

// planExperiences assigns order by score and the detail level by the
// fixed threshold: score at or above it gets full achievements.
func (p *Planner) planExperiences(scored []types.ScoredExperience) []types.ExperiencePlacement {
	placements := make([]types.ExperiencePlacement, 0, len(scored))
	for i, s := range scored {
		detail := types.DetailBrief
		if s.Score >= p.detailThreshold {
			detail = types.DetailDetailed
		}
		placements = append(placements, types.ExperiencePlacement{
			ExperienceID:   s.Experience.ID,
			RelevanceScore: s.Score,
			DetailLevel:    detail,
			Order:          i,
		})
	}
	return placements
}

// planSummaryLength picks medium for senior profiles or deep histories,
// short otherwise.
func (p *Planner) planSummaryLength(in Inputs) string {
	level := ""
	if in.Requirements != nil {
		level = in.Requirements.ExperienceLevel
	}
	if level == types.LevelSenior || level == types.LevelExecutive || len(in.ScoredExperiences) >= 3 {
		return types.SummaryMedium
	}
	return types.SummaryShort
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
