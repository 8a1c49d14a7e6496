// Package analysis computes how well a profile fits a job: a match
// score, strengths, gaps and missing skills. It is a pure function of
// the scored inputs; requirements extraction and scoring happen upstream.
package analysis

import (
	"fmt"
	"strings"

	"github.com/jonathan/cv-tailor/internal/expansion"
	"github.com/jonathan/cv-tailor/internal/types"
)

// Score composition weights. Required-skill coverage dominates.
const (
	requiredWeight   = 0.6
	preferredWeight  = 0.2
	experienceWeight = 0.2

	// An experience score at this level saturates the experience signal.
	experienceSaturation = 20
)

// Analyze computes the match analysis from requirements, the profile and
// the scored experiences. A required skill counts as covered when a
// declared skill matches it directly or when skill expansion finds
// related evidence; only uncovered required skills are reported missing.
func Analyze(req *types.JobRequirements, profile *types.ProfileSnapshot, scoredExps []types.ScoredExperience, scoredSkills []types.ScoredSkill) *types.AnalysisResult {
	result := &types.AnalysisResult{
		Strengths:           []string{},
		Gaps:                []types.Gap{},
		MissingSkills:       []string{},
		SuggestedFocusAreas: []string{},
	}

	satisfiedRelated := expansion.SatisfiedRequirements(req, profile.Skills)

	requiredCovered := 0
	for _, required := range req.RequiredSkills {
		switch {
		case hasDirectMatch(required, profile.Skills):
			requiredCovered++
			result.Strengths = append(result.Strengths, fmt.Sprintf("Has required skill %s", required))
		case satisfiedRelated[strings.ToLower(strings.TrimSpace(required))]:
			requiredCovered++
			evidence := expansion.ExpandRelatedSkills(required, profile.Skills)
			names := make([]string, 0, len(evidence))
			for _, s := range evidence {
				names = append(names, s.Name)
			}
			result.Strengths = append(result.Strengths,
				fmt.Sprintf("Related experience for %s via %s", required, strings.Join(names, ", ")))
		default:
			result.MissingSkills = append(result.MissingSkills, required)
			result.Gaps = append(result.Gaps, types.Gap{
				Title:       fmt.Sprintf("Missing required skill: %s", required),
				Description: fmt.Sprintf("The job requires %s but the profile shows no direct or related evidence.", required),
				Severity:    types.SeverityHigh,
			})
			result.SuggestedFocusAreas = append(result.SuggestedFocusAreas,
				fmt.Sprintf("Build demonstrable experience with %s", required))
		}
	}

	preferredCovered := 0
	for _, preferred := range req.PreferredSkills {
		if hasDirectMatch(preferred, profile.Skills) {
			preferredCovered++
		} else {
			result.Gaps = append(result.Gaps, types.Gap{
				Title:       fmt.Sprintf("Missing preferred skill: %s", preferred),
				Description: fmt.Sprintf("%s is listed as nice-to-have and is not on the profile.", preferred),
				Severity:    types.SeverityLow,
			})
		}
	}

	for _, s := range scoredExps {
		if s.Score >= experienceSaturation {
			result.Strengths = append(result.Strengths,
				fmt.Sprintf("Highly relevant experience: %s at %s", s.Experience.Position, s.Experience.Company))
		}
	}

	result.MatchScore = matchScore(req, requiredCovered, preferredCovered, scoredExps)
	return result
}

// matchScore combines required coverage, preferred coverage and the top
// experience signal into [0,100]. With no extracted skills at all the
// score is neutral rather than zero, since nothing was measured.
func matchScore(req *types.JobRequirements, requiredCovered, preferredCovered int, scoredExps []types.ScoredExperience) int {
	if len(req.RequiredSkills) == 0 && len(req.PreferredSkills) == 0 {
		return 50
	}

	requiredRatio := 1.0
	if len(req.RequiredSkills) > 0 {
		requiredRatio = float64(requiredCovered) / float64(len(req.RequiredSkills))
	}
	preferredRatio := 1.0
	if len(req.PreferredSkills) > 0 {
		preferredRatio = float64(preferredCovered) / float64(len(req.PreferredSkills))
	}

	experienceSignal := 0.0
	if len(scoredExps) > 0 {
		top := float64(scoredExps[0].Score)
		experienceSignal = top / experienceSaturation
		if experienceSignal > 1 {
			experienceSignal = 1
		}
	}

	score := 100 * (requiredWeight*requiredRatio + preferredWeight*preferredRatio + experienceWeight*experienceSignal)
	rounded := int(score + 0.5)
	if rounded > 100 {
		rounded = 100
	}
	if rounded < 0 {
		rounded = 0
	}
	return rounded
}

func hasDirectMatch(requirement string, skills []types.Skill) bool {
	lowerReq := strings.ToLower(strings.TrimSpace(requirement))
	if lowerReq == "" {
		return false
	}
	for _, skill := range skills {
		lowerSkill := strings.ToLower(strings.TrimSpace(skill.Name))
		if lowerSkill == "" {
			continue
		}
		if lowerSkill == lowerReq || strings.Contains(lowerSkill, lowerReq) || strings.Contains(lowerReq, lowerSkill) {
			return true
		}
	}
	return false
}
