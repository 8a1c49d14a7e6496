package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/cv-tailor/internal/types"
)

// ScoreSkills scores and categorizes every skill against the
// requirements. relatedIDs is the set of skill ids surfaced by skill
// expansion. Each skill lands in exactly one category, chosen by
// priority required > preferred > related > other; the first qualifying
// match wins. The result is sorted by (score desc, name asc) so output
// is deterministic for equal scores.
func ScoreSkills(skills []types.Skill, req *types.JobRequirements, relatedIDs map[string]bool, w Weights) []types.ScoredSkill {
	scored := make([]types.ScoredSkill, 0, len(skills))
	for _, skill := range skills {
		scored = append(scored, scoreSkill(skill, req, relatedIDs, w))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Skill.Name < scored[j].Skill.Name
	})

	return scored
}

func scoreSkill(skill types.Skill, req *types.JobRequirements, relatedIDs map[string]bool, w Weights) types.ScoredSkill {
	if match, ok := findSkillMatch(skill.Name, req.RequiredSkills); ok {
		score := w.SkillRequired
		reasons := []string{fmt.Sprintf("matches required skill %q", match)}
		if highProficiency(skill.Proficiency) {
			score += w.SkillRequiredHighBonus
			reasons = append(reasons, fmt.Sprintf("%s proficiency", skill.Proficiency))
		}
		return types.ScoredSkill{Skill: skill, Score: score, Category: types.CategoryRequired, Reasons: reasons}
	}

	if match, ok := findSkillMatch(skill.Name, req.PreferredSkills); ok {
		score := w.SkillPreferred
		reasons := []string{fmt.Sprintf("matches preferred skill %q", match)}
		if highProficiency(skill.Proficiency) {
			score += w.SkillPreferredHighBonus
			reasons = append(reasons, fmt.Sprintf("%s proficiency", skill.Proficiency))
		}
		return types.ScoredSkill{Skill: skill, Score: score, Category: types.CategoryPreferred, Reasons: reasons}
	}

	if relatedIDs[skill.ID] {
		return types.ScoredSkill{
			Skill:    skill,
			Score:    w.SkillRelated,
			Category: types.CategoryRelated,
			Reasons:  []string{"related to a required skill"},
		}
	}

	return types.ScoredSkill{
		Skill:    skill,
		Score:    w.SkillOther,
		Category: types.CategoryOther,
		Reasons:  []string{},
	}
}

// findSkillMatch reports the first candidate the skill name matches,
// exactly or by substring in either direction, case-insensitively.
func findSkillMatch(name string, candidates []string) (string, bool) {
	lowerName := strings.ToLower(strings.TrimSpace(name))
	if lowerName == "" {
		return "", false
	}
	for _, candidate := range candidates {
		lowerCandidate := strings.ToLower(strings.TrimSpace(candidate))
		if lowerCandidate == "" {
			continue
		}
		if lowerName == lowerCandidate ||
			strings.Contains(lowerName, lowerCandidate) ||
			strings.Contains(lowerCandidate, lowerName) {
			return candidate, true
		}
	}
	return "", false
}

func highProficiency(proficiency string) bool {
	switch strings.ToLower(proficiency) {
	case "expert", "advanced":
		return true
	}
	return false
}
