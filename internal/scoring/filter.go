package scoring

import "github.com/jonathan/cv-tailor/internal/types"

// FilterSkillsByRelevance returns the prefix of a sorted scored-skill
// list after dropping entries below minScore, capped at max items.
// It never reorders and is idempotent when re-applied to its own output
// with the same parameters. The caller keeps the unfiltered list for
// decisions that need it.
func FilterSkillsByRelevance(sorted []types.ScoredSkill, minScore, max int) []types.ScoredSkill {
	if max <= 0 {
		max = DefaultMaxSkills
	}
	filtered := make([]types.ScoredSkill, 0, max)
	for _, s := range sorted {
		if s.Score < minScore {
			continue
		}
		filtered = append(filtered, s)
		if len(filtered) == max {
			break
		}
	}
	return filtered
}
