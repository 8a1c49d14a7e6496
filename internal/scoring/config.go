// Package scoring ranks a candidate's experiences and skills against
// extracted job requirements using weighted additive heuristics.
package scoring

// Weights holds the additive scoring constants. The defaults are the
// tuned production values; they are configurable rather than hardcoded
// because their exact magnitudes are heuristic, not contractual.
type Weights struct {
	RequiredSkillMatch  int // per required skill found in experience text
	PreferredSkillMatch int // per preferred skill found in experience text
	ResponsibilityMatch int // per responsibility whose keywords appear
	CurrentRole         int // experience is the current role
	RecentRole          int // experience ended within RecentYears
	RecentYears         int

	SkillRequired           int // skill matches a required skill
	SkillRequiredHighBonus  int // bonus for Expert/Advanced proficiency
	SkillPreferred          int // skill matches a preferred skill
	SkillPreferredHighBonus int
	SkillRelated            int // skill is in the expanded related set
	SkillOther              int // floor score for unmatched skills
}

// DefaultWeights returns the default scoring constants.
func DefaultWeights() Weights {
	return Weights{
		RequiredSkillMatch:  10,
		PreferredSkillMatch: 5,
		ResponsibilityMatch: 8,
		CurrentRole:         3,
		RecentRole:          2,
		RecentYears:         2,

		SkillRequired:           20,
		SkillRequiredHighBonus:  5,
		SkillPreferred:          10,
		SkillPreferredHighBonus: 3,
		SkillRelated:            8,
		SkillOther:              1,
	}
}

// Defaults for relevance filtering.
const (
	DefaultMinSkillScore   = 5
	DefaultMaxSkills       = 20
	DetailThreshold        = 10 // experience score at or above which planning uses full detail
	SemanticAssessmentTopN = 5
)
