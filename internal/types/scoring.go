package types

// SkillCategory classifies how a skill relates to the job requirements.
// Every skill maps to exactly one category, chosen by priority
// required > preferred > related > other.
type SkillCategory string

const (
	CategoryRequired  SkillCategory = "required"
	CategoryPreferred SkillCategory = "preferred"
	CategoryRelated   SkillCategory = "related"
	CategoryOther     SkillCategory = "other"
)

// ScoredExperience pairs an experience with its relevance score and the
// human-readable reasons that contributed to it.
type ScoredExperience struct {
	Experience Experience `json:"experience"`
	Score      int        `json:"score"`
	Reasons    []string   `json:"reasons"`
}

// ScoredSkill pairs a skill with its relevance score and category.
type ScoredSkill struct {
	Skill    Skill         `json:"skill"`
	Score    int           `json:"score"`
	Category SkillCategory `json:"category"`
	Reasons  []string      `json:"reasons"`
}
