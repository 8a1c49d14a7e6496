package types

// Detail levels for experience entries in the planned CV.
const (
	DetailDetailed = "detailed"
	DetailBrief    = "brief"
)

// Summary length choices for the planned CV.
const (
	SummaryShort  = "short"
	SummaryMedium = "medium"
)

// ExperiencePlacement records where an experience lands in the CV and
// how much detail it gets.
type ExperiencePlacement struct {
	ExperienceID   string `json:"experience_id"`
	RelevanceScore int    `json:"relevance_score"`
	DetailLevel    string `json:"detail_level"`
	Order          int    `json:"order"`
}

// SkillGroup is a named group of surfaced skills. Skill ids are disjoint
// across the groups of a structure.
type SkillGroup struct {
	Category string   `json:"category"`
	SkillIDs []string `json:"skill_ids"`
	Order    int      `json:"order"`
}

// CVStructure is the planned document layout: section order, experience
// placement, skill grouping and sizing decisions.
type CVStructure struct {
	Sections        []string              `json:"sections"`
	ExperienceOrder []ExperiencePlacement `json:"experience_order"`
	SkillGroups     []SkillGroup          `json:"skill_groups"`
	MaxSkillsToShow int                   `json:"max_skills_to_show"`
	SummaryLength   string                `json:"summary_length"`
}
