package types

// Experience level values extracted from job descriptions.
// ExperienceLevel is empty when extraction fell back on a generation failure.
const (
	LevelEntry     = "entry"
	LevelMid       = "mid"
	LevelSenior    = "senior"
	LevelExecutive = "executive"
)

// JobRequirements is the structured view of a job description.
// Immutable once produced; cached keyed by a hash of the description text.
type JobRequirements struct {
	RequiredSkills      []string `json:"required_skills"`
	PreferredSkills     []string `json:"preferred_skills"`
	Qualifications      []string `json:"qualifications"`
	ExperienceLevel     string   `json:"experience_level"`
	KeyResponsibilities []string `json:"key_responsibilities"`
}

// Empty reports whether no requirements were extracted, which is the
// fallback shape when the generator returned something unusable.
func (r *JobRequirements) Empty() bool {
	return len(r.RequiredSkills) == 0 &&
		len(r.PreferredSkills) == 0 &&
		len(r.Qualifications) == 0 &&
		len(r.KeyResponsibilities) == 0 &&
		r.ExperienceLevel == ""
}
