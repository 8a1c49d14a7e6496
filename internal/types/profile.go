// Package types defines the shared data model passed between pipeline stages.
package types

// ProfileSnapshot is a read-only view of a user's profile captured at
// pipeline start. Stages never mutate it.
type ProfileSnapshot struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Headline string `json:"headline,omitempty"`
	Summary  string `json:"summary,omitempty"`

	WorkExperiences []Experience `json:"work_experiences"`
	Skills          []Skill      `json:"skills"`
	Education       []Education  `json:"education"`
	Languages       []Language   `json:"languages"`
}

// Experience is a single work experience entry.
// Dates are ISO "YYYY-MM-DD"; EndDate is empty when Current is true.
type Experience struct {
	ID          string `json:"id"`
	OrderIndex  int    `json:"order_index"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	Current     bool   `json:"current"`
}

// Skill is a declared skill with optional proficiency
// (e.g. "Beginner", "Intermediate", "Advanced", "Expert").
type Skill struct {
	ID          string `json:"id"`
	OrderIndex  int    `json:"order_index"`
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"`
}

// Education is a single education entry.
type Education struct {
	ID          string `json:"id"`
	OrderIndex  int    `json:"order_index"`
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

// Language is a spoken language with a proficiency level.
type Language struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}
