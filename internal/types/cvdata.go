package types

// CVHeader carries the identity fields at the top of the document.
type CVHeader struct {
	FullName string `json:"full_name"`
	Headline string `json:"headline,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

// CVSkillGroup is a rendered skill group: plain skill names, no markup.
type CVSkillGroup struct {
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

// CVExperience is a rendered experience entry. Achievements are present
// only for detailed entries; brief entries carry identity and dates.
type CVExperience struct {
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date,omitempty"`
	Current      bool     `json:"current"`
	Achievements []string `json:"achievements"`
	IsBrief      bool     `json:"is_brief"`
}

// CVEducation is a rendered education entry.
type CVEducation struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

// CVLanguage is a rendered language entry.
type CVLanguage struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// CVData is the final structured document written once per pipeline run.
// Education and Languages are always present as (possibly empty) lists;
// downstream consumers require the fields.
type CVData struct {
	Header      CVHeader       `json:"header"`
	Summary     string         `json:"summary"`
	SkillGroups []CVSkillGroup `json:"skill_groups"`
	Experiences []CVExperience `json:"experiences"`
	Education   []CVEducation  `json:"education"`
	Languages   []CVLanguage   `json:"languages"`
}

// Normalize replaces nil collections with empty ones so the marshalled
// document always carries the arrays downstream consumers expect.
func (d *CVData) Normalize() {
	if d.SkillGroups == nil {
		d.SkillGroups = []CVSkillGroup{}
	}
	if d.Experiences == nil {
		d.Experiences = []CVExperience{}
	}
	if d.Education == nil {
		d.Education = []CVEducation{}
	}
	if d.Languages == nil {
		d.Languages = []CVLanguage{}
	}
	for i := range d.Experiences {
		if d.Experiences[i].Achievements == nil {
			d.Experiences[i].Achievements = []string{}
		}
	}
}
