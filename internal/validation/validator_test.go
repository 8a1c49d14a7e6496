package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-tailor/internal/types"
)

func validationFixture() (*types.CVData, *types.ProfileSnapshot) {
	profile := &types.ProfileSnapshot{
		UserID:   "u1",
		FullName: "Ada Lovelace",
		WorkExperiences: []types.Experience{
			{ID: "e1", Company: "Analytical Engines", Position: "Engineer"},
		},
		Skills: []types.Skill{
			{ID: "s1", Name: "Mathematics"},
		},
	}
	data := &types.CVData{
		Header:  types.CVHeader{FullName: "Ada Lovelace"},
		Summary: "Engineer.",
		Experiences: []types.CVExperience{
			{Company: "Analytical Engines", Position: "Engineer", Achievements: []string{"Did things"}},
		},
		SkillGroups: []types.CVSkillGroup{
			{Category: "Skills", Skills: []string{"Mathematics"}},
		},
		Education: []types.CVEducation{},
		Languages: []types.CVLanguage{},
	}
	return data, profile
}

func TestValidate_GroundedContentPasses(t *testing.T) {
	data, profile := validationFixture()

	result := Validate(data, profile)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Violations)
}

func TestValidate_FabricatedCompanyRejected(t *testing.T) {
	data, profile := validationFixture()
	data.Experiences[0].Company = "Invented Industries"

	result := Validate(data, profile)

	assert.False(t, result.IsValid)
	require.NotEmpty(t, result.Violations)
	assert.Contains(t, result.Violations[0], "fact-grounding:")
	assert.Contains(t, result.Violations[0], "Invented Industries")
}

func TestValidate_FabricatedSkillRejected(t *testing.T) {
	data, profile := validationFixture()
	data.SkillGroups[0].Skills = append(data.SkillGroups[0].Skills, "Quantum Computing")

	result := Validate(data, profile)

	assert.False(t, result.IsValid)
}

func TestValidate_MissingListsRejected(t *testing.T) {
	data, profile := validationFixture()
	data.Education = nil
	data.Languages = nil

	result := Validate(data, profile)

	assert.False(t, result.IsValid)
	assert.Len(t, result.Violations, 2)
}

func TestValidate_BriefEntryWithAchievementsRejected(t *testing.T) {
	data, profile := validationFixture()
	data.Experiences[0].IsBrief = true

	result := Validate(data, profile)

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Violations[0], "structural:")
}

func TestValidate_EmptySummaryIsOnlyAWarning(t *testing.T) {
	data, profile := validationFixture()
	data.Summary = ""

	result := Validate(data, profile)

	assert.True(t, result.IsValid)
	assert.NotEmpty(t, result.Warnings)
}

type rejectAllCheck struct{}

func (rejectAllCheck) Name() string { return "reject-all" }
func (rejectAllCheck) Check(*types.CVData, *types.ProfileSnapshot) ([]string, []string) {
	return []string{"nope"}, nil
}

func TestValidate_CustomChecksPlugIn(t *testing.T) {
	data, profile := validationFixture()

	result := Validate(data, profile, rejectAllCheck{})

	assert.False(t, result.IsValid)
	assert.Equal(t, []string{"reject-all: nope"}, result.Violations)
}
