package planning

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/types"
)

type stubGenerator struct {
	responses []string
	err       error
	calls     int
}

func (s *stubGenerator) GenerateStructured(_ context.Context, _, _ string, _ llm.ModelTier, out any) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return json.Unmarshal([]byte(s.responses[idx]), out)
}

func planInputs(scoredExps []types.ScoredExperience, scoredSkills []types.ScoredSkill) Inputs {
	return Inputs{
		Requirements:      &types.JobRequirements{RequiredSkills: []string{"Go"}},
		ScoredExperiences: scoredExps,
		ScoredSkills:      scoredSkills,
		Profile:           &types.ProfileSnapshot{},
	}
}

func surfacedSkills(ids ...string) []types.ScoredSkill {
	skills := make([]types.ScoredSkill, 0, len(ids))
	for _, id := range ids {
		skills = append(skills, types.ScoredSkill{Skill: types.Skill{ID: id, Name: "skill-" + id}, Score: 10})
	}
	return skills
}

func TestPlan_DetailLevelByThreshold(t *testing.T) {
	p := NewPlanner(nil, zap.NewNop())
	scored := []types.ScoredExperience{
		{Experience: types.Experience{ID: "strong"}, Score: 13},
		{Experience: types.Experience{ID: "boundary"}, Score: 10},
		{Experience: types.Experience{ID: "weak"}, Score: 9},
	}

	structure, err := p.Plan(context.Background(), planInputs(scored, nil))
	require.NoError(t, err)

	require.Len(t, structure.ExperienceOrder, 3)
	assert.Equal(t, types.DetailDetailed, structure.ExperienceOrder[0].DetailLevel)
	assert.Equal(t, types.DetailDetailed, structure.ExperienceOrder[1].DetailLevel)
	assert.Equal(t, types.DetailBrief, structure.ExperienceOrder[2].DetailLevel)
	// Order follows the scored list.
	assert.Equal(t, "strong", structure.ExperienceOrder[0].ExperienceID)
	assert.Equal(t, 0, structure.ExperienceOrder[0].Order)
}

func TestPlan_AcceptsValidGrouping(t *testing.T) {
	gen := &stubGenerator{responses: []string{`{
		"groups": [
			{"category": "Languages", "skill_ids": ["a", "b"]},
			{"category": "Infrastructure", "skill_ids": ["c"]},
			{"category": "Tooling", "skill_ids": ["d"]}
		]
	}`}}
	p := NewPlanner(gen, zap.NewNop())

	structure, err := p.Plan(context.Background(), planInputs(nil, surfacedSkills("a", "b", "c", "d")))
	require.NoError(t, err)

	require.Len(t, structure.SkillGroups, 3)
	assert.Equal(t, "Languages", structure.SkillGroups[0].Category)
	assert.Equal(t, 1, gen.calls)
}

func TestPlan_InvalidGroupingFallsBackToFlat(t *testing.T) {
	// The grouping invents an id on both attempts.
	gen := &stubGenerator{responses: []string{`{
		"groups": [
			{"category": "A", "skill_ids": ["a", "invented"]},
			{"category": "B", "skill_ids": ["b"]},
			{"category": "C", "skill_ids": ["c"]}
		]
	}`}}
	p := NewPlanner(gen, zap.NewNop())

	structure, err := p.Plan(context.Background(), planInputs(nil, surfacedSkills("a", "b", "c")))
	require.NoError(t, err)

	assert.Equal(t, 2, gen.calls)
	require.Len(t, structure.SkillGroups, 1)
	assert.Equal(t, "Skills", structure.SkillGroups[0].Category)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, structure.SkillGroups[0].SkillIDs)
}

func TestPlan_GeneratorErrorFallsBackToFlat(t *testing.T) {
	gen := &stubGenerator{err: errors.New("provider down")}
	p := NewPlanner(gen, zap.NewNop())

	structure, err := p.Plan(context.Background(), planInputs(nil, surfacedSkills("a", "b", "c")))
	require.NoError(t, err)

	require.Len(t, structure.SkillGroups, 1)
	assert.Equal(t, "Skills", structure.SkillGroups[0].Category)
}

func TestPlan_SurfacedSkillsCapped(t *testing.T) {
	ids := make([]string, 0, MaxSurfacedSkills+5)
	for i := 0; i < MaxSurfacedSkills+5; i++ {
		ids = append(ids, string(rune('a'+i)))
	}
	p := NewPlanner(nil, zap.NewNop())

	structure, err := p.Plan(context.Background(), planInputs(nil, surfacedSkills(ids...)))
	require.NoError(t, err)

	total := 0
	for _, g := range structure.SkillGroups {
		total += len(g.SkillIDs)
	}
	assert.Equal(t, MaxSurfacedSkills, total)
	assert.Equal(t, MaxSurfacedSkills, structure.MaxSkillsToShow)
}

func TestPlan_SummaryLength(t *testing.T) {
	p := NewPlanner(nil, zap.NewNop())

	junior := planInputs(nil, nil)
	junior.Requirements.ExperienceLevel = types.LevelEntry
	structure, err := p.Plan(context.Background(), junior)
	require.NoError(t, err)
	assert.Equal(t, types.SummaryShort, structure.SummaryLength)

	senior := planInputs(nil, nil)
	senior.Requirements.ExperienceLevel = types.LevelSenior
	structure, err = p.Plan(context.Background(), senior)
	require.NoError(t, err)
	assert.Equal(t, types.SummaryMedium, structure.SummaryLength)
}

func TestBuildGroups_RejectsDuplicatesAndGaps(t *testing.T) {
	surfaced := surfacedSkills("a", "b", "c")

	var resp groupingResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"groups": [
			{"category": "A", "skill_ids": ["a", "b"]},
			{"category": "B", "skill_ids": ["b"]},
			{"category": "C", "skill_ids": ["c"]}
		]
	}`), &resp))
	_, err := buildGroups(resp, surfaced)
	assert.ErrorContains(t, err, "more than one group")

	require.NoError(t, json.Unmarshal([]byte(`{
		"groups": [
			{"category": "A", "skill_ids": ["a"]},
			{"category": "B", "skill_ids": ["b"]},
			{"category": "C", "skill_ids": []}
		]
	}`), &resp))
	_, err = buildGroups(resp, surfaced)
	assert.ErrorContains(t, err, "covers 2 of 3")
}

func TestPlan_SectionsFollowProfileContents(t *testing.T) {
	p := NewPlanner(nil, zap.NewNop())

	in := planInputs(nil, nil)
	structure, err := p.Plan(context.Background(), in)
	require.NoError(t, err)
	assert.NotContains(t, structure.Sections, SectionEducation)
	assert.NotContains(t, structure.Sections, SectionLanguages)

	in.Profile = &types.ProfileSnapshot{
		Education: []types.Education{{ID: "ed1", Institution: "MIT"}},
		Languages: []types.Language{{ID: "l1", Name: "English"}},
	}
	structure, err = p.Plan(context.Background(), in)
	require.NoError(t, err)
	assert.Contains(t, structure.Sections, SectionEducation)
	assert.Contains(t, structure.Sections, SectionLanguages)
}
