// Package generation produces the final structured CV content from the
// profile snapshot and the planned structure. Generated prose is
// strictly bounded to facts present in the snapshot; everything except
// the summary and achievement wording is assembled deterministically.
package generation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/prompts"
	"github.com/jonathan/cv-tailor/internal/requirements"
	"github.com/jonathan/cv-tailor/internal/schemas"
	"github.com/jonathan/cv-tailor/internal/types"
)

// Generator renders CVData from a plan.
type Generator struct {
	gen    llm.Generator
	logger *zap.Logger
}

// NewGenerator creates a content generator.
func NewGenerator(gen llm.Generator, logger *zap.Logger) *Generator {
	return &Generator{gen: gen, logger: logger}
}

type cvTextResponse struct {
	Summary      string `json:"summary"`
	Achievements []struct {
		ExperienceID string   `json:"experience_id"`
		Achievements []string `json:"achievements"`
	} `json:"achievements"`
}

// Generate builds the CV document. There is no safe fallback for failed
// text generation, so provider errors surface to the caller and fail the
// task. Education and languages are always emitted as lists, defaulting
// to empty.
func (g *Generator) Generate(ctx context.Context, profile *types.ProfileSnapshot, req *types.JobRequirements, structure *types.CVStructure) (*types.CVData, error) {
	data := g.assembleSkeleton(profile, structure)

	text, err := g.generateText(ctx, profile, req, structure)
	if err != nil {
		return nil, fmt.Errorf("generating cv text: %w", err)
	}

	data.Summary = strings.TrimSpace(text.Summary)

	// Accept achievements only for experiences the plan marked detailed.
	detailed := make(map[string]bool)
	for _, p := range structure.ExperienceOrder {
		if p.DetailLevel == types.DetailDetailed {
			detailed[p.ExperienceID] = true
		}
	}
	// Positions in data.Experiences, which skips placements whose
	// experience is absent from the snapshot.
	known := make(map[string]bool, len(profile.WorkExperiences))
	for _, exp := range profile.WorkExperiences {
		known[exp.ID] = true
	}
	byPosition := make(map[string]int)
	pos := 0
	for _, p := range structure.ExperienceOrder {
		if known[p.ExperienceID] {
			byPosition[p.ExperienceID] = pos
			pos++
		}
	}
	for _, a := range text.Achievements {
		if !detailed[a.ExperienceID] {
			continue
		}
		if i, ok := byPosition[a.ExperienceID]; ok && i < len(data.Experiences) {
			data.Experiences[i].Achievements = cleanStrings(a.Achievements)
		}
	}

	data.Normalize()
	return data, nil
}

// assembleSkeleton builds everything that needs no generation: header,
// ordered experience entries with pass-through ISO dates, skill groups
// resolved to plain names, education and languages.
func (g *Generator) assembleSkeleton(profile *types.ProfileSnapshot, structure *types.CVStructure) *types.CVData {
	data := &types.CVData{
		Header: types.CVHeader{
			FullName: profile.FullName,
			Headline: profile.Headline,
			Email:    profile.Email,
			Phone:    profile.Phone,
			Location: profile.Location,
		},
	}

	expByID := make(map[string]types.Experience, len(profile.WorkExperiences))
	for _, exp := range profile.WorkExperiences {
		expByID[exp.ID] = exp
	}
	for _, placement := range structure.ExperienceOrder {
		exp, ok := expByID[placement.ExperienceID]
		if !ok {
			continue
		}
		data.Experiences = append(data.Experiences, types.CVExperience{
			Company:      exp.Company,
			Position:     exp.Position,
			StartDate:    exp.StartDate,
			EndDate:      exp.EndDate,
			Current:      exp.Current,
			Achievements: []string{},
			IsBrief:      placement.DetailLevel == types.DetailBrief,
		})
	}

	skillByID := make(map[string]types.Skill, len(profile.Skills))
	for _, skill := range profile.Skills {
		skillByID[skill.ID] = skill
	}
	for _, group := range structure.SkillGroups {
		names := make([]string, 0, len(group.SkillIDs))
		for _, id := range group.SkillIDs {
			if skill, ok := skillByID[id]; ok {
				names = append(names, skill.Name)
			}
		}
		data.SkillGroups = append(data.SkillGroups, types.CVSkillGroup{
			Category: group.Category,
			Skills:   names,
		})
	}

	for _, edu := range profile.Education {
		data.Education = append(data.Education, types.CVEducation{
			Institution: edu.Institution,
			Degree:      edu.Degree,
			Field:       edu.Field,
			StartDate:   edu.StartDate,
			EndDate:     edu.EndDate,
		})
	}
	for _, lang := range profile.Languages {
		data.Languages = append(data.Languages, types.CVLanguage{
			Name:  lang.Name,
			Level: lang.Level,
		})
	}

	return data
}

func (g *Generator) generateText(ctx context.Context, profile *types.ProfileSnapshot, req *types.JobRequirements, structure *types.CVStructure) (*cvTextResponse, error) {
	var detailedSb strings.Builder
	expByID := make(map[string]types.Experience, len(profile.WorkExperiences))
	for _, exp := range profile.WorkExperiences {
		expByID[exp.ID] = exp
	}
	for _, placement := range structure.ExperienceOrder {
		if placement.DetailLevel != types.DetailDetailed {
			continue
		}
		if exp, ok := expByID[placement.ExperienceID]; ok {
			fmt.Fprintf(&detailedSb, "%s: %s\n", exp.ID, exp.Description)
		}
	}

	guidance := "2-3 sentences"
	if structure.SummaryLength == types.SummaryShort {
		guidance = "1-2 sentences"
	}

	prompt := prompts.Format(prompts.MustGet("generation.json", "cv-text"), map[string]string{
		"SummaryLength":       structure.SummaryLength,
		"SummaryGuidance":     guidance,
		"Requirements":        requirements.Summary(req),
		"Profile":             profileFacts(profile),
		"DetailedExperiences": detailedSb.String(),
	})

	var resp cvTextResponse
	if err := g.gen.GenerateStructured(ctx, prompt, schemas.MustGet(schemas.CVText), llm.TierAdvanced, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// profileFacts renders the snapshot facts the generator is allowed to use.
func profileFacts(profile *types.ProfileSnapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", profile.FullName)
	if profile.Headline != "" {
		fmt.Fprintf(&sb, "Headline: %s\n", profile.Headline)
	}
	if profile.Summary != "" {
		fmt.Fprintf(&sb, "Summary: %s\n", profile.Summary)
	}
	sb.WriteString("Experiences:\n")
	for _, exp := range profile.WorkExperiences {
		fmt.Fprintf(&sb, "- %s at %s (%s - %s)\n", exp.Position, exp.Company, exp.StartDate, orPresent(exp.EndDate, exp.Current))
	}
	sb.WriteString("Skills: ")
	names := make([]string, 0, len(profile.Skills))
	for _, skill := range profile.Skills {
		names = append(names, skill.Name)
	}
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString("\n")
	return sb.String()
}

func orPresent(endDate string, current bool) string {
	if current || endDate == "" {
		return "present"
	}
	return endDate
}

func cleanStrings(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}
