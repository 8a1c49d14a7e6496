// Package validation checks generated CV content against the source
// profile so fabricated facts never reach storage.
package validation

import (
	"fmt"
	"strings"

	"github.com/jonathan/cv-tailor/internal/types"
)

// Result is the outcome of validating generated content. Content with
// IsValid=false must never be persisted.
type Result struct {
	IsValid    bool     `json:"is_valid"`
	Violations []string `json:"violations"`
	Warnings   []string `json:"warnings"`
}

// Check is a single validation rule. Additional fact-checking rules plug
// in here without touching the pipeline.
type Check interface {
	Name() string
	Check(data *types.CVData, profile *types.ProfileSnapshot) (violations, warnings []string)
}

// DefaultChecks returns the production rule set.
func DefaultChecks() []Check {
	return []Check{
		StructuralCheck{},
		FactGroundingCheck{},
	}
}

// Validate runs the checks and aggregates their findings.
func Validate(data *types.CVData, profile *types.ProfileSnapshot, checks ...Check) Result {
	if len(checks) == 0 {
		checks = DefaultChecks()
	}

	result := Result{Violations: []string{}, Warnings: []string{}}
	for _, check := range checks {
		violations, warnings := check.Check(data, profile)
		for _, v := range violations {
			result.Violations = append(result.Violations, fmt.Sprintf("%s: %s", check.Name(), v))
		}
		for _, w := range warnings {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", check.Name(), w))
		}
	}
	result.IsValid = len(result.Violations) == 0
	return result
}

// StructuralCheck verifies the document shape: required fields present,
// mandatory lists non-nil, brief entries without achievements.
type StructuralCheck struct{}

// Name implements Check.
func (StructuralCheck) Name() string { return "structural" }

// Check implements Check.
func (StructuralCheck) Check(data *types.CVData, profile *types.ProfileSnapshot) ([]string, []string) {
	var violations, warnings []string

	if strings.TrimSpace(data.Header.FullName) == "" {
		violations = append(violations, "header is missing the full name")
	}
	if data.Education == nil {
		violations = append(violations, "education list is absent; it must be present even when empty")
	}
	if data.Languages == nil {
		violations = append(violations, "languages list is absent; it must be present even when empty")
	}
	if strings.TrimSpace(data.Summary) == "" {
		warnings = append(warnings, "summary is empty")
	}

	for i, exp := range data.Experiences {
		if exp.IsBrief && len(exp.Achievements) > 0 {
			violations = append(violations, fmt.Sprintf("experience %d is brief but carries achievements", i))
		}
		if exp.Company == "" || exp.Position == "" {
			violations = append(violations, fmt.Sprintf("experience %d is missing company or position", i))
		}
	}

	return violations, warnings
}

// FactGroundingCheck verifies that every company and skill the document
// mentions exists in the profile snapshot.
type FactGroundingCheck struct{}

// Name implements Check.
func (FactGroundingCheck) Name() string { return "fact-grounding" }

// Check implements Check.
func (FactGroundingCheck) Check(data *types.CVData, profile *types.ProfileSnapshot) ([]string, []string) {
	var violations []string

	companies := make(map[string]bool, len(profile.WorkExperiences))
	for _, exp := range profile.WorkExperiences {
		companies[strings.ToLower(exp.Company)] = true
	}
	for i, exp := range data.Experiences {
		if !companies[strings.ToLower(exp.Company)] {
			violations = append(violations, fmt.Sprintf("experience %d names company %q absent from the profile", i, exp.Company))
		}
	}

	skills := make(map[string]bool, len(profile.Skills))
	for _, skill := range profile.Skills {
		skills[strings.ToLower(skill.Name)] = true
	}
	for _, group := range data.SkillGroups {
		for _, name := range group.Skills {
			if !skills[strings.ToLower(name)] {
				violations = append(violations, fmt.Sprintf("skill group %q lists skill %q absent from the profile", group.Category, name))
			}
		}
	}

	return violations, nil
}
