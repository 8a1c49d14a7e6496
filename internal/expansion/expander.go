// Package expansion infers skills a candidate likely has but did not
// list, using a static co-occurrence table. A "Java" requirement credits
// a candidate who only listed "Spring Boot". Lookups are pure functions
// over the embedded table; nothing here calls external services.
package expansion

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/jonathan/cv-tailor/internal/types"
)

//go:embed related_skills.json
var relatedSkillsData []byte

var (
	loadOnce      sync.Once
	relatedSkills map[string][]string
)

func table() map[string][]string {
	loadOnce.Do(func() {
		if err := json.Unmarshal(relatedSkillsData, &relatedSkills); err != nil {
			// The table ships with the binary; a parse failure is a build defect.
			panic("expansion: invalid related_skills.json: " + err.Error())
		}
	})
	return relatedSkills
}

// ExpandRelatedSkills returns the candidate's skills associated with
// requiredSkill in the co-occurrence table. It is total: unknown skill
// names and empty skill lists yield an empty slice, never an error.
func ExpandRelatedSkills(requiredSkill string, userSkills []types.Skill) []types.Skill {
	associated := table()[normalize(requiredSkill)]
	if len(associated) == 0 || len(userSkills) == 0 {
		return []types.Skill{}
	}

	matches := []types.Skill{}
	seen := make(map[string]bool)
	for _, name := range associated {
		for _, skill := range userSkills {
			if seen[skill.ID] {
				continue
			}
			if namesMatch(skill.Name, name) {
				matches = append(matches, skill)
				seen[skill.ID] = true
			}
		}
	}
	return matches
}

// ExpandAll collects the related matches for every required skill,
// deduplicated by skill id, preserving first-found order.
func ExpandAll(req *types.JobRequirements, userSkills []types.Skill) []types.Skill {
	matches := []types.Skill{}
	seen := make(map[string]bool)
	for _, required := range req.RequiredSkills {
		for _, skill := range ExpandRelatedSkills(required, userSkills) {
			if !seen[skill.ID] {
				matches = append(matches, skill)
				seen[skill.ID] = true
			}
		}
	}
	return matches
}

// RelatedIDs returns the expanded matches as an id set for skill scoring.
func RelatedIDs(req *types.JobRequirements, userSkills []types.Skill) map[string]bool {
	ids := make(map[string]bool)
	for _, skill := range ExpandAll(req, userSkills) {
		ids[skill.ID] = true
	}
	return ids
}

// SatisfiedRequirements returns the required skills that have related
// evidence in the candidate's skill list. Analysis uses this to avoid
// flagging a requirement as missing when an associated skill covers it.
func SatisfiedRequirements(req *types.JobRequirements, userSkills []types.Skill) map[string]bool {
	satisfied := make(map[string]bool)
	for _, required := range req.RequiredSkills {
		if len(ExpandRelatedSkills(required, userSkills)) > 0 {
			satisfied[normalize(required)] = true
		}
	}
	return satisfied
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// namesMatch checks exact or either-direction substring match,
// case-insensitively.
func namesMatch(a, b string) bool {
	la, lb := normalize(a), normalize(b)
	if la == "" || lb == "" {
		return false
	}
	return la == lb || strings.Contains(la, lb) || strings.Contains(lb, la)
}
