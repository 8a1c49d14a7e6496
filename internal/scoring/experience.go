package scoring

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/cv-tailor/internal/types"
)

// ScoreExperiences scores every experience against the requirements and
// returns them sorted by (score desc, order index asc). No experience is
// dropped here; filtering happens downstream in structure planning.
//
// The score is a pure function of the inputs: same experience and
// requirements always produce the same score and reasons.
func ScoreExperiences(experiences []types.Experience, req *types.JobRequirements, w Weights, now time.Time) []types.ScoredExperience {
	scored := make([]types.ScoredExperience, 0, len(experiences))
	for _, exp := range experiences {
		score, reasons := scoreExperience(exp, req, w, now)
		scored = append(scored, types.ScoredExperience{
			Experience: exp,
			Score:      score,
			Reasons:    reasons,
		})
	}

	// Ties break toward user-declared order, never randomly.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Experience.OrderIndex < scored[j].Experience.OrderIndex
	})

	return scored
}

func scoreExperience(exp types.Experience, req *types.JobRequirements, w Weights, now time.Time) (int, []string) {
	text := strings.ToLower(exp.Position + " " + exp.Company + " " + exp.Description)

	score := 0
	reasons := []string{}

	for _, skill := range req.RequiredSkills {
		if containsSkill(text, skill) {
			score += w.RequiredSkillMatch
			reasons = append(reasons, fmt.Sprintf("mentions required skill %q", skill))
		}
	}

	for _, skill := range req.PreferredSkills {
		if containsSkill(text, skill) {
			score += w.PreferredSkillMatch
			reasons = append(reasons, fmt.Sprintf("mentions preferred skill %q", skill))
		}
	}

	for _, resp := range req.KeyResponsibilities {
		if responsibilityMatches(text, resp) {
			score += w.ResponsibilityMatch
			reasons = append(reasons, fmt.Sprintf("covers responsibility %q", resp))
		}
	}

	if exp.Current {
		score += w.CurrentRole
		reasons = append(reasons, "current role")
	} else if endedWithinYears(exp.EndDate, w.RecentYears, now) {
		score += w.RecentRole
		reasons = append(reasons, fmt.Sprintf("ended within the last %d years", w.RecentYears))
	}

	return score, reasons
}

// containsSkill does a case-insensitive substring check of the skill
// name in the experience text.
func containsSkill(lowerText, skill string) bool {
	skill = strings.ToLower(strings.TrimSpace(skill))
	return skill != "" && strings.Contains(lowerText, skill)
}

// responsibilityMatches checks whether the responsibility's keywords
// (tokens longer than 3 characters) appear in the experience text.
// More than half of the keywords must match to count.
func responsibilityMatches(lowerText, responsibility string) bool {
	tokens := keywordTokens(responsibility)
	if len(tokens) == 0 {
		return false
	}
	matched := 0
	for _, token := range tokens {
		if strings.Contains(lowerText, token) {
			matched++
		}
	}
	return matched*2 > len(tokens)
}

func keywordTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 3 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func endedWithinYears(endDate string, years int, now time.Time) bool {
	if endDate == "" {
		return false
	}
	parsed, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return false
	}
	return parsed.After(now.AddDate(-years, 0, 0))
}
