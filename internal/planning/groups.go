package planning

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/prompts"
	"github.com/jonathan/cv-tailor/internal/requirements"
	"github.com/jonathan/cv-tailor/internal/schemas"
	"github.com/jonathan/cv-tailor/internal/types"
)

type groupingResponse struct {
	Groups []struct {
		Category string   `json:"category"`
		SkillIDs []string `json:"skill_ids"`
	} `json:"groups"`
}

// planSkillGroups asks the generator for a semantic grouping of the
// surfaced skills and validates it against the structural invariants:
// ids are a partition of the surfaced set, group count within bounds.
// One retry on violation, then the flat fallback.
func (p *Planner) planSkillGroups(ctx context.Context, req *types.JobRequirements, surfaced []types.ScoredSkill) []types.SkillGroup {
	if len(surfaced) == 0 {
		return []types.SkillGroup{}
	}
	// Too few skills to split into the minimum group count.
	if p.gen == nil || len(surfaced) < MinSkillGroups {
		return flatGroup(surfaced)
	}

	prompt := p.groupingPrompt(req, surfaced)
	schema := schemas.MustGet(schemas.SkillGroups)

	for attempt := 0; attempt < 2; attempt++ {
		var resp groupingResponse
		if err := p.gen.GenerateStructured(ctx, prompt, schema, llm.TierStandard, &resp); err != nil {
			p.logger.Warn("skill grouping generation failed",
				zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		groups, err := buildGroups(resp, surfaced)
		if err != nil {
			p.logger.Warn("skill grouping violated structure invariants",
				zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}
		return groups
	}

	p.logger.Warn("falling back to flat skill grouping")
	return flatGroup(surfaced)
}

func (p *Planner) groupingPrompt(req *types.JobRequirements, surfaced []types.ScoredSkill) string {
	var sb strings.Builder
	for _, s := range surfaced {
		fmt.Fprintf(&sb, "%s: %s\n", s.Skill.ID, s.Skill.Name)
	}
	return prompts.Format(prompts.MustGet("planning.json", "group-skills"), map[string]string{
		"MinGroups":    strconv.Itoa(MinSkillGroups),
		"MaxGroups":    strconv.Itoa(MaxSkillGroups),
		"Requirements": requirements.Summary(req),
		"Skills":       sb.String(),
	})
}

// buildGroups converts a generator response into SkillGroups, rejecting
// any response that invents ids, duplicates them across groups, leaves
// surfaced skills unassigned, or uses an out-of-bounds group count.
func buildGroups(resp groupingResponse, surfaced []types.ScoredSkill) ([]types.SkillGroup, error) {
	if len(resp.Groups) < MinSkillGroups || len(resp.Groups) > MaxSkillGroups {
		return nil, fmt.Errorf("group count %d outside [%d,%d]", len(resp.Groups), MinSkillGroups, MaxSkillGroups)
	}

	surfacedIDs := make(map[string]bool, len(surfaced))
	for _, s := range surfaced {
		surfacedIDs[s.Skill.ID] = true
	}

	assigned := make(map[string]bool, len(surfaced))
	groups := make([]types.SkillGroup, 0, len(resp.Groups))
	for i, g := range resp.Groups {
		if strings.TrimSpace(g.Category) == "" {
			return nil, fmt.Errorf("group %d has an empty category", i)
		}
		for _, id := range g.SkillIDs {
			if !surfacedIDs[id] {
				return nil, fmt.Errorf("group %q references unknown skill id %q", g.Category, id)
			}
			if assigned[id] {
				return nil, fmt.Errorf("skill id %q assigned to more than one group", id)
			}
			assigned[id] = true
		}
		groups = append(groups, types.SkillGroup{
			Category: strings.TrimSpace(g.Category),
			SkillIDs: g.SkillIDs,
			Order:    i,
		})
	}

	if len(assigned) != len(surfaced) {
		return nil, fmt.Errorf("grouping covers %d of %d surfaced skills", len(assigned), len(surfaced))
	}

	return groups, nil
}

// flatGroup is the safe fallback: every surfaced skill in one group.
func flatGroup(surfaced []types.ScoredSkill) []types.SkillGroup {
	ids := make([]string, 0, len(surfaced))
	for _, s := range surfaced {
		ids = append(ids, s.Skill.ID)
	}
	return []types.SkillGroup{{Category: "Skills", SkillIDs: ids, Order: 0}}
}
