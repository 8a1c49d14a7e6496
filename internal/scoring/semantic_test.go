package scoring

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
	response string
	err      error
	calls    int
}

func (s *stubGenerator) GenerateStructured(_ context.Context, _, _ string, _ llm.ModelTier, out any) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	return json.Unmarshal([]byte(s.response), out)
}

func semanticFixture() (*types.JobRequirements, []types.ScoredExperience) {
	req := &types.JobRequirements{RequiredSkills: []string{"Go"}}
	scored := []types.ScoredExperience{
		{
			Experience: types.Experience{ID: "e1", Position: "Engineer", Company: "Acme"},
			Score:      13,
			Reasons:    []string{`mentions required skill "Go"`},
		},
	}
	return req, scored
}

func TestAnnotateSemanticRelevance_AppendsReasons(t *testing.T) {
	req, scored := semanticFixture()
	gen := &stubGenerator{
		response: `{"assessments": [{"experience_id": "e1", "reason": "platform work closely mirrors the role"}]}`,
	}

	result := AnnotateSemanticRelevance(context.Background(), gen, zap.NewNop(), req, scored)

	require.Len(t, result, 1)
	assert.Equal(t, 13, result[0].Score)
	assert.Contains(t, result[0].Reasons, "platform work closely mirrors the role")
}

func TestAnnotateSemanticRelevance_GenerationFailureKeepsInput(t *testing.T) {
	req, scored := semanticFixture()
	gen := &stubGenerator{err: errors.New("provider down")}

	result := AnnotateSemanticRelevance(context.Background(), gen, zap.NewNop(), req, scored)

	require.Len(t, result, 1)
	assert.Equal(t, 13, result[0].Score)
	assert.Len(t, result[0].Reasons, 1)
}

func TestAnnotateSemanticRelevance_UnknownExperienceIDIgnored(t *testing.T) {
	req, scored := semanticFixture()
	gen := &stubGenerator{
		response: `{"assessments": [{"experience_id": "invented", "reason": "nope"}]}`,
	}

	result := AnnotateSemanticRelevance(context.Background(), gen, zap.NewNop(), req, scored)

	assert.Len(t, result[0].Reasons, 1)
}

func TestAnnotateSemanticRelevance_NilGeneratorAndEmptyInput(t *testing.T) {
	req, scored := semanticFixture()

	assert.Equal(t, scored, AnnotateSemanticRelevance(context.Background(), nil, zap.NewNop(), req, scored))

	gen := &stubGenerator{}
	empty := AnnotateSemanticRelevance(context.Background(), gen, zap.NewNop(), req, nil)
	assert.Empty(t, empty)
	assert.Zero(t, gen.calls)
}
