package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/types"
)

var errTransient = errors.New("provider timeout")

// fakeGenerator answers by schema title, mirroring how stages pick their
// output schemas.
type fakeGenerator struct {
	requirementsJSON string
	cvTextJSON       string
	err              error

	requirementsCalls int
	cvTextCalls       int
}

func (f *fakeGenerator) GenerateStructured(_ context.Context, _, schema string, _ llm.ModelTier, out any) error {
	if f.err != nil {
		return f.err
	}
	switch {
	case strings.Contains(schema, `"JobRequirements"`):
		f.requirementsCalls++
		return json.Unmarshal([]byte(f.requirementsJSON), out)
	case strings.Contains(schema, `"CVText"`):
		f.cvTextCalls++
		return json.Unmarshal([]byte(f.cvTextJSON), out)
	default:
		return errors.New("unexpected schema in test")
	}
}

func testProfile() *types.ProfileSnapshot {
	return &types.ProfileSnapshot{
		UserID:   "11111111-1111-1111-1111-111111111111",
		FullName: "Ada Lovelace",
		WorkExperiences: []types.Experience{
			{ID: "e1", OrderIndex: 0, Company: "Analytical Engines", Position: "Go Engineer", Description: "Built Go services with PostgreSQL.", Current: true},
		},
		Skills: []types.Skill{
			{ID: "s1", OrderIndex: 0, Name: "Go", Proficiency: "Expert"},
			{ID: "s2", OrderIndex: 1, Name: "PostgreSQL"},
		},
	}
}

const testRequirementsJSON = `{
	"required_skills": ["Go", "PostgreSQL"],
	"preferred_skills": ["Kubernetes"],
	"qualifications": [],
	"experience_level": "senior",
	"key_responsibilities": []
}`

const testCVTextJSON = `{
	"summary": "Engineer who builds Go services.",
	"achievements": [{"experience_id": "e1", "achievements": ["Shipped the platform"]}]
}`

func newTestOrchestrator(t *testing.T, store Store, gen llm.Generator) *Orchestrator {
	t.Helper()
	o := New(Options{Store: store, Generator: gen})
	t.Cleanup(o.Close)
	return o
}

func TestAnalyze_WritesCompletedRecord(t *testing.T) {
	store := newMemStore()
	store.profiles[testProfile().UserID] = testProfile()
	gen := &fakeGenerator{requirementsJSON: testRequirementsJSON}
	o := newTestOrchestrator(t, store, gen)

	err := o.Analyze(context.Background(), AnalyzePayload{
		UserID:           testProfile().UserID,
		JobDescriptionID: "job-1",
		JobDescription:   "We need a Go engineer with PostgreSQL.",
		AnalysisResultID: "a1",
	})
	require.NoError(t, err)

	record, err := store.GetAnalysis(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, record.Status)
	require.NotNil(t, record.Result)
	assert.GreaterOrEqual(t, record.Result.MatchScore, 0)
	assert.LessOrEqual(t, record.Result.MatchScore, 100)
	// Requirements are stored for the generation path to reuse.
	require.NotNil(t, record.Requirements)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, record.Requirements.RequiredSkills)
}

func TestAnalyze_MissingProfileIsTerminal(t *testing.T) {
	store := newMemStore()
	o := newTestOrchestrator(t, store, &fakeGenerator{requirementsJSON: testRequirementsJSON})

	err := o.Analyze(context.Background(), AnalyzePayload{
		UserID:           "22222222-2222-2222-2222-222222222222",
		JobDescriptionID: "job-1",
		JobDescription:   "text",
		AnalysisResultID: "a1",
	})

	require.Error(t, err)
	assert.True(t, IsTerminal(err))

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StagePersistence, se.Stage)
}

func TestAnalyze_Idempotent(t *testing.T) {
	store := newMemStore()
	store.profiles[testProfile().UserID] = testProfile()
	gen := &fakeGenerator{requirementsJSON: testRequirementsJSON}
	o := newTestOrchestrator(t, store, gen)

	payload := AnalyzePayload{
		UserID:           testProfile().UserID,
		JobDescriptionID: "job-1",
		JobDescription:   "We need a Go engineer.",
		AnalysisResultID: "a1",
	}

	require.NoError(t, o.Analyze(context.Background(), payload))
	first, err := store.GetAnalysis(context.Background(), "a1")
	require.NoError(t, err)

	// Simulate a crash after the status update: the record is stuck in
	// processing with no result. A re-run must repair it wholesale.
	require.NoError(t, store.SetAnalysisProcessing(context.Background(), "a1"))

	require.NoError(t, o.Analyze(context.Background(), payload))
	second, err := store.GetAnalysis(context.Background(), "a1")
	require.NoError(t, err)

	assert.Equal(t, types.StatusCompleted, second.Status)
	assert.Equal(t, first.Result, second.Result)
	// The requirements extraction was served from cache the second time.
	assert.Equal(t, 1, gen.requirementsCalls)
}

func seedCompletedAnalysis(store *memStore, id string) {
	req := &types.JobRequirements{
		RequiredSkills:      []string{"Go", "PostgreSQL"},
		PreferredSkills:     []string{"Kubernetes"},
		Qualifications:      []string{},
		ExperienceLevel:     types.LevelSenior,
		KeyResponsibilities: []string{},
	}
	_ = store.CompleteAnalysis(context.Background(), id, &types.AnalysisResult{MatchScore: 80}, req)
}

func TestGenerateCV_HappyPath(t *testing.T) {
	store := newMemStore()
	store.profiles[testProfile().UserID] = testProfile()
	seedCompletedAnalysis(store, "a1")
	gen := &fakeGenerator{cvTextJSON: testCVTextJSON}
	o := newTestOrchestrator(t, store, gen)

	err := o.GenerateCV(context.Background(), GenerateCVPayload{
		UserID:           testProfile().UserID,
		JobDescriptionID: "job-1",
		AnalysisResultID: "a1",
		CVID:             "cv1",
	})
	require.NoError(t, err)

	record, err := store.GetCV(context.Background(), "cv1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, record.Status)
	require.NotNil(t, record.Data)
	assert.Equal(t, "Ada Lovelace", record.Data.Header.FullName)
	assert.NotNil(t, record.Data.Education)
	assert.NotNil(t, record.Data.Languages)
	require.Len(t, record.Data.Experiences, 1)
	assert.Equal(t, []string{"Shipped the platform"}, record.Data.Experiences[0].Achievements)
}

func TestGenerateCV_MissingAnalysisIsTerminal(t *testing.T) {
	store := newMemStore()
	store.profiles[testProfile().UserID] = testProfile()
	o := newTestOrchestrator(t, store, &fakeGenerator{cvTextJSON: testCVTextJSON})

	err := o.GenerateCV(context.Background(), GenerateCVPayload{
		UserID:           testProfile().UserID,
		AnalysisResultID: "absent",
		CVID:             "cv1",
	})

	require.Error(t, err)
	assert.True(t, IsTerminal(err))
}

func TestGenerateCV_IncompleteAnalysisIsTerminal(t *testing.T) {
	store := newMemStore()
	store.profiles[testProfile().UserID] = testProfile()
	require.NoError(t, store.SetAnalysisProcessing(context.Background(), "a1"))
	o := newTestOrchestrator(t, store, &fakeGenerator{cvTextJSON: testCVTextJSON})

	err := o.GenerateCV(context.Background(), GenerateCVPayload{
		UserID:           testProfile().UserID,
		AnalysisResultID: "a1",
		CVID:             "cv1",
	})

	require.Error(t, err)
	assert.True(t, IsTerminal(err))
	assert.Contains(t, err.Error(), "not completed")
}

func TestGenerateCV_AnalysisWithoutRequirementsIsTerminal(t *testing.T) {
	store := newMemStore()
	store.profiles[testProfile().UserID] = testProfile()
	// Completed record that predates requirements storage.
	require.NoError(t, store.CompleteAnalysis(context.Background(), "a1", &types.AnalysisResult{}, nil))
	gen := &fakeGenerator{cvTextJSON: testCVTextJSON, requirementsJSON: testRequirementsJSON}
	o := newTestOrchestrator(t, store, gen)

	err := o.GenerateCV(context.Background(), GenerateCVPayload{
		UserID:           testProfile().UserID,
		AnalysisResultID: "a1",
		CVID:             "cv1",
	})

	require.Error(t, err)
	assert.True(t, IsTerminal(err))
	assert.Contains(t, err.Error(), "no stored requirements")
	// Re-extraction is never attempted on the generation path.
	assert.Zero(t, gen.requirementsCalls)
}

func TestGenerateCV_ValidationFailureRegeneratesOnceThenFails(t *testing.T) {
	profile := testProfile()
	// An empty full name makes every generated document structurally
	// invalid, so both attempts are rejected.
	profile.FullName = ""
	store := newMemStore()
	store.profiles[profile.UserID] = profile
	seedCompletedAnalysis(store, "a1")
	gen := &fakeGenerator{cvTextJSON: testCVTextJSON}
	o := newTestOrchestrator(t, store, gen)

	err := o.GenerateCV(context.Background(), GenerateCVPayload{
		UserID:           profile.UserID,
		AnalysisResultID: "a1",
		CVID:             "cv1",
	})

	require.Error(t, err)
	assert.True(t, IsTerminal(err))
	assert.Contains(t, err.Error(), "full name")
	assert.Equal(t, 2, gen.cvTextCalls)

	// Invalid content is never persisted.
	record, err := store.GetCV(context.Background(), "cv1")
	require.NoError(t, err)
	assert.Nil(t, record.Data)
	assert.NotEqual(t, types.StatusCompleted, record.Status)
}

func TestGenerateCV_Idempotent(t *testing.T) {
	store := newMemStore()
	store.profiles[testProfile().UserID] = testProfile()
	seedCompletedAnalysis(store, "a1")
	o := newTestOrchestrator(t, store, &fakeGenerator{cvTextJSON: testCVTextJSON})

	payload := GenerateCVPayload{
		UserID:           testProfile().UserID,
		JobDescriptionID: "job-1",
		AnalysisResultID: "a1",
		CVID:             "cv1",
	}

	require.NoError(t, o.GenerateCV(context.Background(), payload))

	// Crash between the status update and the result write.
	require.NoError(t, store.SetCVProcessing(context.Background(), "cv1"))

	require.NoError(t, o.GenerateCV(context.Background(), payload))
	record, err := store.GetCV(context.Background(), "cv1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, record.Status)
	require.NotNil(t, record.Data)
	assert.Len(t, record.Data.Experiences, 1)
}

func TestImportProfile_ReplacesStoredProfile(t *testing.T) {
	store := newMemStore()
	store.profiles["u1"] = &types.ProfileSnapshot{UserID: "u1", FullName: "Old Name"}

	profileJSON := `{
		"full_name": "Ada Lovelace",
		"work_experiences": [{"company": "Analytical Engines", "position": "Engineer", "current": true}],
		"skills": [{"name": "Mathematics"}],
		"education": [],
		"languages": []
	}`
	o := newTestOrchestrator(t, store, &importGenerator{response: profileJSON})

	err := o.ImportProfile(context.Background(), ImportProfilePayload{
		UserID:      "u1",
		FileContent: []byte("# Ada Lovelace\nEngineer at Analytical Engines"),
		FileType:    "markdown",
	})
	require.NoError(t, err)

	stored, err := store.GetProfileSnapshot(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stored.FullName)
	require.Len(t, stored.WorkExperiences, 1)
	assert.NotEmpty(t, stored.WorkExperiences[0].ID)
	require.Len(t, stored.Skills, 1)
	assert.Equal(t, "Mathematics", stored.Skills[0].Name)
}

// importGenerator answers every structured call with the same payload;
// the import path makes exactly one.
type importGenerator struct {
	response string
}

func (g *importGenerator) GenerateStructured(_ context.Context, _, _ string, _ llm.ModelTier, out any) error {
	return json.Unmarshal([]byte(g.response), out)
}
