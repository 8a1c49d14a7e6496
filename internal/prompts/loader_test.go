package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownPrompts(t *testing.T) {
	for _, tc := range []struct{ file, key string }{
		{"extraction.json", "extract-requirements"},
		{"extraction.json", "import-profile"},
		{"scoring.json", "semantic-relevance"},
		{"planning.json", "group-skills"},
		{"generation.json", "cv-text"},
	} {
		prompt, err := Get(tc.file, tc.key)
		require.NoError(t, err, "%s/%s", tc.file, tc.key)
		assert.NotEmpty(t, prompt)
	}
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("extraction.json", "does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("missing.json", "any")
	require.Error(t, err)
}

func TestFormat_ReplacesPlaceholders(t *testing.T) {
	out := Format("Job: {{.Job}}, Profile: {{.Profile}}", map[string]string{
		"Job":     "posting",
		"Profile": "snapshot",
	})
	assert.Equal(t, "Job: posting, Profile: snapshot", out)
}

func TestFormat_UnknownPlaceholderLeftIntact(t *testing.T) {
	out := Format("keep {{.Unknown}}", map[string]string{"Other": "x"})
	assert.Equal(t, "keep {{.Unknown}}", out)
}

func TestPrompts_HavePlaceholdersResolved(t *testing.T) {
	prompt := MustGet("generation.json", "cv-text")
	formatted := Format(prompt, map[string]string{
		"SummaryLength":       "short",
		"SummaryGuidance":     "1-2 sentences",
		"Requirements":        "req",
		"Profile":             "profile",
		"DetailedExperiences": "exp",
	})
	assert.False(t, strings.Contains(formatted, "{{."), "unresolved placeholder in %q", formatted)
}
