package schemas

import (
	"embed"
	"fmt"
)

//go:embed *.json
var schemaFiles embed.FS

// Well-known schema names, matching the embedded files.
const (
	JobRequirements   = "job_requirements.json"
	SkillGroups       = "skill_groups.json"
	CVText            = "cv_text.json"
	ProfileImport     = "profile_import.json"
	SemanticRelevance = "semantic_relevance.json"
)

// Get returns the schema content by filename.
func Get(name string) (string, error) {
	data, err := schemaFiles.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read schema %s: %w", name, err)
	}
	return string(data), nil
}

// MustGet returns the schema content, panicking if the file is missing.
// Use only for schemas known at compile time.
func MustGet(name string) string {
	schema, err := Get(name)
	if err != nil {
		panic(err)
	}
	return schema
}
