// Package importer extracts a user profile from an uploaded document
// (PDF or markdown) via LLM extraction. The resulting profile replaces
// the stored one wholesale; the transactional replace itself lives in
// the db package.
package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/prompts"
	"github.com/jonathan/cv-tailor/internal/schemas"
	"github.com/jonathan/cv-tailor/internal/types"
)

// Supported file types.
const (
	FileTypePDF      = "pdf"
	FileTypeMarkdown = "markdown"
)

const maxDownloadBytes = 20 << 20

// Importer turns document bytes into a ProfileSnapshot.
type Importer struct {
	gen        llm.Generator
	logger     *zap.Logger
	httpClient *http.Client
}

// NewImporter creates an importer.
func NewImporter(gen llm.Generator, logger *zap.Logger) *Importer {
	return &Importer{
		gen:    gen,
		logger: logger,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// importedProfile matches the profile_import schema.
type importedProfile struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Location        string `json:"location"`
	Headline        string `json:"headline"`
	Summary         string `json:"summary"`
	WorkExperiences []struct {
		Company     string `json:"company"`
		Position    string `json:"position"`
		Description string `json:"description"`
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
		Current     bool   `json:"current"`
	} `json:"work_experiences"`
	Skills []struct {
		Name        string `json:"name"`
		Proficiency string `json:"proficiency"`
	} `json:"skills"`
	Education []struct {
		Institution string `json:"institution"`
		Degree      string `json:"degree"`
		Field       string `json:"field"`
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
	} `json:"education"`
	Languages []struct {
		Name  string `json:"name"`
		Level string `json:"level"`
	} `json:"languages"`
}

// ExtractProfile extracts a profile from document content. fileContent
// may be nil, in which case the document is downloaded from fileURL.
func (im *Importer) ExtractProfile(ctx context.Context, userID, fileURL string, fileContent []byte, fileType string) (*types.ProfileSnapshot, error) {
	if len(fileContent) == 0 {
		downloaded, err := im.download(ctx, fileURL)
		if err != nil {
			return nil, fmt.Errorf("downloading document: %w", err)
		}
		fileContent = downloaded
	}

	text, err := ExtractText(fileContent, fileType)
	if err != nil {
		return nil, fmt.Errorf("extracting document text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("document contains no extractable text")
	}

	prompt := prompts.Format(prompts.MustGet("extraction.json", "import-profile"), map[string]string{
		"DocumentText": text,
	})

	var imported importedProfile
	if err := im.gen.GenerateStructured(ctx, prompt, schemas.MustGet(schemas.ProfileImport), llm.TierStandard, &imported); err != nil {
		return nil, fmt.Errorf("extracting profile: %w", err)
	}

	return toSnapshot(userID, &imported), nil
}

func (im *Importer) download(ctx context.Context, fileURL string) ([]byte, error) {
	if fileURL == "" {
		return nil, fmt.Errorf("no file content and no file URL provided")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := im.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching document", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
}

// toSnapshot assigns fresh ids and order indexes to the imported data.
func toSnapshot(userID string, imported *importedProfile) *types.ProfileSnapshot {
	snapshot := &types.ProfileSnapshot{
		UserID:          userID,
		FullName:        strings.TrimSpace(imported.FullName),
		Email:           strings.TrimSpace(imported.Email),
		Phone:           strings.TrimSpace(imported.Phone),
		Location:        strings.TrimSpace(imported.Location),
		Headline:        strings.TrimSpace(imported.Headline),
		Summary:         strings.TrimSpace(imported.Summary),
		WorkExperiences: []types.Experience{},
		Skills:          []types.Skill{},
		Education:       []types.Education{},
		Languages:       []types.Language{},
	}

	for i, exp := range imported.WorkExperiences {
		snapshot.WorkExperiences = append(snapshot.WorkExperiences, types.Experience{
			ID:          uuid.NewString(),
			OrderIndex:  i,
			Company:     strings.TrimSpace(exp.Company),
			Position:    strings.TrimSpace(exp.Position),
			Description: strings.TrimSpace(exp.Description),
			StartDate:   exp.StartDate,
			EndDate:     exp.EndDate,
			Current:     exp.Current,
		})
	}
	for i, skill := range imported.Skills {
		snapshot.Skills = append(snapshot.Skills, types.Skill{
			ID:          uuid.NewString(),
			OrderIndex:  i,
			Name:        strings.TrimSpace(skill.Name),
			Proficiency: strings.TrimSpace(skill.Proficiency),
		})
	}
	for i, edu := range imported.Education {
		snapshot.Education = append(snapshot.Education, types.Education{
			ID:          uuid.NewString(),
			OrderIndex:  i,
			Institution: strings.TrimSpace(edu.Institution),
			Degree:      strings.TrimSpace(edu.Degree),
			Field:       strings.TrimSpace(edu.Field),
			StartDate:   edu.StartDate,
			EndDate:     edu.EndDate,
		})
	}
	for _, lang := range imported.Languages {
		snapshot.Languages = append(snapshot.Languages, types.Language{
			ID:    uuid.NewString(),
			Name:  strings.TrimSpace(lang.Name),
			Level: strings.TrimSpace(lang.Level),
		})
	}

	return snapshot
}
