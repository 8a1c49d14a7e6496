package types

// Gap severities in an analysis result.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Task statuses persisted on analysis and CV records.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Gap describes an unmet requirement surfaced by the analysis.
type Gap struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// AnalysisResult is the outcome of the analyze task: how well the
// profile fits the job, and where it falls short.
type AnalysisResult struct {
	MatchScore          int      `json:"match_score"`
	Strengths           []string `json:"strengths"`
	Gaps                []Gap    `json:"gaps"`
	MissingSkills       []string `json:"missing_skills"`
	SuggestedFocusAreas []string `json:"suggested_focus_areas"`
}
