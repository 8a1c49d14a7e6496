// Package config provides environment-backed configuration for the
// service. Values come from the process environment; a .env file is
// loaded by the command entry point before this package reads anything.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jonathan/cv-tailor/internal/scoring"
)

// Config holds everything the serve command needs.
type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	ListenAddr string

	// GeminiAPIKey authenticates against the generation API.
	GeminiAPIKey string

	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string

	// LogJSON switches the logger to JSON encoding.
	LogJSON bool
	// LogDebug lowers the log level to debug.
	LogDebug bool

	// SemanticScoring enables the optional LLM relevance pass on top of
	// the heuristic experience scores.
	SemanticScoring bool

	// Weights are the scoring constants, overridable per deployment.
	Weights scoring.Weights
	// MinSkillScore and MaxSkills bound the surfaced skill list.
	MinSkillScore int
	MaxSkills     int

	// Task runner policy.
	TaskMaxAttempts    int
	TaskTimeout        time.Duration
	TaskMaxConcurrency int
}

// Load reads configuration from the environment. Missing required
// values are reported together so a misconfigured deployment fails with
// one actionable message.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:         envOr("LISTEN_ADDR", ":8080"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		LogJSON:            envBool("LOG_JSON", true),
		LogDebug:           envBool("LOG_DEBUG", false),
		SemanticScoring:    envBool("SEMANTIC_SCORING", false),
		Weights:            weightsFromEnv(),
		MinSkillScore:      envInt("SKILL_MIN_SCORE", scoring.DefaultMinSkillScore),
		MaxSkills:          envInt("SKILL_MAX_COUNT", scoring.DefaultMaxSkills),
		TaskMaxAttempts:    envInt("TASK_MAX_ATTEMPTS", 0),
		TaskTimeout:        time.Duration(envInt("TASK_TIMEOUT_SECONDS", 0)) * time.Second,
		TaskMaxConcurrency: envInt("TASK_MAX_CONCURRENCY", 0),
	}

	var missing []string
	if cfg.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}

	return cfg, nil
}

// weightsFromEnv starts from the default scoring constants and applies
// any per-weight overrides. The defaults are deliberate; overrides
// exist for experimentation, not routine tuning.
func weightsFromEnv() scoring.Weights {
	w := scoring.DefaultWeights()
	w.RequiredSkillMatch = envInt("WEIGHT_REQUIRED_SKILL_MATCH", w.RequiredSkillMatch)
	w.PreferredSkillMatch = envInt("WEIGHT_PREFERRED_SKILL_MATCH", w.PreferredSkillMatch)
	w.ResponsibilityMatch = envInt("WEIGHT_RESPONSIBILITY_MATCH", w.ResponsibilityMatch)
	w.CurrentRole = envInt("WEIGHT_CURRENT_ROLE", w.CurrentRole)
	w.RecentRole = envInt("WEIGHT_RECENT_ROLE", w.RecentRole)
	w.SkillRequired = envInt("WEIGHT_SKILL_REQUIRED", w.SkillRequired)
	w.SkillRequiredHighBonus = envInt("WEIGHT_SKILL_REQUIRED_HIGH_BONUS", w.SkillRequiredHighBonus)
	w.SkillPreferred = envInt("WEIGHT_SKILL_PREFERRED", w.SkillPreferred)
	w.SkillPreferredHighBonus = envInt("WEIGHT_SKILL_PREFERRED_HIGH_BONUS", w.SkillPreferredHighBonus)
	w.SkillRelated = envInt("WEIGHT_SKILL_RELATED", w.SkillRelated)
	w.SkillOther = envInt("WEIGHT_SKILL_OTHER", w.SkillOther)
	return w
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}
