package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-tailor/internal/cache"
	"github.com/jonathan/cv-tailor/internal/config"
	"github.com/jonathan/cv-tailor/internal/db"
	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/logger"
	"github.com/jonathan/cv-tailor/internal/pipeline"
	"github.com/jonathan/cv-tailor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the task API server",
	Long:  `Start an HTTP server that accepts pipeline tasks (analyze, generateCV, importProfile) and serves status polling.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}
	defer func() { _ = client.Close() }()

	c := cache.New()
	c.StartCleanup(cache.DefaultCleanupInterval)
	defer c.Stop()

	orch := pipeline.New(pipeline.Options{
		Store:           database,
		Generator:       llm.NewSchemaGenerator(client),
		Logger:          log,
		Cache:           c,
		Weights:         cfg.Weights,
		MinSkillScore:   cfg.MinSkillScore,
		MaxSkills:       cfg.MaxSkills,
		SemanticScoring: cfg.SemanticScoring,
	})

	runner := pipeline.NewRunner(ctx, pipeline.RunnerOptions{
		MaxAttempts:    cfg.TaskMaxAttempts,
		TaskTimeout:    cfg.TaskTimeout,
		MaxConcurrency: cfg.TaskMaxConcurrency,
		Logger:         log,
	})

	srv := server.New(server.Config{
		ListenAddr:   cfg.ListenAddr,
		Orchestrator: orch,
		Runner:       runner,
		Store:        database,
		Logger:       log,
	})

	return srv.Start(ctx)
}
