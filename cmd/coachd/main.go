// Package main is the entry point for the coachd daemon.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/coachly/coachd/coach"
	"github.com/coachly/coachd/config"
	"github.com/coachly/coachd/engine"
	"github.com/coachly/coachd/memory"
	logsqlite "github.com/coachly/coachd/memory/logstore/sqlite"
	"github.com/coachly/coachd/memory/store/chromem"
	"github.com/coachly/coachd/ratelimit"
	"github.com/coachly/coachd/server"
	"github.com/coachly/coachd/task"
	"github.com/coachly/coachd/tools"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coachd",
		Short:         "A personal coach assistant with persistent conversation memory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), serveCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("coachd %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the coach HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if cfg.AnthropicAPIKey == "" {
				return fmt.Errorf("no Anthropic API key: set anthropic_api_key or ANTHROPIC_API_KEY")
			}
			return serve(cfg)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func serve(cfg *config.Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	logStore, err := logsqlite.New(cfg.DatabasePath("chatlog.db"))
	if err != nil {
		return fmt.Errorf("open chat log: %w", err)
	}
	defer logStore.Close()

	index, err := chromem.New()
	if err != nil {
		return fmt.Errorf("open vector index: %w", err)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("create embedder: %w", err)
	}

	mem := memory.NewManager(logStore, index, embedder)

	profiles, err := coach.NewProfileStore(cfg.DatabasePath("coaches.db"))
	if err != nil {
		return fmt.Errorf("open coach profiles: %w", err)
	}
	defer profiles.Close()

	tasks, err := task.NewStore(cfg.DatabasePath("tasks.db"))
	if err != nil {
		return fmt.Errorf("open task store: %w", err)
	}
	defer tasks.Close()

	limiter, err := ratelimit.New(ratelimit.Config{
		WindowSeconds: cfg.RateLimit.WindowSeconds,
		MaxRequests:   cfg.RateLimit.MaxRequests,
	})
	if err != nil {
		return fmt.Errorf("create rate limiter: %w", err)
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))

	registry := engine.NewToolRegistry()
	registry.Register(
		tools.NewAddTaskTool(tasks),
		tools.NewListTasksTool(tasks),
	)

	eng := engine.NewEngine(engine.NewAnthropicModel(&client), registry)

	service := coach.NewService(profiles, mem, limiter, eng, coach.Config{
		Model:         cfg.Model,
		MaxTokens:     cfg.MaxTokens,
		HistoryWindow: cfg.HistoryWindow,
		TurnWindow:    cfg.TurnWindow,
		MaxToolRounds: cfg.MaxToolRounds,
	}, logger)

	resetter := task.NewResetter(tasks, logger)
	if err := resetter.Start(); err != nil {
		return fmt.Errorf("start task resetter: %w", err)
	}
	defer resetter.Stop()

	srv := server.New(service, profiles, tasks, server.HeaderAuth{}, logger)

	logger.Info("listening", "addr", cfg.Listen, "model", cfg.Model)
	return http.ListenAndServe(cfg.Listen, srv.Handler())
}
