package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taskloom/taskloom/internal/config"
	"github.com/taskloom/taskloom/internal/llm"
	"github.com/taskloom/taskloom/internal/logging"
	"github.com/taskloom/taskloom/internal/orchestrator"
)

var rootCmd = &cobra.Command{
	Use:   "taskloom",
	Short: "Turn meeting notes into confirmed tasks",
	Long: `Taskloom ingests unstructured text (meeting notes, transcripts,
documents), extracts candidate action items and decisions, and routes
them through a human confirmation gate before they become tasks.

Typical flow:
  taskloom ingest notes.txt     extract action items from a file
  taskloom review               approve or reject the extracted items
  taskloom tasks                show the confirmed task list
  taskloom conflicts            check for duplicates and deadline collisions`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(conflictsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and builds the assistant. The caller owns
// the returned assistant and must Stop it after Start.
func setup() (*orchestrator.Assistant, *config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logging: %w", err)
	}

	client := llm.NewAnthropicClient(llm.AnthropicConfig{
		APIKey:    cfg.Anthropic.APIKey,
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
	}, logger)

	assistant, err := orchestrator.New(cfg, client, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return assistant, cfg, logger, nil
}

// waitIdle blocks until the pipeline drains or the timeout passes.
func waitIdle(a *orchestrator.Assistant, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	idleTicks := 0
	for time.Now().Before(deadline) {
		if a.Idle() {
			idleTicks++
			if idleTicks >= 3 {
				return
			}
		} else {
			idleTicks = 0
		}
		time.Sleep(25 * time.Millisecond)
	}
}
