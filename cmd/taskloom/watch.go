package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taskloom/taskloom/internal/ingest"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the inbox directory for new files",
	Long: `Watch the configured inbox directory and run every new supported
file through the extraction pipeline. Press Ctrl-C to stop.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	assistant, cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	assistant.Start(context.Background())
	defer assistant.Stop()

	submit := func(path string) {
		if err := assistant.ProcessFile(path); err != nil {
			logger.Warn("inbox file skipped", zap.String("path", path), zap.Error(err))
		}
	}

	watcher, err := ingest.NewWatcher(cfg.Inbox.Dir, submit, logger)
	if err != nil {
		return fmt.Errorf("watch %s: %w", cfg.Inbox.Dir, err)
	}
	defer watcher.Close()

	if err := watcher.ScanExisting(); err != nil {
		logger.Warn("scan existing inbox files", zap.Error(err))
	}

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", color.CyanString(cfg.Inbox.Dir))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	fmt.Println("\nStopping...")
	return nil
}
