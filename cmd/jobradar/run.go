package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"jobradar/internal/ledger"
	"jobradar/internal/report"
	"jobradar/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ingestion cycle",
	Long:  "Fetches every enabled feed, processes new items, writes the report, notifies, and commits the ledger.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"feeds", len(cfg.Feeds),
		"keywords", len(cfg.Keywords),
		"threshold", cfg.Notification.Threshold,
		"max_item_age", cfg.Filters.MaxItemAge.String(),
	)

	for _, p := range []string{cfg.Paths.Ledger, cfg.Paths.ArchiveDB} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			logger.Error("failed to create data dir", "path", p, "error", err)
			os.Exit(1)
		}
	}

	archive, err := store.NewArchive(cfg.Paths.ArchiveDB)
	if err != nil {
		logger.Error("failed to open archive", "error", err)
		os.Exit(1)
	}
	defer archive.Close()

	led := ledger.NewFileLedger(cfg.Paths.Ledger)
	notifiers := buildNotifiers(cfg, logger)
	writer := report.NewWriter(cfg.Paths.ReportsDir, logger)
	r := buildRunner(cfg, led, archive, notifiers, writer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := r.Run(ctx); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
	return nil
}
