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
	"jobradar/internal/scheduler"
	"jobradar/internal/store"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run cycles continuously",
	Long:  "Runs one cycle immediately, then one per watch_interval; blocks until SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"feeds", len(cfg.Feeds),
		"interval", cfg.WatchInterval.String(),
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

	sched := scheduler.New(r, cfg.WatchInterval, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("watch loop error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
