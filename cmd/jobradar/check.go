package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jobradar/internal/ledger"
	"jobradar/internal/model"
	"jobradar/internal/notifier"
	"jobradar/internal/report"
	"jobradar/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one cycle without persisting anything",
	Long:  "One-shot dry run: fetches and processes every feed, logs the results, exits. The ledger, reports and archive are untouched and no external notifications go out.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("check mode: nothing will be persisted or dispatched")

	notifiers := []model.Notifier{notifier.NewLogNotifier(logger)}
	r := buildRunner(cfg, ledger.NewNopLedger(), store.NewNopArchive(), notifiers, report.NopWriter{}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	batch, err := r.Run(ctx)
	if err != nil {
		logger.Error("check failed", "error", err)
		os.Exit(1)
	}
	logger.Info("check complete",
		"new", batch.Meta.ItemsNew,
		"validated", batch.Meta.RecordsValidated,
	)
	return nil
}
