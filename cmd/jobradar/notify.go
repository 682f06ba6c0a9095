package main

import (
	"os"

	"github.com/spf13/cobra"

	"jobradar/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a canned summary through every configured channel to verify credentials.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	failures := 0
	for _, n := range buildNotifiers(cfg, logger) {
		if err := notifier.SendTestMessage(n); err != nil {
			logger.Error("test notification failed", "channel", n.Name(), "error", err)
			failures++
			continue
		}
		logger.Info("test notification sent", "channel", n.Name())
	}
	if failures > 0 {
		os.Exit(1)
	}
	return nil
}
