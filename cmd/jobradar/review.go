package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"jobradar/internal/report"
	"jobradar/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse stored reports interactively (TUI)",
	Long:  "Shows the report picker TUI, then launches the record browser for the chosen run.",
	RunE:  runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	entries, err := report.List(cfg.Paths.ReportsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list reports: %v\n", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Println("No reports yet. Run `jobradar run` first.")
		return nil
	}

	for {
		choice, err := review.RunReportPicker(entries)
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return nil
		}
		if choice < 0 {
			return nil
		}
		entry := entries[choice]

		batch, err := report.Load(entry.Path)
		if err != nil {
			fmt.Printf("Error loading report: %v\n", err)
			continue
		}

		wantQuit, err := review.RunReviewTUI(filepath.Base(entry.Path), batch.Records)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
		// else: loop → back to picker
	}
}
