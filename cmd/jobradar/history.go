package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jobradar/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recent runs",
	Long:  "Prints a table of recent runs from the archive, newest first. With a run ID, prints that run's records instead.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	archive, err := store.NewArchive(cfg.Paths.ArchiveDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open archive: %v\n", err)
		os.Exit(1)
	}
	defer archive.Close()

	if len(args) == 1 {
		return printRunRecords(archive, args[0])
	}

	runs, err := archive.RecentRuns(historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to query runs: %v\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-19s %-10s %-8s %-8s %-10s %-9s %s\n",
		"Started", "Fetched", "New", "Failed", "Validated", "Rejected", "Run ID")
	fmt.Println(strings.Repeat("─", 90))
	for _, r := range runs {
		fmt.Printf("%-19s %-10d %-8d %-8d %-10d %-9d %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.ItemsFetched, r.ItemsNew, r.ItemsFailed,
			r.RecordsValidated, r.RecordsRejected, r.RunID)
	}
	return nil
}

func printRunRecords(archive *store.Archive, runID string) error {
	records, err := archive.RecordsForRun(runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to query records: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Printf("No records stored for run %s.\n", runID)
		return nil
	}

	fmt.Printf("%-20s %-24s %-12s %-16s %s\n", "Company", "Title", "Location", "Salary", "Source")
	fmt.Println(strings.Repeat("─", 90))
	for _, r := range records {
		fmt.Printf("%-20s %-24s %-12s %-16s %s\n",
			r.Company, r.Title, r.Location, r.SalaryText, r.Source)
	}
	return nil
}
