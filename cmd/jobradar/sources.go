package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured feed sources",
	Long:  "Reads the config and prints a table of all configured feeds.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-25s %-50s %s\n", "Feed", "URL", "Status")
	fmt.Println(strings.Repeat("─", 85))

	enabled, disabled := 0, 0
	for _, f := range cfg.Feeds {
		status := "enabled"
		if !f.Enabled {
			status = "disabled"
			disabled++
		} else {
			enabled++
		}
		fmt.Printf("%-25s %-50s %s\n", f.Name, f.URL, status)
	}

	fmt.Printf("\nTotal: %d feeds (%d enabled, %d disabled)\n", len(cfg.Feeds), enabled, disabled)
	return nil
}
