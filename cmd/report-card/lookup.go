// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/report-card/internal/history"
	"github.com/pdiddy/report-card/internal/lookup"
	"github.com/pdiddy/report-card/internal/records"
	"github.com/pdiddy/report-card/internal/report"
	"github.com/pdiddy/report-card/pkg/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <registration-number>",
	Short: "Fetch a student's records and print the report card",
	Long: `Lookup fetches the subject records for one registration number from the
record service, computes the CGPA, and prints the report card. Students
with a CGPA above the banner threshold get a congratulations line.

Use --xlsx to also write a printable workbook and --json for the raw
page state. Each lookup is recorded in the history database unless
--no-history is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg := appConfig()
	jsonOutput, _ := cmd.Flags().GetBool("json")
	xlsxPath, _ := cmd.Flags().GetString("xlsx")

	ctrl := lookup.NewController(records.NewClient(cfg.RecordService), lookup.OptionsFromConfig(cfg.Banner))
	defer ctrl.Close()

	ctx := context.Background()
	st, _, fetchErr := ctrl.Submit(ctx, args[0])

	if err := recordLookup(ctx, cfg.History, st, ctrl); err != nil {
		return err
	}

	view := report.NewView(st, ctrl.Now())
	if err := printLookup(os.Stdout, st, view, jsonOutput); err != nil {
		return err
	}

	if xlsxPath != "" {
		if err := writeWorkbook(xlsxPath, view); err != nil {
			return err
		}
	}

	if fetchErr != nil {
		return fmt.Errorf("looking up %q: %w", args[0], fetchErr)
	}
	return nil
}

func recordLookup(ctx context.Context, cfg types.HistoryConfig, st lookup.State, ctrl *lookup.Controller) error {
	if cfg.Disabled {
		return nil
	}
	store, err := history.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.Record(ctx, history.FromState(st, ctrl.Now())); err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	return nil
}

func printLookup(w io.Writer, st lookup.State, view report.View, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	return report.WriteText(w, view)
}

func writeWorkbook(path string, view report.View) error {
	if !view.ShowTable() {
		fmt.Fprintln(os.Stderr, "No subject records; skipping workbook.")
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating workbook: %w", err)
	}
	if err := report.WriteXLSX(f, view); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing workbook: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}

// addRecordServiceFlags registers the flags shared by lookup and serve.
func addRecordServiceFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", defaultBaseURL, "record service base URL")
	cmd.Flags().Duration("timeout", defaultTimeout, "record service request timeout")
	cmd.Flags().Int("retries", 0, "retries on HTTP 429 or 503 (0 = single request)")
	cmd.Flags().Bool("no-history", false, "do not record lookups in the history database")
}

func init() {
	addRecordServiceFlags(lookupCmd)
	lookupCmd.Flags().Bool("json", false, "print the page state as JSON")
	lookupCmd.Flags().String("xlsx", "", "also write the report card to this XLSX file")

	rootCmd.AddCommand(lookupCmd)
}
