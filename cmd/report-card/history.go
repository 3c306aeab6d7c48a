// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/pdiddy/report-card/internal/history"
	"github.com/pdiddy/report-card/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Review or export past lookups",
	Long: `History reads the local SQLite database of past lookups kept under
--history-dir. Use subcommands to list recent lookups or export them.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent lookups, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	regNo, _ := cmd.Flags().GetString("reg-no")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := history.NewStore(appConfig().History)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(context.Background(), history.ListOptions{
		RegistrationNumber: regNo,
		Limit:              limit,
	})
	if err != nil {
		return err
	}
	return formatHistory(os.Stdout, entries, jsonOutput)
}

func formatHistory(w io.Writer, entries []history.Entry, jsonOutput bool) error {
	if jsonOutput {
		if entries == nil {
			entries = []history.Entry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No lookups recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-5s  %-20s  %-16s  %-24s  %-8s  %5s  %s\n",
		"ID", "When", "Query", "Name", "Outcome", "CGPA", "Subjects")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, e := range entries {
		name := truncate(e.StudentName, 24)
		query := truncate(e.Query, 16)
		fmt.Fprintf(w, "%-5d  %-20s  %-16s  %-24s  %-8s  %5s  %d\n",
			e.ID, e.LookedUpAt.Local().Format("2006-01-02 15:04:05"), query, name,
			e.Outcome, report.FormatCGPA(e.CGPA), e.SubjectCount)
	}

	fmt.Fprintf(w, "\n%d lookups\n", len(entries))
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export lookups with their subjects to YAML or JSON",
	Long: `Export writes every recorded lookup (or those for one --reg-no) with
their subject rows to <history-dir>/export.yaml or export.json.`,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	regNo, _ := cmd.Flags().GetString("reg-no")
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := history.NewStore(appConfig().History)
	if err != nil {
		return err
	}
	defer store.Close()

	path, err := store.Export(context.Background(), history.Format(format), history.ListOptions{
		RegistrationNumber: regNo,
		Limit:              limit,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

func init() {
	historyCmd.PersistentFlags().String("reg-no", "", "only lookups for this registration number")

	historyListCmd.Flags().Int("limit", 20, "maximum lookups to list (-1 = all)")
	historyListCmd.Flags().Bool("json", false, "output lookups as JSON")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().Int("limit", 0, "maximum lookups to export (0 = all)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
