// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coursegen/internal/runlog"
	"github.com/pdiddy/coursegen/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List previous generation runs or show one transcript",
	Long: `History reads the SQLite run log. Without arguments it lists recent runs
with their status, module count and turn count. With a run id it prints that
run's transcript. The log is an audit trail; runs cannot be resumed from it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if settings.Course.HistoryDB == "" {
		return fmt.Errorf("history is disabled: history.db is empty")
	}
	store, err := runlog.Open(settings.Course.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	ctx := context.Background()

	if len(args) == 1 {
		msgs, err := store.Transcript(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(os.Stdout, msgs)
		}
		printTranscript(os.Stdout, msgs)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(os.Stdout, runs)
	}
	printRuns(os.Stdout, runs)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRuns(w io.Writer, runs []types.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-16s  %-10s  %-7s  %-5s  %s\n", "Run", "Started", "Status", "Modules", "Turns", "Topic")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-16s  %-10s  %-7d  %-5d  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status, r.Modules, r.Turns, truncate(r.Topic, 40))
		if r.Error != "" {
			fmt.Fprintf(w, "  error: %s\n", truncate(r.Error, 90))
		}
	}
}

func printTranscript(w io.Writer, msgs []types.Message) {
	for i, m := range msgs {
		switch {
		case m.ToolCall != nil:
			fmt.Fprintf(w, "[%d] %s -> %s(%v)\n", i, m.Agent, m.ToolCall.Name, m.ToolCall.Args)
		case m.ToolResult != nil:
			fmt.Fprintf(w, "[%d] %s <- %s: %s\n", i, m.Agent, m.ToolResult.Name, truncate(m.ToolResult.Output, 200))
		default:
			fmt.Fprintf(w, "[%d] %s (%s):\n%s\n", i, m.Role, m.Agent, m.Text)
		}
		fmt.Fprintln(w)
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
