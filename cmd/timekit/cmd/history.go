package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/timekit-io/timekit/pkg/history"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded measurements",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded measurements, newest first",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single measurement",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded measurements",
	RunE:  runHistoryClear,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of records to show (0 for all)")
}

type historyEntry struct {
	ID         string `json:"id" yaml:"id"`
	Command    string `json:"command" yaml:"command"`
	ExitCode   int    `json:"exit_code" yaml:"exit_code"`
	WallNanos  int64  `json:"wall_ns" yaml:"wall_ns"`
	MonoNanos  int64  `json:"mono_ns" yaml:"mono_ns"`
	DriftNanos int64  `json:"drift_ns" yaml:"drift_ns"`
	StartedAt  string `json:"started_at" yaml:"started_at"`
}

func toEntry(r *history.Record) historyEntry {
	return historyEntry{
		ID:         r.ID,
		Command:    r.Command,
		ExitCode:   r.ExitCode,
		WallNanos:  r.Wall.WholeNanoseconds(),
		MonoNanos:  r.Monotonic.WholeNanoseconds(),
		DriftNanos: r.Drift().WholeNanoseconds(),
		StartedAt:  r.StartedAt.Format(time.RFC3339),
	}
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	records, err := store.ListRecords(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]historyEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, toEntry(r))
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}
	if IsYAMLOutput() {
		output, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Print(string(output))
		return nil
	}

	if len(records) == 0 {
		fmt.Println("No measurements recorded")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Command", "Exit", "Wall", "Monotonic", "Started At")
	for _, r := range records {
		table.Append(
			shortID(r.ID),
			r.Command,
			fmt.Sprintf("%d", r.ExitCode),
			r.Wall.String(),
			r.Monotonic.String(),
			r.StartedAt.Format("2006-01-02 15:04:05"),
		)
	}
	table.Render()
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	record, err := store.GetRecord(args[0])
	if err != nil {
		return fmt.Errorf("failed to get record %s: %w", args[0], err)
	}
	entry := toEntry(record)

	if IsJSONOutput() {
		output, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}
	if IsYAMLOutput() {
		output, err := yaml.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Print(string(output))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Append("ID", record.ID)
	table.Append("Command", record.Command)
	table.Append("Exit Code", fmt.Sprintf("%d", record.ExitCode))
	table.Append("Wall", record.Wall.String())
	table.Append("Monotonic", record.Monotonic.String())
	table.Append("Drift", record.Drift().String())
	table.Append("Started At", record.StartedAt.Format(time.RFC3339))
	table.Render()
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	dropped, err := store.Clear()
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Printf("Deleted %d measurement(s)\n", dropped)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
