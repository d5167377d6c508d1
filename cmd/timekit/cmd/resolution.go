package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/timekit-io/timekit/internal/probe"
)

var resolutionSamples int

// resolutionCmd represents the resolution command
var resolutionCmd = &cobra.Command{
	Use:   "resolution",
	Short: "Probe the monotonic clock's effective resolution",
	Long: `Sample the monotonic clock in a tight loop and report the smallest
and average observed tick. On most platforms the effective resolution is
coarser than the nanosecond the API advertises.`,
	RunE: runResolution,
}

func init() {
	rootCmd.AddCommand(resolutionCmd)
	resolutionCmd.Flags().IntVar(&resolutionSamples, "samples", 1000, "number of distinct clock steps to observe")
}

func runResolution(cmd *cobra.Command, args []string) error {
	res := probe.MeasureResolution(resolutionSamples)

	if IsJSONOutput() {
		output, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}
	if IsYAMLOutput() {
		output, err := yaml.Marshal(res)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Print(string(output))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Samples", "Min Step", "Mean Step")
	table.Append(
		fmt.Sprintf("%d", res.Samples),
		res.MinStep.String(),
		res.MeanStep.String(),
	)
	table.Render()
	return nil
}
