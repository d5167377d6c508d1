package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	"github.com/timekit-io/timekit/pkg/clock"
	"github.com/timekit-io/timekit/pkg/history"
	"github.com/timekit-io/timekit/pkg/timespan"
	"github.com/timekit-io/timekit/pkg/timing"
	"github.com/timekit-io/timekit/pkg/tracing"
)

var (
	measureNoSave bool
	measureRuns   int
)

// measureCmd represents the measure command
var measureCmd = &cobra.Command{
	Use:   "measure [flags] -- <command> [args...]",
	Short: "Time a command against the monotonic clock",
	Long: `Run a command and report its wall-clock and monotonic runtimes.
The monotonic reading is immune to NTP slews and manual clock changes;
the difference between the two is the wall clock's drift over the run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMeasure,
}

func init() {
	rootCmd.AddCommand(measureCmd)
	measureCmd.Flags().BoolVar(&measureNoSave, "no-save", false, "do not record the measurement in history")
	measureCmd.Flags().IntVar(&measureRuns, "runs", 1, "number of times to run the command")
}

type measureResult struct {
	ID         string  `json:"id" yaml:"id"`
	Command    string  `json:"command" yaml:"command"`
	ExitCode   int     `json:"exit_code" yaml:"exit_code"`
	WallNanos  int64   `json:"wall_ns" yaml:"wall_ns"`
	MonoNanos  int64   `json:"mono_ns" yaml:"mono_ns"`
	DriftNanos int64   `json:"drift_ns" yaml:"drift_ns"`
	WallSecs   float64 `json:"wall_seconds" yaml:"wall_seconds"`
	MonoSecs   float64 `json:"mono_seconds" yaml:"mono_seconds"`
}

func runMeasure(cmd *cobra.Command, args []string) error {
	log := newLogger("measure")

	provider, err := tracing.InitTracer(tracing.Config{
		ServiceName:    "timekit",
		ServiceVersion: Version,
		Environment:    viper.GetString("environment"),
		OTLPEndpoint:   viper.GetString("trace_endpoint"),
		Enabled:        viper.GetBool("trace_enabled"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer provider.Shutdown(context.Background())

	var store history.Store
	if !measureNoSave {
		store, err = openHistory()
		if err != nil {
			log.Warn("history unavailable, measurement will not be saved", map[string]interface{}{"error": err.Error()})
			store = nil
		} else {
			defer store.Close()
		}
	}

	command := strings.Join(args, " ")
	results := make([]measureResult, 0, measureRuns)

	for run := 0; run < measureRuns; run++ {
		ctx, span := provider.StartSpan(context.Background(), "measure",
			attribute.String("command", command),
			attribute.Int("run", run+1),
		)

		result, err := measureOnce(ctx, args, store)
		if err != nil {
			tracing.SetError(ctx, err)
			span.End()
			return err
		}
		results = append(results, result)
		span.End()
	}

	return renderMeasurements(results)
}

// measureOnce runs the command once, anchored on both clocks. The wall
// anchor is stripped of Go's own monotonic reading so the two measurements
// stay independent.
func measureOnce(ctx context.Context, args []string, store history.Store) (measureResult, error) {
	child := exec.Command(args[0], args[1:]...)
	child.Stdin = os.Stdin
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr

	startedAt := time.Now()
	wallStart := startedAt.Round(0)
	tm := timing.New(clock.System())

	runErr := child.Run()

	tm.Complete()
	mono := tm.Duration()
	wall := timespan.FromStd(time.Now().Round(0).Sub(wallStart))

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return measureResult{}, fmt.Errorf("failed to run command: %w", runErr)
		}
	}

	record := &history.Record{
		ID:        uuid.New().String(),
		Command:   strings.Join(args, " "),
		ExitCode:  exitCode,
		Wall:      wall,
		Monotonic: mono,
		StartedAt: startedAt,
		CreatedAt: time.Now(),
	}

	tracing.SetDuration(ctx, "duration.wall_seconds", wall)
	tracing.SetDuration(ctx, "duration.mono_seconds", mono)

	if store != nil {
		if err := store.SaveRecord(record); err != nil {
			return measureResult{}, fmt.Errorf("failed to save measurement: %w", err)
		}
	}

	return measureResult{
		ID:         record.ID,
		Command:    record.Command,
		ExitCode:   exitCode,
		WallNanos:  wall.WholeNanoseconds(),
		MonoNanos:  mono.WholeNanoseconds(),
		DriftNanos: record.Drift().WholeNanoseconds(),
		WallSecs:   wall.SecondsFloat(),
		MonoSecs:   mono.SecondsFloat(),
	}, nil
}

func renderMeasurements(results []measureResult) error {
	if IsJSONOutput() {
		output, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}
	if IsYAMLOutput() {
		output, err := yaml.Marshal(results)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Print(string(output))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Run", "Command", "Exit", "Wall", "Monotonic", "Drift")
	for i, r := range results {
		table.Append(
			fmt.Sprintf("%d", i+1),
			r.Command,
			fmt.Sprintf("%d", r.ExitCode),
			timespan.Nanoseconds(r.WallNanos).String(),
			timespan.Nanoseconds(r.MonoNanos).String(),
			timespan.Nanoseconds(r.DriftNanos).String(),
		)
	}
	table.Render()
	return nil
}
