package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/timekit-io/timekit/pkg/history"
	"github.com/timekit-io/timekit/pkg/logging"
	"github.com/timekit-io/timekit/pkg/retry"
	"github.com/timekit-io/timekit/pkg/timespan"
)

var (
	cfgFile      string
	outputFormat string
	logLevel     string
	historyPath  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "timekit",
	Short: "CLI for precise command timing and clock inspection",
	Long: `timekit measures command runtimes against the monotonic clock,
probes clock resolution and drift, keeps a local measurement history,
and can serve clock-health metrics over HTTP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.timekit/config)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".timekit")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TIMEKIT")
	viper.AutomaticEnv()
	viper.BindEnv("history_path", "TIMEKIT_HISTORY_PATH")

	viper.SetDefault("rate_limit_rps", 10.0)
	viper.SetDefault("rate_limit_burst", 20)

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetString("output") != "" && !rootCmd.PersistentFlags().Changed("output") {
			outputFormat = viper.GetString("output")
		}
		if viper.GetString("log_level") != "" && !rootCmd.PersistentFlags().Changed("log-level") {
			logLevel = viper.GetString("log_level")
		}
	}

	historyPath = viper.GetString("history_path")
	if historyPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			historyPath = filepath.Join(home, ".timekit", "history.db")
		}
	}
}

// IsJSONOutput reports whether --output json was requested
func IsJSONOutput() bool {
	return outputFormat == "json"
}

// IsYAMLOutput reports whether --output yaml was requested
func IsYAMLOutput() bool {
	return outputFormat == "yaml"
}

func newLogger(component string) *logging.Logger {
	return logging.New(component, logging.ParseLevel(logLevel), viper.GetBool("log_json"))
}

// openHistory opens the SQLite measurement store, creating its directory on
// first use. An empty path falls back to an in-memory store. Opening is
// retried briefly since a concurrent timekit run can hold the write lock.
func openHistory() (history.Store, error) {
	if historyPath == "" {
		return history.NewMemoryStore(), nil
	}
	if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	var store history.Store
	err := retry.Do(context.Background(), retry.Config{
		MaxRetries:     2,
		InitialBackoff: timespan.Milliseconds(100),
		MaxBackoff:     timespan.Seconds(1),
		Multiplier:     2,
	}, func() error {
		s, err := history.NewSQLiteStore(historyPath)
		if err != nil {
			return err
		}
		store = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}
