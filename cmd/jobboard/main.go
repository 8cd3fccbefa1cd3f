// Command jobboard runs the job board API, its schema migrations and the
// notification relay.
package main

import (
	"fmt"
	"os"

	"github.com/gartstein/jobboard/internal/jobboard/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	sqlitePath string
)

var rootCmd = &cobra.Command{
	Use:   "jobboard",
	Short: "Job board API server",
	Long: `Job board backend: companies publish offers, candidates apply to
positions and both sides receive notifications about each step.

Subcommands:
  serve    - Run the HTTP API and gRPC health server
  migrate  - Create or update the database schema
  relay    - Consume pushed notifications from Kafka`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "Use a local SQLite file instead of PostgreSQL")

	rootCmd.AddCommand(serveCmd, migrateCmd, relayCmd)
}

// initLogger builds a production logger at the configured level.
func initLogger(level string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		zapCfg.Level = lvl
	}
	return zapCfg.Build()
}

// setup loads the configuration and the logger shared by every command.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func syncLogger(logger *zap.Logger) {
	// Sync on stderr fails on some platforms; nothing useful can be done then.
	_ = logger.Sync()
}
