// Package cmd implements the spamcheck command-line interface.
package cmd

import (
	"context"
	"fmt"

	infraconfig "github.com/jonesrussell/north-cloud/spam-checker/infrastructure/config"
	"github.com/jonesrussell/north-cloud/spam-checker/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/config"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.yml"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debugMode forces debug logging for all commands.
	debugMode bool

	// rootCmd represents the root command for the spamcheck CLI.
	rootCmd = &cobra.Command{
		Use:   "spamcheck",
		Short: "Classify and consolidate domain spam check exports",
		Long: `spamcheck reads domain spam-check exports, flags spam keywords in each
row and writes one consolidated record per domain.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is $CONFIG_PATH or ./config.yml)",
	)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newClassifyCommand())
	rootCmd.AddCommand(newCollateCommand())
	rootCmd.AddCommand(newRulesCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newVersionCommand())
}

// loadConfig reads the configuration selected by --config and applies --debug.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = infraconfig.GetConfigPath(defaultConfigPath)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if debugMode {
		cfg.Service.Debug = true
	}
	if cfg.Service.Debug {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the process logger from configuration.
func newLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(
		logger.String("service", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
	), nil
}
