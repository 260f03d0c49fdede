// Package cmd implements the Cadence CLI commands using Cobra.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hbomb79/Cadence/internal"
	"github.com/hbomb79/Cadence/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	flagConfigPath string
	flagEnvFile    string
	flagLogLevel   string
)

var log = logger.Get("CLI")

var rootCmd = &cobra.Command{
	Use:           "cadence",
	Short:         "Convert SoundCloud tracks to WAV or FLAC over HTTP",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Emit(logger.FATAL, "%v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigPath, "config", "c", "", "Path to a YAML/TOML config file (environment variables take precedence)")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Dotenv file loaded in to the environment before configuration is read, if present")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Minimum log level: verbose | debug | info | warn | error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(probeCmd)
}

// loadConfig loads the configuration: defaults < config file < environment
// (including the dotenv file) < CLI flags. The resulting log level is
// applied immediately.
func loadConfig() (internal.CadenceConfig, error) {
	var config internal.CadenceConfig

	if flagEnvFile != "" {
		if err := godotenv.Load(flagEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config, fmt.Errorf("loading env file %s: %w", flagEnvFile, err)
		}
	}

	var err error
	if flagConfigPath != "" {
		err = config.LoadFromFile(flagConfigPath)
	} else {
		err = config.LoadFromEnv()
	}
	if err != nil {
		return config, err
	}

	if flagLogLevel != "" {
		config.LogLevel = flagLogLevel
	}

	level, err := logger.ParseLevel(config.LogLevel)
	if err != nil {
		return config, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.SetMinLoggingLevel(level.Level())

	return config, nil
}
