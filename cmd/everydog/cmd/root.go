package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/everydog-league/api/internal/config"
	"github.com/spf13/cobra"
)

var (
	logLevel    string
	logFormat   string
	storeDriver string

	rootCmd = &cobra.Command{
		Use:   "everydog",
		Short: "EveryDog League API server",
		Long: `everydog serves the EveryDog League community API: the event catalogue,
event registration, newsletter sign-up and the contact form.

Running it without a subcommand starts the HTTP server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
	}
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: json)")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "store driver (postgres, mongo, memory) (default: postgres)")
	// serve runs by default, so the root command accepts its flags too.
	rootCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (default: 8001)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(healthcheckCmd)
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	return applyFlags(cfg)
}

func applyFlags(cfg config.Config) (config.Config, error) {
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if storeDriver != "" {
		cfg.Store.Driver = strings.ToLower(strings.TrimSpace(storeDriver))
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
