package cmd

import (
	"context"
	"fmt"

	"github.com/everydog-league/api/internal/config"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the store with fixture events and exit",
	Long: `Connect to the configured store, insert the fixture events if the events
collection is empty, ensure indexes and exit. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger := config.NewLogger(cfg.Logging)

		ctx := context.Background()
		store, closeStore, err := openStore(ctx, cfg.Store, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		return bootstrapStore(ctx, store, cfg.SeedFile, logger)
	},
}
