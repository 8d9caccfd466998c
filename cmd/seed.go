package cmd

import (
	"fmt"

	"sprintsync/internal/config"
	"sprintsync/internal/database"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo users and tasks (no-op when data already exists)",
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		db, err := database.Init(cfg.Database)
		if err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		if err := database.Seed(db, cfg.Security.BcryptCost); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}

		fmt.Println("database seeded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
