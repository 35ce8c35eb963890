package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soren0/counsel/db"
	"github.com/soren0/counsel/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if err := db.Migrate(cfg.PostgresDSN()); err != nil {
		return err
	}

	fmt.Println("Migrations applied.")
	return nil
}
