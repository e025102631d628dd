package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diewo77/giardino/internal/db"
)

// migrateCmd applies the schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Apply the database schema and exit.

GORM AutoMigrate is used unless SQL_MIGRATIONS is true, in which case the
versioned files of MIGRATIONS_DIR are applied with golang-migrate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, gdb, err := setup()
		if err != nil {
			return err
		}
		if err := migrate(cfg, gdb); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Info("migrations completed successfully")
		return nil
	},
}

// seedCmd inserts the baseline catalog
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the baseline service catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, gdb, err := setup()
		if err != nil {
			return err
		}
		if err := db.Seed(gdb); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
		log.Info("seeding completed successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
