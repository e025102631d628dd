// Package commands implements the giardino command line.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/internal/config"
	"github.com/diewo77/giardino/internal/db"
	"github.com/diewo77/giardino/internal/logging"
)

var (
	// Global flags
	envFile string
	dbDSN   string
)

// openDB connects to the configured store. Tests replace it.
var openDB = func(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	return db.Connect(cfg.Database, log)
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "giardino",
	Short: "Giardino - back office for a gardening business",
	Long: `Giardino manages clients, the service catalog, quotes and invoices
of a gardening business over a JSON API.

Commands:
  serve    - Run the HTTP API
  migrate  - Apply the database schema
  seed     - Insert the baseline service catalog
  admin    - Manage back-office accounts`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before reading configuration")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db", "", "Database DSN (overrides DATABASE_DSN)")
}

// loadConfig reads the environment file, when present, and the configuration.
func loadConfig() *config.Config {
	if envFile != "" {
		// a missing file is fine, the environment may already be set
		_ = godotenv.Load(envFile)
	}
	cfg := config.Load()
	if dbDSN != "" {
		cfg.Database.RawDSN = dbDSN
	}
	return cfg
}

// setup loads configuration, builds the logger and connects to the store.
func setup() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg := loadConfig()
	log, err := logging.New(cfg.Log, cfg.App.Dev)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build logger: %w", err)
	}
	gdb, err := openDB(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, gdb, nil
}

// migrate applies the schema the way the configuration asks for.
func migrate(cfg *config.Config, gdb *gorm.DB) error {
	if cfg.App.SQLMigrations {
		return db.MigrateSQL(cfg.Database.URL(), cfg.App.MigrationsDir)
	}
	return db.Migrate(gdb)
}
