package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"badui/internal/config"
	"badui/internal/db"
)

// options holds the global flags shared by every subcommand.
type options struct {
	dbURL      string
	configFile string
}

// NewRootCmd builds the badui command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "badui",
		Short: "Bad UI collection - a gallery of deliberately terrible interfaces",
		Long: `badui serves the Bad UI collection website and administers its database.

Configuration comes from environment variables (DATABASE_URL, SERVER_ADDR,
SESSION_SECRET, ...). Page content is read from an optional YAML file.

Commands:
  serve     - Run the website and the moderator reconciler
  migrate   - Apply database migrations
  reconcile - Promote users whose moderator requests were accepted
  requests  - List, accept or reject moderator requests`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dbURL, "db", "", "Database URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file (overrides CONFIG_FILE)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newReconcileCmd(opts),
		newRequestsCmd(opts),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load reads the environment, applies flag overrides and installs the logger.
func (o *options) load() *config.Config {
	cfg := config.Load()
	if o.dbURL != "" {
		cfg.DatabaseURL = o.dbURL
	}
	if o.configFile != "" {
		cfg.ConfigFile = o.configFile
	}
	slog.SetDefault(cfg.NewLogger(os.Stderr))
	return cfg
}

// openDB connects to the configured database and applies pending migrations.
func openDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return database, nil
}
