package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"badui/internal/db"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.load()
			database, err := db.New(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.RunMigrations(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
