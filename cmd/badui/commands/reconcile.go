package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"badui/internal/email"
	"badui/internal/jobs"
)

func newReconcileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run one moderator promotion pass",
		Long: `Promote every user whose moderator request has been accepted.

The server does this on a timer; this command runs a single pass immediately.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.load()
			database, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			reconciler := jobs.NewModeratorReconciler(database, cfg.ReconcileInterval,
				jobs.WithNotifier(email.NewNotifier(cfg, database)),
				jobs.WithLogger(cfg.NewLogger(cmd.ErrOrStderr())),
			)
			result, err := reconciler.ReconcileOnce(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "scanned %d requests, %d accepted, %d promoted, %d orphaned\n",
				result.Scanned, result.Accepted, len(result.Promoted), result.Orphaned)
			return nil
		},
	}
}
