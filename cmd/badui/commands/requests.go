package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"badui/internal/db"
	"badui/internal/models"
)

func newRequestsCmd(opts *options) *cobra.Command {
	requestsCmd := &cobra.Command{
		Use:   "requests",
		Short: "Manage moderator requests",
		Long: `Decide moderator requests.

Subcommands:
  list    - Show requests
  accept  - Accept a request; the reconciler promotes the applicant
  reject  - Reject a request`,
	}

	var pendingOnly, jsonOutput bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List moderator requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.load()
			database, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			requests, err := database.ListRequests(cmd.Context(), pendingOnly)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(requests)
			}
			return printRequests(cmd, requests)
		},
	}
	listCmd.Flags().BoolVar(&pendingOnly, "pending", false, "Only show undecided requests")
	listCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	requestsCmd.AddCommand(
		listCmd,
		newDecideCmd(opts, "accept", true),
		newDecideCmd(opts, "reject", false),
	)
	return requestsCmd
}

func newDecideCmd(opts *options, verb string, accepted bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: "Mark a moderator request as " + verb + "ed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid request id %q", args[0])
			}

			cfg := opts.load()
			database, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.SetRequestAccepted(cmd.Context(), id, &accepted); err != nil {
				if errors.Is(err, db.ErrRequestNotFound) {
					return fmt.Errorf("request %d not found", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "request %d %sed\n", id, verb)
			return nil
		},
	}
}

func printRequests(cmd *cobra.Command, requests []models.Request) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAPPLICANT\tSTATUS\tCREATED\tINTRODUCTION")
	for _, r := range requests {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
			r.ID, r.ApplicantID, r.Status(), r.CreatedAt.Format("2006-01-02 15:04"), r.Introduction)
	}
	return w.Flush()
}
