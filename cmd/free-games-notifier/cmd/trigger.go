package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func triggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Ask a running server to check now",
		Long:  "Calls GET /api/v1/check on the server at --server and prints the result.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := newClient().RunCheck(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), resp)
			}

			if _, err := fmt.Fprintln(cmd.OutOrStdout(), resp.Message); err != nil {
				return err
			}
			if len(resp.Games) == 0 {
				return nil
			}
			return printOffersTable(cmd.OutOrStdout(), resp.Games)
		},
	}
}
