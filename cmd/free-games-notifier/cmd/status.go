package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check liveness and readiness of a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newClient()

			msg, err := c.Healthz(cmd.Context())
			if err != nil {
				return err
			}

			ready := "ready"
			if err := c.Ready(cmd.Context()); err != nil {
				ready = "not ready: " + err.Error()
			}

			tw := newTabWriter(cmd.OutOrStdout())
			tw.writef("Server:\t%s\n", c.BaseURL())
			tw.writef("Liveness:\t%s\n", msg)
			tw.writef("Readiness:\t%s\n", ready)
			if err := tw.finish(); err != nil {
				return err
			}

			if ready != "ready" {
				return fmt.Errorf("server at %s is not ready", c.BaseURL())
			}
			return nil
		},
	}
}
