package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/free-games-notifier/internal/api/handlers"
	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one check cycle locally and exit",
		Long: "Fetches the current free games, announces new ones and records them in\n" +
			"the state file, without starting the server. Do not run it against the\n" +
			"same state file as a running server.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			a := newApp(cfg, log)

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Schedule.CycleTimeout)
			defer cancel()

			result, err := a.engine.RunCycle(ctx, domain.TriggerManual)
			if err != nil {
				return fmt.Errorf("running check: %w", err)
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), result)
			}

			if _, err := fmt.Fprintln(cmd.OutOrStdout(), handlers.Summary(len(result.Offers))); err != nil {
				return err
			}
			if len(result.Offers) == 0 {
				return nil
			}
			return printOffersTable(cmd.OutOrStdout(), result.Offers)
		},
	}
}
