package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

func offersCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "offers",
		Short: "List the games that are free right now",
		Long: "Prints every current free-game offer, announced or not. By default the\n" +
			"catalog is queried directly; --remote asks a running server instead.\n" +
			"The state file is never read or written.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				offers []domain.Offer
				err    error
			)
			if remote {
				offers, err = remoteOffers(cmd.Context())
			} else {
				offers, err = localOffers(cmd.Context())
			}
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), offers)
			}
			return printOffersTable(cmd.OutOrStdout(), offers)
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "query the API server at --server")
	return cmd
}

func localOffers(ctx context.Context) ([]domain.Offer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	offers, err := newCatalogClient(cfg, newLogger(cfg)).FetchCurrentOffers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching offers: %w", err)
	}
	return offers, nil
}

func remoteOffers(ctx context.Context) ([]domain.Offer, error) {
	resp, err := newClient().ListOffers(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Offers, nil
}
