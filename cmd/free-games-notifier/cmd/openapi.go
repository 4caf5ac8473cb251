package cmd

import (
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/free-games-notifier/api/openapi"
	"github.com/donaldgifford/free-games-notifier/pkg/logger"
)

func openapiCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document",
		Long:  "Builds the API routes without starting a server and prints the OpenAPI 3.1 document.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			api := humaecho.New(echo.New(), humaConfig())
			registerAPI(api, newApp(cfg, logger.Discard()))

			out, err := openapi.Marshal(api, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "document format (json, yaml)")
	return cmd
}

