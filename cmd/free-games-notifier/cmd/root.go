// Package cmd implements the free-games-notifier CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/free-games-notifier/internal/api/client"
	"github.com/donaldgifford/free-games-notifier/internal/config"
	"github.com/donaldgifford/free-games-notifier/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "free-games-notifier",
	Short: "Announce Epic Games Store free games to Discord",
	Long: "free-games-notifier polls the Epic Games Store for games that are free\n" +
		"right now, announces the ones it has not announced before to a Discord\n" +
		"webhook and records them so they are never announced twice.",
	SilenceUsage: true,
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initViper)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML config file (optional; environment variables override it)")
	flags.String("env-file", ".env", "dotenv file loaded before reading the environment (empty to skip)")
	flags.String("server", "http://localhost:3000", "API server URL for remote commands")
	flags.StringP("output", "o", "table", "output format (table, json)")

	for _, name := range []string{"config", "env-file", "server", "output"} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(offersCmd())
	rootCmd.AddCommand(triggerCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(openapiCmd())
	rootCmd.AddCommand(versionCmd())
}

func initViper() {
	viper.SetEnvPrefix("FGN")
	viper.AutomaticEnv()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(
		viper.GetString("config"),
		config.WithEnvFile(viper.GetString("env-file")),
	)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Logging.Level, cfg.Logging.Format,
		logger.WithWriter(os.Stderr),
		logger.WithService(cfg.Tracing.ServiceName),
	)
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
