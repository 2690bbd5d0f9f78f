// Package cli implements the hirex terminal client.
package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hirex-ai/hirex/backend/internal/app"
	"github.com/hirex-ai/hirex/backend/internal/config"
	"github.com/hirex-ai/hirex/backend/pkg/logger"
)

var (
	envFile string
	verbose bool
	plain   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hirex",
	Short: "Chat with HirEx, the interview and resume assistant",
	Long: `hirex talks to the configured model from the terminal.

Questions outside interview and resume topics are answered with a fixed
out-of-scope reply without contacting the model. Configuration is read from
the environment (and an optional .env file), exactly like the API server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "disable markdown rendering")

	rootCmd.AddCommand(chatCmd, askCmd)
}

// loadApp reads configuration and builds the services used by every command.
func loadApp(cmd *cobra.Command) (*app.App, *zap.Logger, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	log := zap.NewNop()
	if verbose {
		log = logger.New(cmd.ErrOrStderr(), cfg.Log.Debug)
	}

	a, err := app.New(cmd.Context(), cfg, &http.Client{}, log)
	if err != nil {
		return nil, nil, err
	}
	return a, log, nil
}
