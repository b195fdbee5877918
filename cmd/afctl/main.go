package main

import (
	"fmt"
	"os"

	"artisanal-futures/internal/app"
	"artisanal-futures/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    config.AppConfig
	logger *zap.Logger
)

// rootCmd is the maintenance CLI for the platform service.
var rootCmd = &cobra.Command{
	Use:   "afctl",
	Short: "Artisanal Futures maintenance tool",
	Long: `Maintenance commands for the Artisanal Futures service.

Available commands:
  categories - Category maintenance
  passcode   - Driver passcode tools
  routes     - Route archive tools
  token      - Development session tokens`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		cfg = config.Load()

		l, err := app.NewLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd, passcodeCmd, routesCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
