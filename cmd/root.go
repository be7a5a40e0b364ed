package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SonAcx/Customer360/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "customer360",
	Short: "Customer lookup dashboard over the shared warehouse",
	Long:  "Searches the customer master by name, city, or state, ranks matches by identifier coverage, and correlates CRM pipeline and AMP purchasing activity across linked account ids.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
