package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmynk/settlewise/internal/config"
	"github.com/mmynk/settlewise/pkg/logging"
)

var (
	v   = viper.New()
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "settlewise",
	Short: "Debt settlement engine for shared-expense networks",
	Long: `Settlewise turns a network's open bills into the smallest practical set
of transfers that settles everyone, and records accepted plans atomically.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(v, path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("server", "", "server URL for client commands (default http://localhost:$PORT)")

	rootCmd.AddCommand(serveCmd, balancesCmd, planCmd, commitCmd, completeCmd)
}
