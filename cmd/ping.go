/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/longkey1/bookchat/internal/bookchat/config"
	"github.com/longkey1/bookchat/internal/bookchat/gateway"
	"github.com/spf13/cobra"
)

// pingCmd represents the ping command
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the answer service is reachable",
	Long: `Send a GET request to the answer service health endpoint and report the result.
The health endpoint is api_url joined with health_path (default /api/test).

Example:
  bookchat ping
  bookchat ping --api-url https://book.example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		gw, err := newGateway(cfg)
		if err != nil {
			return fmt.Errorf("creating gateway: %w", err)
		}

		start := time.Now()
		if err := gw.Ping(cmd.Context()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %s\n", cfg.HealthEndpoint(), gateway.UserMessage(err))
			return fmt.Errorf("ping failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is reachable (%s)\n",
			cfg.HealthEndpoint(), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
