package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/freeboost/config"
)

func newValidateCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a settings file",
		Long: `Validate a freeboost settings file without contacting the boost API.

This command parses the YAML, expands environment variables, and validates
all fields.

Exit codes:
  0 - Settings are valid
  1 - Settings are invalid (error details printed to stderr)

Example:
  freeboost validate -c freeboost.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("invalid settings: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Settings are valid!\n")
			fmt.Fprintf(out, "  Config URL:    %s\n", cfg.ConfigURL)
			fmt.Fprintf(out, "  Order URL:     %s\n", cfg.OrderURL)
			fmt.Fprintf(out, "  Cache file:    %s\n", cfg.CacheFile)
			fmt.Fprintf(out, "  Log file:      %s\n", cfg.LogFile)
			fmt.Fprintf(out, "  Order retries: %d (timeout %s)\n", cfg.OrderRetries, cfg.OrderTimeout.Duration())
			if cfg.StatusPort > 0 {
				fmt.Fprintf(out, "  Status API:    :%d\n", cfg.StatusPort)
			}
			if cfg.Target.Platform != "" {
				fmt.Fprintf(out, "  Platform:      %s\n", cfg.Target.Platform)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to settings file (required)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
