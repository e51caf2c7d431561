package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/freeboost"
	"github.com/jpalmerr/freeboost/internal/catalog"
	"github.com/jpalmerr/freeboost/internal/output"
)

func newPlatformsCmd() *cobra.Command {
	var (
		configFile string
		platform   string
		noColor    bool
	)

	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "List platforms and their services",
		Long: `Load the platform configuration (remote, or the local cache when the
endpoint is unreachable) and list the platforms, or the services of one.

Example:
  freeboost platforms
  freeboost platforms --platform tiktok`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(configFile)
			if err != nil {
				return err
			}

			logger, closeLog, err := openLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			client, err := newClient(cfg)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			defer client.Close()

			printer := output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ResolveColors(noColor))
			cat, err := loadCatalog(cmd.Context(), cfg, client, logger, printer)
			if err != nil {
				return err
			}

			if platform == "" {
				return output.PlatformTable(cmd.OutOrStdout(), cat)
			}
			if !cat.Has(platform) {
				return fmt.Errorf("%w: %q", freeboost.ErrUnknownPlatform, platform)
			}
			printer.Header("Services for " + catalog.DisplayName(platform))
			return output.ServiceTable(cmd.OutOrStdout(), cat.Services(platform))
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to settings file")
	cmd.Flags().StringVar(&platform, "platform", "", "show the services of this platform")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}
