// Package main is the entry point for the freeboost CLI.
//
// Usage:
//
//	freeboost run                          # Prompt for platform and links, then boost
//	freeboost run --platform tiktok --link1 URL --link2 URL
//	freeboost platforms [--platform P]     # List platforms or one platform's services
//	freeboost validate -c freeboost.yaml   # Validate a settings file
//	freeboost version                      # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// newRootCmd builds the command tree. Without a subcommand it shows help.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "freeboost",
		Short: "Keep placing free boost orders for a social profile",
		Long: `freeboost polls a free boost API and keeps placing orders for every
service of a platform, one worker per service, waiting out the cooldown the
API returns after each order.

Quick start:
  freeboost run
  freeboost run --platform tiktok \
    --link1 https://www.tiktok.com/@someone \
    --link2 https://www.tiktok.com/@someone/video/7351234567890123456

Every setting has a default; a settings file is only needed to change them:
  order_timeout: 20s
  status_port: 8080
  target:
    platform: tiktok
    link1: https://www.tiktok.com/@someone`,
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd(), newPlatformsCmd(), newValidateCmd(), newVersionCmd())
	return root
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of this freeboost binary.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "freeboost %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
