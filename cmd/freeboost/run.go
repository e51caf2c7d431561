package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/freeboost"
	"github.com/jpalmerr/freeboost/internal/catalog"
	"github.com/jpalmerr/freeboost/internal/output"
	"github.com/jpalmerr/freeboost/internal/resolver"
)

const (
	shutdownTimeout = 10 * time.Second
)

type runFlags struct {
	configFile string
	platform   string
	link1      string
	link2      string
	statusPort int
	noColor    bool
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start boosting",
		Long: `Load the platform configuration and start one worker per service.

Values missing from both the flags and the settings file are prompted for.
The workers run until interrupted (Ctrl+C) or SIGTERM.

Example:
  freeboost run
  freeboost run --platform youtube --link1 https://youtube.com/@someone
  freeboost run -c freeboost.yaml --status-port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoost(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "path to settings file")
	cmd.Flags().StringVar(&f.platform, "platform", "", "platform id (tiktok, instagram, ...)")
	cmd.Flags().StringVar(&f.link1, "link1", "", "profile / channel / page URL")
	cmd.Flags().StringVar(&f.link2, "link2", "", "video / post / tweet URL (when needed)")
	cmd.Flags().IntVar(&f.statusPort, "status-port", 0, "serve the status API on this port (0 disables)")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable colored output")
	return cmd
}

func runBoost(cmd *cobra.Command, f runFlags) error {
	cfg, err := loadSettings(f.configFile)
	if err != nil {
		return err
	}
	if f.platform != "" {
		cfg.Target.Platform = f.platform
	}
	if f.link1 != "" {
		cfg.Target.Link1 = f.link1
	}
	if f.link2 != "" {
		cfg.Target.Link2 = f.link2
	}
	if cmd.Flags().Changed("status-port") {
		cfg.StatusPort = f.statusPort
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	printer := output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ResolveColors(f.noColor))

	client, err := newClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(ctx, cfg, client, logger, printer)
	if err != nil {
		return err
	}

	target, err := askTarget(cmd, cfg.Target.Platform, cfg.Target.Link1, cfg.Target.Link2, cat, printer)
	if err != nil {
		return err
	}

	b, err := freeboost.New(
		freeboost.WithCatalog(cat),
		freeboost.WithClient(client),
		freeboost.WithTarget(target),
		freeboost.WithLogger(logger),
		freeboost.WithStatusPort(cfg.StatusPort),
		freeboost.WithStatusCallback(printer.Status),
		freeboost.WithOrderURL(cfg.OrderURL),
		freeboost.WithOrderRetries(cfg.OrderRetries),
		freeboost.WithOrderTimeout(cfg.OrderTimeout.Duration()),
	)
	if err != nil {
		return err
	}

	if id := b.ContentID(); id != "" {
		printer.Success("Video ID: %s", id)
	}
	printer.Header("Services for " + catalog.DisplayName(b.Platform()))
	if err := output.ServiceTable(cmd.OutOrStdout(), b.Services()); err != nil {
		return fmt.Errorf("failed to render services: %w", err)
	}
	printer.Info("\nStarting booster (Ctrl+C to stop)")

	logger.Info("booster configured",
		"platform", b.Platform(),
		"order_url", cfg.OrderURL,
		"status_port", cfg.StatusPort,
	)

	// run - blocks until context cancelled or every worker returned
	errChan := make(chan error, 1)
	go func() {
		errChan <- b.Run(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("booster error: %w", err)
		}
		logger.Info("all workers finished")
		return nil

	case <-ctx.Done():
		printer.Info("\nStopped by user")
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("booster error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}

// askTarget fills in whatever the flags and settings left out by prompting.
// The secondary link is only asked for when the platform needs a content id.
func askTarget(cmd *cobra.Command, platform, link1, link2 string, cat *catalog.Catalog, printer *output.Printer) (freeboost.Target, error) {
	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

	var err error
	if platform == "" || !cat.Has(platform) {
		printer.Header("Available platforms:")
		printer.Platforms(cat.Platforms())
		if platform, err = p.ask("\nPick platform: "); err != nil {
			return freeboost.Target{}, err
		}
		if !cat.Has(platform) {
			return freeboost.Target{}, fmt.Errorf("%w: %q", freeboost.ErrUnknownPlatform, platform)
		}
	}

	if link1 == "" {
		if link1, err = p.ask("Enter profile / channel / page URL: "); err != nil {
			return freeboost.Target{}, err
		}
		if link1 == "" {
			return freeboost.Target{}, freeboost.ErrMissingLink
		}
	}

	if link2 == "" && resolver.NeedsContentID(platform) {
		if link2, err = p.ask("Enter video / post / tweet URL (leave empty if N/A): "); err != nil {
			return freeboost.Target{}, err
		}
	}

	return freeboost.Target{Platform: platform, PrimaryLink: link1, SecondaryLink: link2}, nil
}
