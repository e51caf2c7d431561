// SDK example: boosts against an in-process mock API and prints every worker
// state change.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jpalmerr/freeboost"
	"github.com/jpalmerr/freeboost/example/mockapi"
	"github.com/jpalmerr/freeboost/internal/catalog"
	"github.com/jpalmerr/freeboost/internal/remote"
)

const mockAddr = "localhost:9999"

func main() {
	// start the mock API
	api := mockapi.New(mockapi.Options{MinCooldown: 10 * time.Second, MaxCooldown: 20 * time.Second})
	go func() {
		if err := http.ListenAndServe(mockAddr, api.Handler()); err != nil {
			slog.Error("mock API error", "error", err)
			os.Exit(1)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	siteURL := "http://" + mockAddr

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := remote.NewClient(siteURL, nil)
	if err != nil {
		slog.Error("failed to create client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	loader := catalog.NewLoader(client, catalog.LoaderConfig{
		URL:       siteURL + "/api_free.php?action=config",
		CachePath: filepath.Join(os.TempDir(), "freeboost_example_config.json"),
	})
	cfg, _, err := loader.Load(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	b, err := freeboost.New(
		freeboost.WithCatalog(catalog.NewCatalog(cfg)),
		freeboost.WithClient(client),
		freeboost.WithOrderURL(siteURL+"/api_free.php?action=order"),
		freeboost.WithOrderTimeout(5*time.Second),
		freeboost.WithStatusPort(8080),
		freeboost.WithTarget(freeboost.Target{
			Platform:      "tiktok",
			PrimaryLink:   "https://www.tiktok.com/@someone",
			SecondaryLink: "https://www.tiktok.com/@someone/video/7351234567890123456",
		}),
		freeboost.WithStatusCallback(func(s freeboost.Status) {
			fmt.Printf("%s  %-18s %-12s %s\n", s.UpdatedAt.Format(time.TimeOnly), s.Service, s.State, s.Message)
		}),
	)
	if err != nil {
		slog.Error("failed to create booster", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  freeboost demo against a mock API on " + mockAddr)
	fmt.Println("  status API: http://localhost:8080/api/status (SSE at /api/sse)")
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	if err := b.Run(ctx); err != nil {
		slog.Error("freeboost error", "error", err)
		os.Exit(1)
	}
	fmt.Printf("\n%d orders accepted\n", api.Orders())
}
