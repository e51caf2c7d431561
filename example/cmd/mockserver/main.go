// Standalone mock of the free boost API for trying the CLI locally.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/freeboost run -c example/freeboost.yaml
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jpalmerr/freeboost/example/mockapi"
)

const addr = ":9999"

func main() {
	fmt.Println("Mock boost API starting on " + addr)
	fmt.Println("Orders cool down for 20-60s; 10% of orders fail with HTTP 500")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	api := mockapi.New(mockapi.Options{
		MinCooldown: 20 * time.Second,
		MaxCooldown: 60 * time.Second,
		FailureRate: 0.1,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
