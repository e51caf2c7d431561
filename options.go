package freeboost

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/freeboost/internal/catalog"
)

// boosterConfig holds mutable state during Booster construction.
type boosterConfig struct {
	target          Target
	catalog         *catalog.Catalog
	session         Session
	logger          *slog.Logger
	statusPort      int
	orderURL        string
	orderRetries    int
	orderTimeout    time.Duration
	statusCallbacks []func(Status)
}

// Option configures a [Booster] during construction.
//
// Options return an error if validation fails.
type Option func(*boosterConfig) error

// WithTarget sets the platform and links to boost. Required.
func WithTarget(t Target) Option {
	return func(cfg *boosterConfig) error {
		cfg.target = t
		return nil
	}
}

// WithCatalog sets the platform catalog the target is resolved against. Required.
func WithCatalog(c *catalog.Catalog) Option {
	return func(cfg *boosterConfig) error {
		if c == nil {
			return errors.New("catalog cannot be nil")
		}
		cfg.catalog = c
		return nil
	}
}

// WithClient sets the HTTP session orders are submitted through.
//
// The same session should be used to load the catalog so the warm-up cookies
// are shared. When omitted, [New] creates a client for [DefaultSiteURL] and
// [Booster.Run] closes it on return.
func WithClient(s Session) Option {
	return func(cfg *boosterConfig) error {
		if s == nil {
			return errors.New("client cannot be nil")
		}
		cfg.session = s
		return nil
	}
}

// WithLogger sets a custom logger for the booster and its workers.
//
// If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *boosterConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithStatusPort enables the JSON/SSE status API on port.
//
// Zero, the default, disables it.
func WithStatusPort(port int) Option {
	return func(cfg *boosterConfig) error {
		if port < 0 || port > 65535 {
			return fmt.Errorf("status port must be between 0 and 65535, got %d", port)
		}
		cfg.statusPort = port
		return nil
	}
}

// WithStatusCallback registers a function called on every worker state change.
//
// Callbacks run synchronously on the worker's goroutine after the status
// board has been updated, so they must be fast and safe for concurrent use.
// A panicking callback is recovered and logged. Multiple callbacks run in
// registration order.
//
// Example:
//
//	b, err := freeboost.New(
//	    freeboost.WithCatalog(cat),
//	    freeboost.WithTarget(target),
//	    freeboost.WithStatusCallback(func(s freeboost.Status) {
//	        fmt.Println(s.Service, s.State)
//	    }),
//	)
func WithStatusCallback(fn func(Status)) Option {
	return func(cfg *boosterConfig) error {
		if fn == nil {
			return errors.New("status callback cannot be nil")
		}
		cfg.statusCallbacks = append(cfg.statusCallbacks, fn)
		return nil
	}
}

// WithOrderURL sets the order endpoint. Defaults to [DefaultOrderURL].
func WithOrderURL(u string) Option {
	return func(cfg *boosterConfig) error {
		if u == "" {
			return errors.New("order URL cannot be empty")
		}
		cfg.orderURL = u
		return nil
	}
}

// WithOrderRetries sets the submission attempts per order. Defaults to 5.
func WithOrderRetries(n int) Option {
	return func(cfg *boosterConfig) error {
		if n < 1 {
			return fmt.Errorf("order retries must be at least 1, got %d", n)
		}
		cfg.orderRetries = n
		return nil
	}
}

// WithOrderTimeout sets the first attempt's timeout; every further attempt
// adds 5s. Defaults to 30s.
func WithOrderTimeout(d time.Duration) Option {
	return func(cfg *boosterConfig) error {
		if d <= 0 {
			return errors.New("order timeout must be positive")
		}
		cfg.orderTimeout = d
		return nil
	}
}
