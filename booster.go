package freeboost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/jpalmerr/freeboost/dashboard"
	"github.com/jpalmerr/freeboost/internal/catalog"
	"github.com/jpalmerr/freeboost/internal/remote"
	"github.com/jpalmerr/freeboost/internal/server"
	"github.com/jpalmerr/freeboost/internal/store"
	"github.com/jpalmerr/freeboost/internal/worker"
)

// Endpoints of the public boost API.
const (
	DefaultSiteURL  = "https://zefame-free.com"
	DefaultOrderURL = "https://zefame-free.com/api_free.php?action=order"
)

const (
	defaultOrderRetries = 5
	defaultOrderTimeout = 30 * time.Second
)

// Session is the HTTP session orders are submitted through.
// [remote.Client] implements it.
type Session interface {
	EnsureSession(ctx context.Context) error
	PostForm(ctx context.Context, rawURL string, form url.Values, timeout time.Duration) remote.Response
}

// Booster runs one order worker per service of the target platform.
//
// It is created with [New] and started with [Booster.Run]. The caller controls
// the lifecycle via the context:
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	b.Run(ctx) // blocks until context cancelled
type Booster struct {
	target          resolvedTarget
	services        []catalog.Service
	session         Session
	ownedClient     *remote.Client
	logger          *slog.Logger
	statusPort      int
	orderURL        string
	orderRetries    int
	orderTimeout    time.Duration
	statusCallbacks []func(Status)
}

// New creates a [Booster] with the given options.
//
// [WithCatalog] and [WithTarget] are required. The target is validated
// against the catalog; see [ErrUnknownPlatform], [ErrMissingLink] and
// [ErrContentID].
func New(opts ...Option) (*Booster, error) {
	cfg := &boosterConfig{
		orderURL:     DefaultOrderURL,
		orderRetries: defaultOrderRetries,
		orderTimeout: defaultOrderTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.catalog == nil {
		return nil, errors.New("a catalog is required")
	}

	rt, err := cfg.target.resolve(cfg.catalog)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &Booster{
		target:          rt,
		services:        cfg.catalog.Services(rt.Platform),
		session:         cfg.session,
		logger:          logger,
		statusPort:      cfg.statusPort,
		orderURL:        cfg.orderURL,
		orderRetries:    cfg.orderRetries,
		orderTimeout:    cfg.orderTimeout,
		statusCallbacks: cfg.statusCallbacks,
	}

	if b.session == nil {
		client, err := remote.NewClient(DefaultSiteURL, remote.DefaultHeaders(DefaultSiteURL))
		if err != nil {
			return nil, fmt.Errorf("failed to create client: %w", err)
		}
		b.session = client
		b.ownedClient = client
	}

	return b, nil
}

// Run starts the status API (when enabled) and one worker per service, and
// blocks until ctx is cancelled or every worker has returned.
//
// Returns nil on cancellation. Returns an error if the status API cannot
// bind its port.
func (b *Booster) Run(ctx context.Context) error {
	defer b.ownedClient.Close()

	b.logger.Info("freeboost starting",
		"platform", b.target.Platform,
		"service_count", len(b.services),
		"content_id", b.target.contentID,
	)

	if ctx.Err() != nil {
		return nil
	}

	// the status API lives exactly as long as the run
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	board := store.NewMemoryStore()

	if b.statusPort > 0 {
		title := "freeboost: " + catalog.DisplayName(b.target.Platform)
		srv := server.NewServer(board, b.statusPort, dashboard.Assets, title, b.logger)
		if err := srv.Start(runCtx); err != nil {
			return fmt.Errorf("failed to start status API: %w", err)
		}
		b.logger.Info("status API available", "url", fmt.Sprintf("http://localhost:%d", b.statusPort))
	}

	pool := worker.NewPool(b.session, worker.Options{
		Platform:      b.target.Platform,
		PrimaryLink:   b.target.PrimaryLink,
		SecondaryLink: b.target.SecondaryLink,
		ContentID:     b.target.contentID,
		OrderURL:      b.orderURL,
		Retries:       b.orderRetries,
		Timeout:       b.orderTimeout,
		Logger:        b.logger,
		Report:        b.reporter(board),
	})

	err := pool.Run(runCtx, b.services)
	if err != nil && ctx.Err() == nil {
		return err
	}

	b.logger.Info("freeboost stopped")
	return nil
}

// Platform returns the resolved platform id.
func (b *Booster) Platform() string {
	return b.target.Platform
}

// ContentID returns the content id attached to orders, or "" when none.
func (b *Booster) ContentID() string {
	return b.target.contentID
}

// Services returns a copy of the services that get a worker.
func (b *Booster) Services() []catalog.Service {
	cp := make([]catalog.Service, len(b.services))
	copy(cp, b.services)
	return cp
}

// reporter publishes worker statuses: status board first, then callbacks.
func (b *Booster) reporter(board store.Store) worker.Reporter {
	return func(ws worker.Status) {
		board.Update(workerStatusToStoreStatus(ws))

		if len(b.statusCallbacks) > 0 {
			pub := workerStatusToPublicStatus(ws)
			for _, cb := range b.statusCallbacks {
				invokeCallbackSafe(cb, pub, b.logger)
			}
		}

		b.logger.Debug("worker status",
			"service", ws.Service,
			"state", ws.State.String(),
			"iteration", ws.Iteration,
		)
	}
}

// workerStatusToStoreStatus converts a worker status to its JSON form.
func workerStatusToStoreStatus(ws worker.Status) store.WorkerStatus {
	var next *time.Time
	if !ws.NextAttemptAt.IsZero() {
		t := ws.NextAttemptAt
		next = &t
	}

	return store.WorkerStatus{
		Platform:      ws.Platform,
		ServiceID:     string(ws.ServiceID),
		Service:       ws.Service,
		State:         ws.State.String(),
		Link:          ws.Link,
		Message:       ws.Message,
		StatusCode:    ws.StatusCode,
		SleepSeconds:  ws.Sleep.Seconds(),
		NextAttemptAt: next,
		Iteration:     ws.Iteration,
		UpdatedAt:     ws.UpdatedAt,
	}
}

// workerStatusToPublicStatus converts an internal worker status to the public type.
func workerStatusToPublicStatus(ws worker.Status) Status {
	return Status{
		Platform:      ws.Platform,
		ServiceID:     string(ws.ServiceID),
		Service:       ws.Service,
		State:         State(ws.State),
		Link:          ws.Link,
		Message:       ws.Message,
		StatusCode:    ws.StatusCode,
		Sleep:         ws.Sleep,
		NextAttemptAt: ws.NextAttemptAt,
		Iteration:     ws.Iteration,
		UpdatedAt:     ws.UpdatedAt,
	}
}

// invokeCallbackSafe calls a status callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Status), s Status, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("status callback panicked",
				"panic", r,
				"service", s.Service,
			)
		}
	}()
	cb(s)
}
