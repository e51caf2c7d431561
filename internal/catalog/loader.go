package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jpalmerr/freeboost/internal/backoff"
	"github.com/jpalmerr/freeboost/internal/remote"
)

const (
	defaultRetries = 3
	defaultTimeout = 15 * time.Second
)

// ErrConfigUnavailable is returned by [Loader.Load] when neither the remote
// endpoint nor the local cache produced a usable document.
var ErrConfigUnavailable = errors.New("config unreachable and no local copy found")

// Source tells where a loaded [Config] came from.
type Source string

const (
	// SourceRemote means the document was fetched from the config endpoint.
	SourceRemote Source = "remote"

	// SourceCache means every remote attempt failed and the local cache was used.
	SourceCache Source = "cache"
)

// Fetcher performs the config GET request. [remote.Client] implements it.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, timeout time.Duration) remote.Response
}

// LoaderConfig configures a [Loader].
type LoaderConfig struct {
	// URL is the remote config endpoint.
	URL string

	// CachePath is the local cache file. Empty disables caching.
	CachePath string

	// Retries is the number of remote attempts. Defaults to 3.
	Retries int

	// Timeout is the per-attempt request timeout. Defaults to 15s.
	Timeout time.Duration

	// Logger receives attempt failures and cache warnings.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// Sleep waits between attempts. Defaults to [backoff.Sleep].
	Sleep backoff.SleepFunc
}

// Loader obtains the configuration document, falling back to a local cache.
type Loader struct {
	fetcher   Fetcher
	url       string
	cachePath string
	retries   int
	timeout   time.Duration
	logger    *slog.Logger
	sleep     backoff.SleepFunc
}

// NewLoader creates a [Loader] that fetches through f.
func NewLoader(f Fetcher, cfg LoaderConfig) *Loader {
	l := &Loader{
		fetcher:   f,
		url:       cfg.URL,
		cachePath: cfg.CachePath,
		retries:   cfg.Retries,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
		sleep:     cfg.Sleep,
	}
	if l.retries <= 0 {
		l.retries = defaultRetries
	}
	if l.timeout <= 0 {
		l.timeout = defaultTimeout
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.sleep == nil {
		l.sleep = backoff.Sleep
	}
	return l
}

// Load returns the configuration and where it came from.
//
// The remote endpoint is tried up to the configured number of times with
// 2^attempt seconds between attempts. The first successful document is
// written to the cache file before being returned. When every attempt fails
// the cache is read instead. When that fails too, the error wraps
// [ErrConfigUnavailable].
//
// A cancelled context during the backoff aborts the load with ctx.Err().
func (l *Loader) Load(ctx context.Context) (*Config, Source, error) {
	var lastErr error

	for attempt := 1; attempt <= l.retries; attempt++ {
		cfg, raw, err := l.fetch(ctx)
		if err == nil {
			if err := l.writeCache(raw); err != nil {
				l.logger.Warn("failed to write config cache", "path", l.cachePath, "error", err)
			}
			return cfg, SourceRemote, nil
		}

		lastErr = err
		l.logger.Warn("remote config attempt failed",
			"attempt", attempt,
			"retries", l.retries,
			"error", err,
		)

		if attempt == l.retries {
			break
		}
		if err := l.sleep(ctx, backoff.Exponential(attempt)); err != nil {
			return nil, "", err
		}
	}

	cfg, err := l.readCache()
	if err != nil {
		return nil, "", fmt.Errorf("%w: remote: %v; cache: %v", ErrConfigUnavailable, lastErr, err)
	}

	l.logger.Warn("using cached config", "path", l.cachePath, "remote_error", lastErr)
	return cfg, SourceCache, nil
}

// fetch performs one remote attempt and returns the parsed document along
// with the raw body for the cache.
func (l *Loader) fetch(ctx context.Context) (*Config, []byte, error) {
	resp := l.fetcher.Get(ctx, l.url, l.timeout)
	if resp.Error != nil {
		return nil, nil, resp.Error
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 {
		return nil, nil, errors.New("empty response body")
	}

	cfg, err := Parse(body)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Success {
		return nil, nil, errors.New("config response reported success=false")
	}
	return cfg, body, nil
}

// writeCache overwrites the cache file with the fetched document.
//
// The document is indented but otherwise stored as received, so fields the
// loader does not model survive. The write goes through a temporary file in
// the same directory followed by a rename.
func (l *Loader) writeCache(raw []byte) error {
	if l.cachePath == "" {
		return nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to format config: %w", err)
	}
	buf.WriteByte('\n')

	dir := filepath.Dir(l.cachePath)
	tmp, err := os.CreateTemp(dir, filepath.Base(l.cachePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, l.cachePath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// readCache loads and checks the cache file.
func (l *Loader) readCache() (*Config, error) {
	if l.cachePath == "" {
		return nil, errors.New("no cache file configured")
	}

	data, err := os.ReadFile(l.cachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if !cfg.Success {
		return nil, errors.New("cached config reported success=false")
	}
	return cfg, nil
}
