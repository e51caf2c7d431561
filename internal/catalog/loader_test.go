package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/freeboost/internal/remote"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedFetcher replays responses in order, repeating the last one.
type scriptedFetcher struct {
	mu        sync.Mutex
	responses []remote.Response
	calls     int
}

func (f *scriptedFetcher) Get(_ context.Context, _ string, _ time.Duration) remote.Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	f.calls++
	return f.responses[i]
}

// recordingSleep records requested durations without waiting.
type recordingSleep struct {
	mu     sync.Mutex
	slept  []time.Duration
	result error
}

func (s *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slept = append(s.slept, d)
	return s.result
}

func ok(body string) remote.Response {
	return remote.Response{StatusCode: http.StatusOK, Body: []byte(body)}
}

func unreachable() remote.Response {
	return remote.Response{Error: errors.New("dial tcp: connection refused")}
}

func newTestLoader(f Fetcher, cachePath string, s *recordingSleep) *Loader {
	return NewLoader(f, LoaderConfig{
		URL:       "https://example.com/api?action=config",
		CachePath: cachePath,
		Logger:    testLogger(),
		Sleep:     s.sleep,
	})
}

func TestLoader_RemoteSuccessWritesCache(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(cachePath, []byte(`{"success":true,"data":{}}`), 0o644))

	f := &scriptedFetcher{responses: []remote.Response{ok(sampleConfig)}}
	s := &recordingSleep{}

	cfg, source, err := newTestLoader(f, cachePath, s).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, source)
	assert.Equal(t, 1, f.calls)
	assert.Empty(t, s.slept)

	// cache now holds exactly the fetched document
	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.JSONEq(t, sampleConfig, string(data))

	cached, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, cached)
}

func TestLoader_RetriesWithExponentialBackoff(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "config.json")
	f := &scriptedFetcher{responses: []remote.Response{
		unreachable(),
		{StatusCode: http.StatusBadGateway, Body: []byte("bad gateway")},
		ok(sampleConfig),
	}}
	s := &recordingSleep{}

	_, source, err := newTestLoader(f, cachePath, s).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, source)
	assert.Equal(t, 3, f.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, s.slept)
}

func TestLoader_FailedAttemptKinds(t *testing.T) {
	tests := []struct {
		name string
		resp remote.Response
	}{
		{name: "transport error", resp: unreachable()},
		{name: "non-200", resp: remote.Response{StatusCode: http.StatusServiceUnavailable, Body: []byte(sampleConfig)}},
		{name: "empty body", resp: ok("  \n")},
		{name: "not json", resp: ok("<html>challenge</html>")},
		{name: "success false", resp: ok(`{"success": false, "data": {}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &scriptedFetcher{responses: []remote.Response{tt.resp}}
			s := &recordingSleep{}

			_, _, err := newTestLoader(f, filepath.Join(t.TempDir(), "missing.json"), s).Load(context.Background())
			assert.ErrorIs(t, err, ErrConfigUnavailable)
			assert.Equal(t, 3, f.calls)
		})
	}
}

func TestLoader_FallsBackToCache(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(cachePath, []byte(sampleConfig), 0o644))

	f := &scriptedFetcher{responses: []remote.Response{unreachable()}}
	s := &recordingSleep{}

	cfg, source, err := newTestLoader(f, cachePath, s).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceCache, source)

	want, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, want, cfg)

	// cache left untouched
	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.Equal(t, sampleConfig, string(data))
}

func TestLoader_NoRemoteNoCache(t *testing.T) {
	f := &scriptedFetcher{responses: []remote.Response{unreachable()}}
	s := &recordingSleep{}

	cfg, _, err := newTestLoader(f, filepath.Join(t.TempDir(), "missing.json"), s).Load(context.Background())
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrConfigUnavailable)
}

func TestLoader_CorruptCacheIsUnavailable(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(cachePath, []byte("{not json"), 0o644))

	f := &scriptedFetcher{responses: []remote.Response{unreachable()}}

	_, _, err := newTestLoader(f, cachePath, &recordingSleep{}).Load(context.Background())
	assert.ErrorIs(t, err, ErrConfigUnavailable)
}

func TestLoader_CancelledDuringBackoff(t *testing.T) {
	f := &scriptedFetcher{responses: []remote.Response{unreachable()}}
	s := &recordingSleep{result: context.Canceled}

	_, _, err := newTestLoader(f, "", s).Load(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, f.calls)
}

func TestLoader_CacheWriteFailureDoesNotFailLoad(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "no", "such", "dir", "config.json")
	f := &scriptedFetcher{responses: []remote.Response{ok(sampleConfig)}}

	cfg, source, err := newTestLoader(f, cachePath, &recordingSleep{}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, source)
	assert.NotNil(t, cfg)
}

func TestLoader_Defaults(t *testing.T) {
	l := NewLoader(&scriptedFetcher{}, LoaderConfig{})
	assert.Equal(t, defaultRetries, l.retries)
	assert.Equal(t, defaultTimeout, l.timeout)
	assert.NotNil(t, l.logger)
	assert.NotNil(t, l.sleep)
}
