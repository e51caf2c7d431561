package freeboost

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/freeboost/internal/catalog"
	"github.com/jpalmerr/freeboost/internal/remote"
)

const testConfig = `{
  "success": true,
  "data": {
    "tiktok": {
      "services": [
        {"id": 228, "name": "TikTok Followers", "description": "10 followers", "available": true},
        {"id": 229, "name": "TikTok Views", "description": "1000 views", "available": false}
      ]
    },
    "instagram": {
      "services": [
        {"id": 300, "name": "Instagram Likes", "description": "20 likes", "available": false}
      ]
    }
  }
}`

const (
	testProfile = "https://www.tiktok.com/@someone"
	testVideo   = "https://www.tiktok.com/@someone/video/7351234567890123456"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cfg, err := catalog.Parse([]byte(testConfig))
	require.NoError(t, err)
	return catalog.NewCatalog(cfg)
}

// boostServer fakes the boost site: "/" hands out a session cookie and
// "/order" records the submitted forms.
type boostServer struct {
	*httptest.Server

	mu    sync.Mutex
	forms []url.Values
}

func newBoostServer(t *testing.T) *boostServer {
	t.Helper()
	bs := &boostServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/order", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		bs.mu.Lock()
		bs.forms = append(bs.forms, r.PostForm)
		bs.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"message":"order placed"}`)
	})
	bs.Server = httptest.NewServer(mux)
	t.Cleanup(bs.Close)
	return bs
}

func (bs *boostServer) submitted() []url.Values {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return append([]url.Values(nil), bs.forms...)
}

func TestNew_RequiresCatalog(t *testing.T) {
	_, err := New(WithTarget(Target{Platform: "tiktok", PrimaryLink: testProfile}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog")
}

func TestNew_TargetValidation(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		wantErr error
	}{
		{
			name:    "unknown platform",
			target:  Target{Platform: "myspace", PrimaryLink: testProfile},
			wantErr: ErrUnknownPlatform,
		},
		{
			name:    "empty platform",
			target:  Target{PrimaryLink: testProfile},
			wantErr: ErrUnknownPlatform,
		},
		{
			name:    "missing primary link",
			target:  Target{Platform: "tiktok", PrimaryLink: "   "},
			wantErr: ErrMissingLink,
		},
		{
			name:    "video link without id",
			target:  Target{Platform: "tiktok", PrimaryLink: testProfile, SecondaryLink: "https://vm.tiktok.com/ZMabc/"},
			wantErr: ErrContentID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithCatalog(testCatalog(t)), WithTarget(tt.target), WithLogger(testLogger()))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_ResolvesTarget(t *testing.T) {
	b, err := New(
		WithCatalog(testCatalog(t)),
		WithTarget(Target{Platform: " TikTok ", PrimaryLink: testProfile, SecondaryLink: testVideo}),
		WithLogger(testLogger()),
	)
	require.NoError(t, err)

	assert.Equal(t, "tiktok", b.Platform())
	assert.Equal(t, "7351234567890123456", b.ContentID())
	assert.Len(t, b.Services(), 2)
}

func TestNew_ContentIDOptional(t *testing.T) {
	b, err := New(
		WithCatalog(testCatalog(t)),
		WithTarget(Target{Platform: "tiktok", PrimaryLink: testProfile}),
		WithLogger(testLogger()),
	)
	require.NoError(t, err)
	assert.Empty(t, b.ContentID())
}

func TestNew_NonTikTokIgnoresSecondaryShape(t *testing.T) {
	b, err := New(
		WithCatalog(testCatalog(t)),
		WithTarget(Target{Platform: "instagram", PrimaryLink: "https://instagram.com/someone", SecondaryLink: "not a url"}),
		WithLogger(testLogger()),
	)
	require.NoError(t, err)
	assert.Empty(t, b.ContentID())
}

func TestNew_OptionValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"nil catalog", WithCatalog(nil)},
		{"nil client", WithClient(nil)},
		{"nil logger", WithLogger(nil)},
		{"negative port", WithStatusPort(-1)},
		{"port too large", WithStatusPort(65536)},
		{"nil callback", WithStatusCallback(nil)},
		{"empty order url", WithOrderURL("")},
		{"zero retries", WithOrderRetries(0)},
		{"zero timeout", WithOrderTimeout(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(
				WithCatalog(testCatalog(t)),
				WithTarget(Target{Platform: "tiktok", PrimaryLink: testProfile}),
				tt.opt,
			)
			assert.Error(t, err)
		})
	}
}

func TestRun_ReturnsImmediatelyIfContextAlreadyCancelled(t *testing.T) {
	bs := newBoostServer(t)
	client, err := remote.NewClient(bs.URL, nil)
	require.NoError(t, err)

	b, err := New(
		WithCatalog(testCatalog(t)),
		WithClient(client),
		WithOrderURL(bs.URL+"/order"),
		WithTarget(Target{Platform: "tiktok", PrimaryLink: testProfile}),
		WithLogger(testLogger()),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	require.NoError(t, b.Run(ctx))
	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, bs.submitted())
}

func TestRun_SubmitsAndReportsStatus(t *testing.T) {
	bs := newBoostServer(t)
	client, err := remote.NewClient(bs.URL, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var mu sync.Mutex
	var statuses []Status
	cb := func(s Status) {
		mu.Lock()
		statuses = append(statuses, s)
		mu.Unlock()
		if s.State == StateSleeping {
			cancel()
		}
	}

	b, err := New(
		WithCatalog(testCatalog(t)),
		WithClient(client),
		WithOrderURL(bs.URL+"/order"),
		WithTarget(Target{Platform: "tiktok", PrimaryLink: testProfile, SecondaryLink: testVideo}),
		WithLogger(testLogger()),
		WithStatusCallback(cb),
	)
	require.NoError(t, err)

	require.NoError(t, b.Run(ctx))

	forms := bs.submitted()
	require.Len(t, forms, 1, "only the available service submits")
	assert.Equal(t, "order", forms[0].Get("action"))
	assert.Equal(t, "228", forms[0].Get("service"))
	assert.Equal(t, testProfile, forms[0].Get("link"), "followers go to the profile link")
	assert.Equal(t, "7351234567890123456", forms[0].Get("videoId"))
	assert.NotEmpty(t, forms[0].Get("uuid"))

	mu.Lock()
	defer mu.Unlock()

	states := map[string][]State{}
	for _, s := range statuses {
		states[s.ServiceID] = append(states[s.ServiceID], s.State)
	}
	assert.Equal(t, []State{StateSkipped}, states["229"])
	assert.Contains(t, states["228"], StateSucceeded)
	assert.Contains(t, states["228"], StateSleeping)

	for _, s := range statuses {
		if s.ServiceID == "228" && s.State == StateSleeping {
			assert.Equal(t, 300*time.Second, s.Sleep)
			assert.Equal(t, "tiktok", s.Platform)
		}
	}
}

func TestRun_CallbackPanicRecovered(t *testing.T) {
	b, err := New(
		WithCatalog(testCatalog(t)),
		WithClient(&unusedSession{}),
		WithTarget(Target{Platform: "instagram", PrimaryLink: "https://instagram.com/someone"}),
		WithLogger(testLogger()),
		WithStatusCallback(func(Status) { panic("boom") }),
	)
	require.NoError(t, err)

	// every instagram service is unavailable, so Run returns on its own
	assert.NotPanics(t, func() {
		require.NoError(t, b.Run(context.Background()))
	})
}

func TestRun_CallbacksInRegistrationOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(name string) func(Status) {
		return func(Status) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	b, err := New(
		WithCatalog(testCatalog(t)),
		WithClient(&unusedSession{}),
		WithTarget(Target{Platform: "instagram", PrimaryLink: "https://instagram.com/someone"}),
		WithLogger(testLogger()),
		WithStatusCallback(record("first")),
		WithStatusCallback(record("second")),
	)
	require.NoError(t, err)
	require.NoError(t, b.Run(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestRun_StatusPortBusy(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	b, err := New(
		WithCatalog(testCatalog(t)),
		WithClient(&unusedSession{}),
		WithTarget(Target{Platform: "instagram", PrimaryLink: "https://instagram.com/someone"}),
		WithLogger(testLogger()),
		WithStatusPort(port),
	)
	require.NoError(t, err)

	err = b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status API")
}

// unusedSession fails the test run if any request is made.
type unusedSession struct{}

func (unusedSession) EnsureSession(context.Context) error {
	panic("unexpected warm-up")
}

func (unusedSession) PostForm(context.Context, string, url.Values, time.Duration) remote.Response {
	panic("unexpected order")
}
