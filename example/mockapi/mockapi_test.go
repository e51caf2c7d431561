package mockapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/freeboost/internal/catalog"
	"github.com/jpalmerr/freeboost/internal/remote"
)

var fixedNow = time.Unix(1_700_000_000, 0)

func newTestAPI(t *testing.T, opts Options) (*API, *httptest.Server, *remote.Client) {
	t.Helper()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	opts.Now = func() time.Time { return fixedNow }

	api := New(opts)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	client, err := remote.NewClient(srv.URL, nil)
	require.NoError(t, err)
	return api, srv, client
}

func orderForm(service string) url.Values {
	return url.Values{
		"action":  {"order"},
		"service": {service},
		"link":    {"https://www.tiktok.com/@someone"},
		"uuid":    {"0b0e6a8e-2f0c-4c59-9a55-6d1b0c1f3e7a"},
	}
}

func TestConfig_LoadsIntoCatalog(t *testing.T) {
	_, srv, client := newTestAPI(t, Options{})

	loader := catalog.NewLoader(client, catalog.LoaderConfig{URL: srv.URL + "/api_free.php?action=config", Retries: 1})
	cfg, source, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog.SourceRemote, source)

	cat := catalog.NewCatalog(cfg)
	assert.True(t, cat.Has("tiktok"))
	assert.Len(t, cat.Services("tiktok"), 3)
	assert.Equal(t, "tiktok", cat.Platforms()[0].ID)
}

func TestOrder_RequiresSession(t *testing.T) {
	_, srv, client := newTestAPI(t, Options{})

	resp := client.PostForm(context.Background(), srv.URL+"/api_free.php?action=order", orderForm("229"), 5*time.Second)
	require.NoError(t, resp.Error)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOrder_AcceptsThenCoolsDown(t *testing.T) {
	api, srv, client := newTestAPI(t, Options{MinCooldown: 30 * time.Second, MaxCooldown: 30 * time.Second})
	ctx := context.Background()
	orderURL := srv.URL + "/api_free.php?action=order"

	require.NoError(t, client.EnsureSession(ctx))

	first := client.PostForm(ctx, orderURL, orderForm("229"), 5*time.Second)
	require.NoError(t, first.Error)
	require.Equal(t, http.StatusOK, first.StatusCode)

	var accepted struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			NextAvailable int64 `json:"nextAvailable"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(first.Body, &accepted))
	assert.True(t, accepted.Success)
	assert.Equal(t, fixedNow.Add(30*time.Second).Unix(), accepted.Data.NextAvailable)

	second := client.PostForm(ctx, orderURL, orderForm("229"), 5*time.Second)
	require.NoError(t, second.Error)
	assert.Contains(t, string(second.Body), `"success":false`)
	assert.Contains(t, string(second.Body), "Please wait")

	// cooldowns are per service
	other := client.PostForm(ctx, orderURL, orderForm("228"), 5*time.Second)
	require.NoError(t, other.Error)
	assert.Contains(t, string(other.Body), `"success":true`)

	assert.Equal(t, 2, api.Orders())
}

func TestOrder_UnknownService(t *testing.T) {
	_, srv, client := newTestAPI(t, Options{})
	ctx := context.Background()
	require.NoError(t, client.EnsureSession(ctx))

	resp := client.PostForm(ctx, srv.URL+"/api_free.php?action=order", orderForm("999"), 5*time.Second)
	require.NoError(t, resp.Error)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "Service not found")
}

func TestOrder_FailureRate(t *testing.T) {
	_, srv, client := newTestAPI(t, Options{FailureRate: 1})
	ctx := context.Background()
	require.NoError(t, client.EnsureSession(ctx))

	resp := client.PostForm(ctx, srv.URL+"/api_free.php?action=order", orderForm("229"), 5*time.Second)
	require.NoError(t, resp.Error)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestAPI_RejectsGetOrderAndUnknownAction(t *testing.T) {
	_, srv, client := newTestAPI(t, Options{})
	ctx := context.Background()

	resp := client.Get(ctx, srv.URL+"/api_free.php?action=order", 5*time.Second)
	require.NoError(t, resp.Error)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp = client.Get(ctx, srv.URL+"/api_free.php?action=nope", 5*time.Second)
	require.NoError(t, resp.Error)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.True(t, strings.Contains(string(resp.Body), "unknown action"))
}
