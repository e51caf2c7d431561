package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const apiConfig = `{
  "success": true,
  "data": {
    "tiktok": {
      "services": [
        {"id": 228, "name": "TikTok Followers", "description": "10 followers", "available": false},
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

// fakeAPI serves the boost site, its config endpoint and its order endpoint.
func fakeAPI(t *testing.T, configStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/config", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(configStatus)
		_, _ = io.WriteString(w, apiConfig)
	})
	mux.HandleFunc("/order", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected order submission")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// writeSettings writes a settings file pointing at srv and returns its path.
func writeSettings(t *testing.T, srv *httptest.Server, extra string) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`
config_url: %[1]s/config
order_url: %[1]s/order
site_url: %[1]s
cache_file: %[2]s
log_file: %[3]s
config_retries: 1
%[4]s
`, srv.URL, filepath.Join(dir, "cache.json"), filepath.Join(dir, "freeboost.log"), extra)

	path := filepath.Join(dir, "freeboost.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}
	return path
}

// executeCmd runs the CLI with args and stdin, returning captured output.
func executeCmd(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := executeCmd(t, "", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, "freeboost dev") {
		t.Errorf("output = %q, want version line", out)
	}
}
