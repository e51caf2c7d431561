package main

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/jpalmerr/freeboost"
	"github.com/jpalmerr/freeboost/config"
)

func TestPlatforms_List(t *testing.T) {
	srv := fakeAPI(t, http.StatusOK)
	settings := writeSettings(t, srv, "")

	out, _, err := executeCmd(t, "", "platforms", "-c", settings, "--no-color")
	if err != nil {
		t.Fatalf("platforms error = %v", err)
	}
	for _, want := range []string{"TikTok", "Instagram"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPlatforms_Services(t *testing.T) {
	srv := fakeAPI(t, http.StatusOK)
	settings := writeSettings(t, srv, "")

	out, _, err := executeCmd(t, "", "platforms", "-c", settings, "--platform", "tiktok", "--no-color")
	if err != nil {
		t.Fatalf("platforms error = %v", err)
	}
	for _, want := range []string{"Services for TikTok", "TikTok Followers", "TikTok Views", "[OFF]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPlatforms_UnknownPlatform(t *testing.T) {
	srv := fakeAPI(t, http.StatusOK)
	settings := writeSettings(t, srv, "")

	_, _, err := executeCmd(t, "", "platforms", "-c", settings, "--platform", "myspace")
	if !errors.Is(err, freeboost.ErrUnknownPlatform) {
		t.Errorf("error = %v, want ErrUnknownPlatform", err)
	}
}

func TestPlatforms_FallsBackToCache(t *testing.T) {
	good := fakeAPI(t, http.StatusOK)
	settings := writeSettings(t, good, "")

	// first run populates the cache
	if _, _, err := executeCmd(t, "", "platforms", "-c", settings); err != nil {
		t.Fatalf("platforms error = %v", err)
	}

	cfg, err := config.Load(settings)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	if _, err := os.Stat(cfg.CacheFile); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}

	// point the config endpoint at a failing server, keeping the cache path
	bad := fakeAPI(t, http.StatusInternalServerError)
	data, err := os.ReadFile(settings)
	if err != nil {
		t.Fatal(err)
	}
	rewritten := strings.ReplaceAll(string(data), good.URL, bad.URL)
	if err := os.WriteFile(settings, []byte(rewritten), 0o644); err != nil {
		t.Fatal(err)
	}

	out, errOut, err := executeCmd(t, "", "platforms", "-c", settings, "--no-color")
	if err != nil {
		t.Fatalf("platforms error = %v", err)
	}
	if !strings.Contains(errOut, "using cached copy") {
		t.Errorf("stderr = %q, want cache warning", errOut)
	}
	if !strings.Contains(out, "TikTok") {
		t.Errorf("output missing platforms:\n%s", out)
	}
}
