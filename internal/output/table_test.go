package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jpalmerr/freeboost/internal/catalog"
)

func TestServiceTable(t *testing.T) {
	var out bytes.Buffer
	err := ServiceTable(&out, []catalog.Service{
		{ID: "229", Name: "TikTok Views", Description: "1000 views", Available: true},
		{ID: "232", Description: "20 likes", Available: false},
	})
	if err != nil {
		t.Fatalf("ServiceTable() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"TikTok Views", "[ON]", "1000 views", "[OFF]", "20 likes", "232"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
	if idx := strings.Index(got, "TikTok Views"); idx > strings.Index(got, "20 likes") {
		t.Errorf("rows out of order:\n%s", got)
	}
}

func TestPlatformTable(t *testing.T) {
	cfg, err := catalog.Parse([]byte(`{
		"success": true,
		"data": {
			"youtube": {"services": [{"id": 1, "name": "Views", "available": true}]},
			"tiktok": {"services": [
				{"id": 2, "name": "Views", "available": true},
				{"id": 3, "name": "Likes", "available": false}
			]}
		}
	}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var out bytes.Buffer
	if err := PlatformTable(&out, catalog.NewCatalog(cfg)); err != nil {
		t.Fatalf("PlatformTable() error = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "TikTok") || !strings.Contains(got, "YouTube") {
		t.Fatalf("table missing platforms:\n%s", got)
	}
	if strings.Index(got, "TikTok") > strings.Index(got, "YouTube") {
		t.Errorf("tiktok should be listed before youtube:\n%s", got)
	}
}
