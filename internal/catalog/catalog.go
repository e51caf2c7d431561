package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// knownPlatforms fixes the listing order and display names of the platforms
// the boost API is known to serve.
var knownPlatforms = []struct {
	id   string
	name string
}{
	{"tiktok", "TikTok"},
	{"instagram", "Instagram"},
	{"twitter", "Twitter"},
	{"facebook", "Facebook"},
	{"youtube", "YouTube"},
	{"telegram", "Telegram"},
}

// Platform is a platform id together with its display name.
type Platform struct {
	ID   string
	Name string
}

// Catalog is a read-only view over a loaded [Config].
//
// Platform ids are matched case-insensitively.
type Catalog struct {
	platforms map[string]PlatformInfo
}

// NewCatalog builds a [Catalog] from cfg. The catalog keeps its own copy of
// the platform map; later changes to cfg are not observed.
func NewCatalog(cfg *Config) *Catalog {
	platforms := make(map[string]PlatformInfo)
	if cfg != nil {
		for id, info := range cfg.Data {
			platforms[strings.ToLower(id)] = info
		}
	}
	return &Catalog{platforms: platforms}
}

// Has reports whether the platform exists in the catalog.
func (c *Catalog) Has(platformID string) bool {
	_, ok := c.platforms[strings.ToLower(platformID)]
	return ok
}

// Platforms returns every platform in the catalog. Known platforms come first
// in a fixed order, followed by any others sorted by id.
func (c *Catalog) Platforms() []Platform {
	result := make([]Platform, 0, len(c.platforms))
	seen := make(map[string]bool, len(knownPlatforms))

	for _, p := range knownPlatforms {
		seen[p.id] = true
		if _, ok := c.platforms[p.id]; ok {
			result = append(result, Platform{ID: p.id, Name: p.name})
		}
	}

	var extra []string
	for id := range c.platforms {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		result = append(result, Platform{ID: id, Name: DisplayName(id)})
	}

	return result
}

// Services returns a copy of the platform's services in server order.
// Returns nil for an unknown platform; callers check [Catalog.Has] first.
func (c *Catalog) Services(platformID string) []Service {
	info, ok := c.platforms[strings.ToLower(platformID)]
	if !ok {
		return nil
	}
	return append([]Service(nil), info.Services...)
}

// DisplayName returns the human-readable name of a platform id.
// Unknown ids are title-cased.
func DisplayName(platformID string) string {
	id := strings.ToLower(platformID)
	for _, p := range knownPlatforms {
		if p.id == id {
			return p.name
		}
	}
	return cases.Title(language.English).String(id)
}
