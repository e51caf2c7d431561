// Package resolver derives platform content identifiers from user-supplied links.
//
// Only some platforms need an identifier next to the link in an order.
// [NeedsContentID] tells which; [ResolveID] extracts it from the URL shape
// the platform uses, without any network access.
package resolver

import (
	"net/url"
	"strings"
)

// extractors maps platform ids to their identifier extractor.
var extractors = map[string]func(*url.URL) (string, bool){
	"tiktok": tiktokID,
}

// NeedsContentID reports whether orders for the platform carry a content id.
func NeedsContentID(platformID string) bool {
	_, ok := extractors[strings.ToLower(platformID)]
	return ok
}

// ResolveID extracts the content id for the platform from rawURL.
//
// Returns false when the platform needs no id or when the URL does not have
// the expected shape. A missing scheme is tolerated.
func ResolveID(platformID, rawURL string) (string, bool) {
	extract, ok := extractors[strings.ToLower(platformID)]
	if !ok {
		return "", false
	}

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", false
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	return extract(u)
}

// tiktokID finds the numeric id in links shaped like
// https://www.tiktok.com/@user/video/7301234567890123456.
// Photo posts use /photo/ in place of /video/.
func tiktokID(u *url.URL) (string, bool) {
	host := strings.ToLower(u.Hostname())
	if host != "tiktok.com" && !strings.HasSuffix(host, ".tiktok.com") {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] != "video" && segments[i] != "photo" {
			continue
		}
		if id := segments[i+1]; isDigits(id) {
			return id, true
		}
	}
	return "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
