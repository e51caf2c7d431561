package worker

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jpalmerr/freeboost/internal/catalog"
)

// profileKeywords mark services that act on an account rather than a post
// (followers, channel members, abonnés). Matched case-insensitively.
var profileKeywords = []string{"member", "abonné", "followers"}

// Order is a single order request.
type Order struct {
	Service catalog.ServiceID
	Link    string
	UUID    string
	VideoID string
}

// Form encodes the order as the form body expected by the order endpoint.
func (o Order) Form() url.Values {
	form := url.Values{
		"action":  {"order"},
		"service": {string(o.Service)},
		"link":    {o.Link},
		"uuid":    {o.UUID},
	}
	if o.VideoID != "" {
		form.Set("videoId", o.VideoID)
	}
	return form
}

// SelectLink picks the link an order for serviceName should target.
//
// Follower-type services always get the primary (profile) link. Everything
// else gets the secondary (post) link when one was given.
func SelectLink(serviceName, primary, secondary string) string {
	name := strings.ToLower(serviceName)
	for _, kw := range profileKeywords {
		if strings.Contains(name, kw) {
			return primary
		}
	}
	if secondary != "" {
		return secondary
	}
	return primary
}

// OrderResult is the decoded reply of the order endpoint.
type OrderResult struct {
	Success catalog.Flag    `json:"success"`
	Message json.RawMessage `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// MessageText returns the server message as plain text, or "" when absent.
func (r OrderResult) MessageText() string {
	raw := bytes.TrimSpace(r.Message)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// NextAvailable returns the server's next-available hint.
//
// The hint lives at data.nextAvailable as epoch seconds, either a JSON number
// or a numeric string. A data value that is not an object carries no hint.
func (r OrderResult) NextAvailable() (time.Time, bool) {
	raw := bytes.TrimSpace(r.Data)
	if len(raw) == 0 || raw[0] != '{' {
		return time.Time{}, false
	}

	var data struct {
		NextAvailable json.RawMessage `json:"nextAvailable"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return time.Time{}, false
	}

	secs, ok := parseEpoch(data.NextAvailable)
	if !ok || secs <= 0 {
		return time.Time{}, false
	}

	whole := int64(secs)
	frac := int64((secs - float64(whole)) * float64(time.Second))
	return time.Unix(whole, frac), true
}

func parseEpoch(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
