// Package mockapi is a local stand-in for the free boost API, used for
// manual end-to-end runs and examples.
//
// It serves the landing page (setting a session cookie), the platform
// configuration and the order endpoint. Each service accepts an order, then
// refuses further orders until its cooldown has passed.
package mockapi

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// SessionCookie is set by the landing page and required by the order endpoint.
const SessionCookie = "PHPSESSID"

type service struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// defaultPlatforms mirrors the shape of the real configuration document.
var defaultPlatforms = map[string][]service{
	"tiktok": {
		{ID: 229, Name: "TikTok Views", Description: "1000 views", Available: true},
		{ID: 228, Name: "TikTok Followers", Description: "10 followers", Available: true},
		{ID: 232, Name: "TikTok Likes", Description: "20 likes", Available: false},
	},
	"instagram": {
		{ID: 301, Name: "Instagram Followers", Description: "10 followers", Available: true},
		{ID: 302, Name: "Instagram Likes", Description: "20 likes", Available: true},
	},
	"youtube": {
		{ID: 401, Name: "YouTube Views", Description: "50 views", Available: true},
	},
}

// Options tunes the mock's behaviour.
type Options struct {
	// MinCooldown and MaxCooldown bound the random wait handed out after an
	// accepted order. Default to 20s and 60s.
	MinCooldown time.Duration
	MaxCooldown time.Duration

	// FailureRate is the fraction of orders answered with HTTP 500.
	FailureRate float64

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// API is the mock boost API.
type API struct {
	opts Options

	mu            sync.Mutex
	nextAvailable map[int]time.Time
	orders        int
}

// New creates a mock [API].
func New(opts Options) *API {
	if opts.MinCooldown <= 0 {
		opts.MinCooldown = 20 * time.Second
	}
	if opts.MaxCooldown < opts.MinCooldown {
		opts.MaxCooldown = opts.MinCooldown + 40*time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &API{
		opts:          opts,
		nextAvailable: make(map[int]time.Time),
	}
}

// Handler returns the routes of the mock.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", a.handleLanding)
	mux.HandleFunc("/api_free.php", a.handleAPI)
	return mux
}

// Orders returns how many orders were accepted.
func (a *API) Orders() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.orders
}

func (a *API) handleLanding(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: strconv.FormatInt(a.opts.Now().UnixNano(), 36), Path: "/"})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<html><body>free boost</body></html>"))
}

func (a *API) handleAPI(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("action") {
	case "config":
		a.writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    configData(),
		})
	case "order":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		a.handleOrder(w, r)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

func (a *API) handleOrder(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(SessionCookie); err != nil {
		http.Error(w, "no session", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	if a.opts.FailureRate > 0 && rand.Float64() < a.opts.FailureRate {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	id, err := strconv.Atoi(r.PostForm.Get("service"))
	if err != nil || !knownService(id) {
		a.writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Service not found"})
		return
	}
	if r.PostForm.Get("link") == "" {
		a.writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Invalid link"})
		return
	}

	now := a.opts.Now()

	a.mu.Lock()
	next, waiting := a.nextAvailable[id]
	if waiting && now.Before(next) {
		a.mu.Unlock()
		a.writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "Please wait before ordering again",
			"data":    map[string]any{"nextAvailable": next.Unix()},
		})
		return
	}

	cooldown := a.opts.MinCooldown
	if spread := a.opts.MaxCooldown - a.opts.MinCooldown; spread > 0 {
		cooldown += time.Duration(rand.Int63n(int64(spread)))
	}
	next = now.Add(cooldown)
	a.nextAvailable[id] = next
	a.orders++
	a.mu.Unlock()

	a.opts.Logger.Info("order accepted",
		"service", id,
		"link", r.PostForm.Get("link"),
		"video_id", r.PostForm.Get("videoId"),
		"cooldown", cooldown.Round(time.Second).String(),
	)

	a.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Order placed",
		"data": map[string]any{
			"orderId":       r.PostForm.Get("uuid"),
			"nextAvailable": next.Unix(),
		},
	})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.opts.Logger.Error("failed to write response", "error", err)
	}
}

func configData() map[string]any {
	data := make(map[string]any, len(defaultPlatforms))
	for platform, services := range defaultPlatforms {
		data[platform] = map[string]any{"services": services}
	}
	return data
}

func knownService(id int) bool {
	for _, services := range defaultPlatforms {
		for _, svc := range services {
			if svc.ID == id {
				return true
			}
		}
	}
	return false
}
