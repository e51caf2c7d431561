package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/jpalmerr/freeboost/internal/store"
)

const (
	// sseWriteTimeout bounds a single event write. It stays within
	// shutdownTimeout so a stuck client cannot hold up shutdown.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second

	defaultTitle = "freeboost"
	pagePath     = "assets/index.html"

	// snapshotEvent names the first SSE event of a stream. It carries every
	// matching worker as a JSON array; later events are named after the
	// state the worker entered.
	snapshotEvent = "snapshot"
)

// knownStates lists the worker states a filter may name.
var knownStates = []string{
	"idle", "submitting", "succeeded", "soft_failed",
	"hard_failed", "sleeping", "skipped", "stopped",
}

// Server serves the status board of a running session.
type Server struct {
	board      store.Store
	port       int
	assets     fs.FS
	title      string
	logger     *slog.Logger
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a [Server] for board on port.
//
// Port 0 binds a free port; see [Server.Addr]. assets holds the status page
// template at assets/index.html and may be nil, in which case only the API
// is served.
func NewServer(board store.Store, port int, assets fs.FS, title string, logger *slog.Logger) *Server {
	if title == "" {
		title = defaultTitle
	}
	return &Server{
		board:  board,
		port:   port,
		assets: assets,
		title:  title,
		logger: logger,
	}
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/sse", s.handleSSE)
	if s.assets != nil {
		mux.HandleFunc("GET /{$}", s.handleDashboard)
	}
	return mux
}

// Start binds the port and serves in the background until ctx is done.
// A busy port is reported before Start returns.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("status server: listen on port %d: %w", s.port, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// streams end with the session
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go s.serve(ln)
	go s.shutdownOn(ctx)
	return nil
}

func (s *Server) serve(ln net.Listener) {
	err := s.httpServer.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("status server stopped", "addr", ln.Addr().String(), "error", err)
	}
}

func (s *Server) shutdownOn(ctx context.Context) {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("status server shutdown incomplete", "error", err)
	}
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// workerFilter selects workers by platform and state. Empty fields match
// everything.
type workerFilter struct {
	platform string
	states   []string
}

// parseFilter reads ?platform= and ?state= from q. state takes a comma
// separated list and rejects names no worker can be in.
func parseFilter(q url.Values) (workerFilter, error) {
	f := workerFilter{platform: strings.ToLower(strings.TrimSpace(q.Get("platform")))}
	for _, raw := range q["state"] {
		for _, name := range strings.Split(raw, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			if !slices.Contains(knownStates, name) {
				return workerFilter{}, fmt.Errorf("unknown state %q", name)
			}
			f.states = append(f.states, name)
		}
	}
	return f, nil
}

func (f workerFilter) match(ws store.WorkerStatus) bool {
	if f.platform != "" && !strings.EqualFold(ws.Platform, f.platform) {
		return false
	}
	return len(f.states) == 0 || slices.Contains(f.states, ws.State)
}

func (f workerFilter) apply(all []store.WorkerStatus) []store.WorkerStatus {
	out := make([]store.WorkerStatus, 0, len(all))
	for _, ws := range all {
		if f.match(ws) {
			out = append(out, ws)
		}
	}
	return out
}

// summary aggregates the board for the status page header.
type summary struct {
	Workers       int            `json:"workers"`
	States        map[string]int `json:"states"`
	Orders        int            `json:"orders"`
	NextAttemptAt *time.Time     `json:"next_attempt_at,omitempty"`
}

func summarize(statuses []store.WorkerStatus) summary {
	sum := summary{Workers: len(statuses), States: make(map[string]int)}
	for _, ws := range statuses {
		sum.States[ws.State]++
		sum.Orders += ws.Iteration
		if ws.NextAttemptAt != nil && (sum.NextAttemptAt == nil || ws.NextAttemptAt.Before(*sum.NextAttemptAt)) {
			next := *ws.NextAttemptAt
			sum.NextAttemptAt = &next
		}
	}
	return sum
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode status response", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, f.apply(s.board.GetAll()))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, summarize(f.apply(s.board.GetAll())))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	page, err := template.ParseFS(s.assets, pagePath)
	if err != nil {
		s.logger.Error("load status page", "error", err)
		http.Error(w, "status page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, struct{ Title string }{s.title}); err != nil {
		s.logger.Error("render status page", "error", err)
	}
}

// eventStream writes named Server-Sent Events with a per-write deadline.
type eventStream struct {
	w         http.ResponseWriter
	rc        *http.ResponseController
	deadlines bool
	nextID    int
}

func (es *eventStream) send(event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if es.deadlines {
		if err := es.rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
			es.deadlines = false
		}
	}
	es.nextID++
	if _, err := fmt.Fprintf(es.w, "id: %d\nevent: %s\ndata: %s\n\n", es.nextID, event, data); err != nil {
		return err
	}
	return es.rc.Flush()
}

// handleSSE streams the board. The first event is a snapshot of matching
// workers; each later event is one worker update named after its state.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// subscribe before the snapshot so no update falls between the two
	updates := s.board.Subscribe()
	defer s.board.Unsubscribe(updates)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	stream := &eventStream{w: w, rc: http.NewResponseController(w), deadlines: true}
	if err := stream.send(snapshotEvent, f.apply(s.board.GetAll())); err != nil {
		return
	}

	for {
		select {
		case ws, ok := <-updates:
			if !ok {
				return
			}
			if !f.match(ws) {
				continue
			}
			if err := stream.send(ws.State, ws); err != nil {
				s.logger.Debug("sse client gone", "remote", r.RemoteAddr, "error", err)
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
