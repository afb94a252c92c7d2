package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/nao1215/privacygrade/internal/collect"
	"github.com/nao1215/privacygrade/internal/monitor"
	"github.com/nao1215/privacygrade/internal/observe"
)

// DefaultAddr is the default listen address.
const DefaultAddr = "127.0.0.1:8787"

// DefaultMaxBodySize limits request bodies (5MB).
const DefaultMaxBodySize int64 = 5 * 1024 * 1024

// Server is the HTTP and WebSocket API in front of a Monitor.
type Server struct {
	monitor     *monitor.Monitor
	hub         *Hub
	collector   *collect.Collector
	router      chi.Router
	upgrader    websocket.Upgrader
	addr        string
	maxBodySize int64
	logger      *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithCollector sets the collector used by the fresh endpoint.
func WithCollector(c *collect.Collector) Option {
	return func(s *Server) {
		s.collector = c
	}
}

// WithMaxBodySize limits request bodies.
func WithMaxBodySize(size int64) Option {
	return func(s *Server) {
		if size > 0 {
			s.maxBodySize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server. The hub should be the monitor's painter so that
// WebSocket clients see repaints.
func New(m *monitor.Monitor, hub *Hub, opts ...Option) *Server {
	s := &Server{
		monitor:     m,
		hub:         hub,
		router:      chi.NewRouter(),
		addr:        DefaultAddr,
		maxBodySize: DefaultMaxBodySize,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.hub == nil {
		s.hub = NewHub(s.logger)
	}
	if s.collector == nil {
		s.collector = collect.NewCollector(collect.WithLogger(s.logger))
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/events", s.handleEvents)
		r.Get("/ws", s.handleWS)

		r.Route("/tabs/{tabID}", func(r chi.Router) {
			r.Get("/score", s.handleScore)
			r.Get("/report", s.handleReport)
			r.Post("/fresh", s.handleFresh)
			r.Delete("/", s.handleClose)
		})
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start),
		)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Serve listens until ctx is cancelled and then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := s.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func tabID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "tabID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tab id")
		return 0, false
	}
	return id, true
}

// readBody reads the request body up to the size limit. Only an oversized
// body is a 413; any other read failure is the client's and gets a 400.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		s.logger.Debug("failed to read request body", "error", err)
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	return body, true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"tabs":        s.monitor.Registry().Len(),
		"subscribers": s.hub.Len(),
	})
}

// handleEvents accepts a single event object or an array of events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var events []monitor.Event
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &events); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	} else {
		var ev monitor.Event
		if err := json.Unmarshal(trimmed, &ev); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		events = []monitor.Event{ev}
	}

	if err := s.monitor.ApplyAll(events); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"applied": len(events)})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	id, ok := tabID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.monitor.GetScore(id))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id, ok := tabID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.monitor.GetDetailedReport(id))
}

// handleFresh grades the posted HTML of the tab's page merged with the
// live evidence.
func (s *Server) handleFresh(w http.ResponseWriter, r *http.Request) {
	id, ok := tabID(w, r)
	if !ok {
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	report, err := s.monitor.FreshReport(r.Context(), id, s.collector.CollectFunc(body))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, report)
	case errors.Is(err, monitor.ErrUntrackedTab):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, observe.ErrStaleTab):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Warn("fresh report failed", "tab", id, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	id, ok := tabID(w, r)
	if !ok {
		return
	}
	s.monitor.OnTabClosed(id)
	w.WriteHeader(http.StatusNoContent)
}

// handleWS streams paint messages. An optional ?tab= query restricts the
// stream to one tab.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	filter := -1
	if q := r.URL.Query().Get("tab"); q != "" {
		id, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid tab id")
			return
		}
		filter = id
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	id, messages := s.hub.Subscribe()
	defer s.hub.Unsubscribe(id)

	// The read loop only detects the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if filter >= 0 && msg.TabID != filter {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}
