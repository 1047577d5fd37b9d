package nui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"nuiprogress/internal/metrics"
)

// DefaultListenAddr is where the bridge listens when none is configured.
const DefaultListenAddr = "127.0.0.1:30120"

// maxBodyBytes bounds a single host message.
const maxBodyBytes = 1 << 20

// Message is the envelope the host posts to /nui.
type Message struct {
	Action string `json:"action"`
	Data   any    `json:"data,omitempty"`
}

// Server receives host messages over HTTP and publishes them on a Bus.
type Server struct {
	bus    *Bus
	addr   string
	router chi.Router
	logger *zap.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer creates a Server that will listen on addr.
func NewServer(addr string, bus *Bus, logger *zap.Logger) *Server {
	if addr == "" {
		addr = DefaultListenAddr
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		bus:    bus,
		addr:   addr,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Post("/nui", s.handleMessage)
	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	s.router = r
	return s
}

// Handler returns the router for use with httptest or a custom http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listener and serves in a background goroutine. Binding
// errors are returned; serve errors after that are logged.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return errors.New("bridge server already started")
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv := s.server
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("bridge server stopped", zap.Error(err))
		}
	}()
	s.logger.Info("bridge server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown bridge server: %w", err)
	}
	return nil
}

// Addr returns the bound address once started, or the configured address.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// handleMessage handles POST /nui requests.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg.Action == "" {
		writeError(w, http.StatusBadRequest, "action is required")
		return
	}

	metrics.ObserveBridgeMessage(msg.Action)
	delivered := s.bus.Publish(msg.Action, msg.Data)
	s.logger.Debug("host message received", zap.String("action", msg.Action), zap.Int("delivered", delivered))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "delivered": delivered})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
