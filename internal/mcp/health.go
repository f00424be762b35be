package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// HealthServer provides an HTTP health check endpoint.
type HealthServer struct {
	port   string
	logger *zap.Logger

	mu     sync.Mutex
	checks map[string]HealthCheck

	server   *http.Server
	listener net.Listener
}

// NewHealthServer creates a new health server on the specified port.
// Port "0" picks a free port; see Addr.
func NewHealthServer(port string, logger *zap.Logger) *HealthServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthServer{
		port:   port,
		logger: logger.Named("health"),
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers a named dependency check run on every request.
func (h *HealthServer) AddCheck(name string, check HealthCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Start starts the health server in a background goroutine.
// Returns an error if the server fails to start.
func (h *HealthServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)

	h.server = &http.Server{
		Addr:         ":" + h.port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	listener, err := net.Listen("tcp", h.server.Addr)
	if err != nil {
		return err
	}
	h.listener = listener

	go func() {
		h.logger.Info("listening", zap.String("addr", listener.Addr().String()))
		if err := h.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the listening address once started.
func (h *HealthServer) Addr() string {
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

// Shutdown gracefully shuts down the health server.
func (h *HealthServer) Shutdown(ctx context.Context) error {
	if h.server != nil {
		return h.server.Shutdown(ctx)
	}
	return nil
}

func (h *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp, status := h.runChecks(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Warn("failed to encode health response", zap.Error(err))
	}
}

func (h *HealthServer) runChecks(ctx context.Context) (HealthResponse, int) {
	h.mu.Lock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	checks := make(map[string]HealthCheck, len(h.checks))
	for name, c := range h.checks {
		checks[name] = c
	}
	h.mu.Unlock()
	sort.Strings(names)

	resp := HealthResponse{Status: "ok"}
	status := http.StatusOK
	if len(names) == 0 {
		return resp, status
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	resp.Checks = make(map[string]string, len(names))
	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	return resp, status
}
