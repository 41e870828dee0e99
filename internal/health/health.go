package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/news-impact/pkg/logger"
	"github.com/selivandex/news-impact/pkg/worker"
)

// Checker reports health of a dependency
type Checker interface {
	Health() error
}

// CheckerFunc adapts a function to Checker
type CheckerFunc func() error

// Health implements Checker
func (f CheckerFunc) Health() error {
	return f()
}

// StatusSource exposes periodic worker statistics
type StatusSource interface {
	Statuses() []worker.Status
}

// Server provides health check HTTP endpoints for K8s
type Server struct {
	server    *http.Server
	checks    map[string]Checker
	workers   StatusSource
	ready     bool
	readyMu   sync.RWMutex
	startTime time.Time
}

// HealthStatus represents liveness response
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ReadinessStatus represents readiness response
type ReadinessStatus struct {
	Ready     bool              `json:"ready"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Workers   []worker.Status   `json:"workers,omitempty"`
}

// NewServer creates new health check server. workers may be nil.
func NewServer(port string, checks map[string]Checker, workers StatusSource) *Server {
	mux := http.NewServeMux()

	s := &Server{
		server: &http.Server{
			Addr:         ":" + port,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		checks:    checks,
		workers:   workers,
		startTime: time.Now(),
	}

	mux.HandleFunc("/health", s.handleHealth)    // Liveness probe
	mux.HandleFunc("/ready", s.handleReadiness)  // Readiness probe
	mux.HandleFunc("/healthz", s.handleHealth)   // Alias
	mux.HandleFunc("/readyz", s.handleReadiness) // Alias

	return s
}

// Handler returns HTTP handler serving probe endpoints
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the health check server
func (s *Server) Start() error {
	logger.Info("health check server starting",
		zap.String("addr", s.server.Addr),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	logger.Info("stopping health check server")
	return s.server.Shutdown(ctx)
}

// SetReady marks the service as ready
func (s *Server) SetReady(ready bool) {
	s.readyMu.Lock()
	defer s.readyMu.Unlock()
	s.ready = ready

	if ready {
		logger.Info("service marked as ready")
	} else {
		logger.Warn("service marked as not ready")
	}
}

// runChecks returns per dependency status and whether all of them passed
func (s *Server) runChecks() (map[string]string, bool) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	allHealthy := true
	for _, name := range names {
		if err := s.checks[name].Health(); err != nil {
			results[name] = "unhealthy: " + err.Error()
			allHealthy = false
			continue
		}
		results[name] = "healthy"
	}
	return results, allHealthy
}

// handleHealth handles liveness probe - /health
// Returns 200 if process is alive (even if dependencies are down)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	}

	if r.URL.Query().Get("verbose") == "true" {
		status.Checks, _ = s.runChecks()
	}

	writeJSON(w, http.StatusOK, status)
}

// handleReadiness handles readiness probe - /ready
// Ready once startup finished, dependencies pass and no worker failed its latest run
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	s.readyMu.RLock()
	ready := s.ready
	s.readyMu.RUnlock()

	checks, allHealthy := s.runChecks()

	var statuses []worker.Status
	if s.workers != nil {
		statuses = s.workers.Statuses()
		for _, st := range statuses {
			if st.Runs > 0 && !st.Healthy() {
				allHealthy = false
			}
		}
	}

	status := ReadinessStatus{
		Ready:     ready && allHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Workers:   statuses,
	}

	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("failed to write health response", zap.Error(err))
	}
}
