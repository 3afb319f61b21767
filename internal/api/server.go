// Package api exposes the on-demand analysis surface over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/shreyabiradar07/causa/internal/metrics"
	"github.com/shreyabiradar07/causa/internal/model"
	"github.com/shreyabiradar07/causa/internal/report"
)

// DefaultPort is the default listen port for the REST API.
const DefaultPort = 8080

// defaultNamespace is assumed when the caller omits the namespace parameter.
const defaultNamespace = "default"

// Runner executes one diagnostic run for a pod. Implemented by the pipeline.
type Runner interface {
	Run(ctx context.Context, namespace, pod string) (*model.RcaReport, error)
}

// errorResponse is the JSON body returned for failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// Server serves the analysis API.
type Server struct {
	runner     Runner
	metrics    *metrics.Metrics
	logger     *slog.Logger
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics enables per-request instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates an API server listening on the given port.
func NewServer(runner Runner, port int, opts ...Option) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("api: runner must not be nil")
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("api: port %d out of valid range [1, 65535]", port)
	}

	s := &Server{
		runner: runner,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.NewServeMux(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Analysis runs span several model calls; give responses room.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// NewServeMux creates an http.ServeMux wired to the server's endpoints.
func (s *Server) NewServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/rca/analyze", s.HandleAnalyze)
	return mux
}

// HandleAnalyze triggers one diagnostic run for the pod named in the query.
//
//	GET /rca/analyze?namespace=production&pod=my-app-pod-12345
//
// The namespace defaults to "default"; pod is required. The report is
// returned as JSON, or as the rendered text box when format=text.
func (s *Server) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	namespace := r.URL.Query().Get("namespace")
	if namespace == "" {
		namespace = defaultNamespace
	}
	pod := r.URL.Query().Get("pod")
	if pod == "" {
		s.writeError(w, http.StatusBadRequest, "pod name is required")
		return
	}

	s.logger.Info("analysis requested", "namespace", namespace, "pod", pod)

	rep, err := s.runner.Run(r.Context(), namespace, pod)
	if err != nil {
		s.logger.Error("analysis request failed", "namespace", namespace, "pod", pod, "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(report.Render(rep)))
		s.countRequest(http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(rep)
	s.countRequest(http.StatusOK)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
	s.countRequest(code)
}

func (s *Server) countRequest(code int) {
	if s.metrics != nil {
		s.metrics.HTTPRequestsTotal.WithLabelValues("analyze", strconv.Itoa(code)).Inc()
	}
}

// ListenAndServe starts the API server. It blocks until the server is shut
// down or encounters an unrecoverable error. Returns http.ErrServerClosed
// on clean shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("api server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Serve starts the API server on the given listener. Useful for testing
// where the port is dynamically assigned.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("api server starting", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the API server, waiting for in-flight
// requests to complete or until the context is cancelled.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("api server shutting down")
	return s.httpServer.Shutdown(ctx)
}
