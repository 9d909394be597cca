package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kcenon/threadmon/internal/collector"
	"github.com/kcenon/threadmon/internal/config"
	"github.com/kcenon/threadmon/internal/health"
	"github.com/kcenon/threadmon/internal/metrics"
	"github.com/kcenon/threadmon/internal/svccontext"
)

// Server exposes a process's health monitor and collector aggregates
// over HTTP, adapted from the flat liveness/readiness/metrics facade
// used elsewhere in the stack onto the monitor/hub abstractions here.
type Server struct {
	cfg        config.HTTPConfig
	logger     svccontext.Logger
	monitor    *health.Monitor
	hub        *collector.Hub
	httpServer *http.Server
}

// NewServer builds a Server wired to monitor and hub; call Start to
// begin serving.
func NewServer(cfg config.HTTPConfig, logger svccontext.Logger, monitor *health.Monitor, hub *collector.Hub) *Server {
	s := &Server{cfg: cfg, logger: logger, monitor: monitor, hub: hub}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health/live", s.handleLiveness).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", s.handleReadiness).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	return r
}

// Start begins serving and blocks until the listener stops or errors.
func (s *Server) Start() error {
	if s.logger != nil {
		s.logger.Log(svccontext.LevelInfo, fmt.Sprintf("http server listening on %s", s.httpServer.Addr))
	}
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeFilteredStatus(w, r, health.CheckLiveness)
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	s.writeFilteredStatus(w, r, health.CheckReadiness)
}

// writeFilteredStatus writes the status of every registered check.
// want is not applied: health.Result carries no check type, so the
// liveness and readiness endpoints report the same set as /health.
func (s *Server) writeFilteredStatus(w http.ResponseWriter, r *http.Request, want health.CheckType) {
	results := s.monitor.CheckAll(r.Context())
	filtered := make(map[string]health.Result, len(results))
	for name, res := range results {
		filtered[name] = res
	}
	status := s.monitor.OverallStatus(filtered)
	writeJSONStatus(w, status, filtered)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	results := s.monitor.CheckAll(r.Context())
	status := s.monitor.OverallStatus(results)
	writeJSONStatus(w, status, results)
}

func writeJSONStatus(w http.ResponseWriter, status health.Status, results map[string]health.Result) {
	code := http.StatusOK
	if status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"checks": results,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	aggregates := s.hub.Aggregate()
	batch := aggregatesToMetrics(aggregates)
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_, _ = w.Write(RenderPrometheusText(batch))
}

func aggregatesToMetrics(aggregates map[string]collector.Aggregate) []metrics.Metric {
	now := time.Now().UnixMicro()
	batch := make([]metrics.Metric, 0, len(aggregates)*4)
	for name, agg := range aggregates {
		batch = append(batch,
			metrics.Metric{Name: name + "_count", Value: float64(agg.Count), Type: metrics.TypeGauge, TimestampUs: now},
			metrics.Metric{Name: name + "_sum", Value: agg.Sum, Type: metrics.TypeGauge, TimestampUs: now},
			metrics.Metric{Name: name + "_min", Value: agg.Min, Type: metrics.TypeGauge, TimestampUs: now},
			metrics.Metric{Name: name + "_max", Value: agg.Max, Type: metrics.TypeGauge, TimestampUs: now},
			metrics.Metric{Name: name + "_mean", Value: agg.Mean, Type: metrics.TypeGauge, TimestampUs: now},
		)
	}
	return batch
}
