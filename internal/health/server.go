package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/vietddude/nodehealth/internal/core/domain"
	"github.com/vietddude/nodehealth/internal/metrics"
)

const corsHeaders = "Origin, X-Requested-With, Content-Type, Accept"

// Recorder journals verdicts. Recording is best effort.
type Recorder interface {
	Record(ctx context.Context, rec domain.CheckRecord) error
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int
	Mode    Mode
	Node    string // label of the monitored node, used when journaling
	Verbose bool   // log every response at info level
}

// Server answers health checks over HTTP: 200 when healthy, 500 otherwise.
// Every path except /metrics is a health check.
type Server struct {
	cfg      ServerConfig
	checker  Checker
	recorder Recorder
	server   *http.Server

	mu  sync.Mutex
	lis net.Listener
}

// NewServer creates a health server backed by checker.
func NewServer(checker Checker, cfg ServerConfig) *Server {
	s := &Server{cfg: cfg, checker: checker}
	s.server = s.newHTTPServer(http.HandlerFunc(s.handleHealth))
	return s
}

// NewStaticServer creates a server that always answers status with body.
func NewStaticServer(status int, body string, cfg ServerConfig) *Server {
	cfg.Mode = ModeStatic
	s := &Server{cfg: cfg}
	s.server = s.newHTTPServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, status, body, false)
	}))
	return s
}

func (s *Server) newHTTPServer(check http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", check)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept"},
	})

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// SetRecorder journals every verdict served from now on.
func (s *Server) SetRecorder(r Recorder) {
	s.recorder = r
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start binds the configured port and serves in the background. A bind failure is
// returned; a later serve failure is sent on errs without blocking.
func (s *Server) Start(errs chan<- error) error {
	lis, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}

	s.mu.Lock()
	s.lis = lis
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			notify(errs, fmt.Errorf("health server: %w", err))
		}
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

func notify(errs chan<- error, err error) {
	select {
	case errs <- err:
	default:
		slog.Error("Server failed", "error", err)
	}
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	err := s.server.Shutdown(ctx)

	// Shutdown misses a listener that Serve has not picked up yet.
	s.mu.Lock()
	if s.lis != nil {
		_ = s.lis.Close()
	}
	s.mu.Unlock()
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	verdict := s.checker.Evaluate(r.Context())

	label := "unhealthy"
	status := http.StatusInternalServerError
	if verdict.Healthy {
		label = "healthy"
		status = http.StatusOK
	}
	metrics.ChecksTotal.WithLabelValues(s.cfg.Node, string(s.cfg.Mode), label).Inc()

	s.respond(w, status, verdict.Diagnostic, verdict.Structured)
	s.record(r.Context(), verdict)
}

func (s *Server) respond(w http.ResponseWriter, status int, body string, structured bool) {
	if s.cfg.Verbose {
		slog.Info("Responding", "mode", s.cfg.Mode, "status", status, "body", body)
	} else {
		slog.Debug("Responding", "mode", s.cfg.Mode, "status", status, "body", body)
	}

	contentType := "text/plain; charset=utf-8"
	if structured {
		contentType = "application/json"
	}
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", corsHeaders)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// record journals verdict in the background so the response is not held up.
func (s *Server) record(ctx context.Context, verdict domain.Verdict) {
	if s.recorder == nil {
		return
	}

	rec := domain.CheckRecord{
		ID:         uuid.NewString(),
		Node:       s.cfg.Node,
		Mode:       string(s.cfg.Mode),
		Healthy:    verdict.Healthy,
		Diagnostic: verdict.Diagnostic,
		CheckedAt:  time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.recorder.Record(ctx, rec); err != nil {
			metrics.JournalErrorsTotal.Inc()
			slog.Warn("Failed to record verdict", "id", rec.ID, "error", err)
		}
	}()
}
