package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/logging"
)

const (
	// DefaultShutdownTimeout bounds the wait for in-flight requests on
	// shutdown.
	DefaultShutdownTimeout = 10 * time.Second
	// DefaultRequestTimeout bounds a single computation.
	DefaultRequestTimeout = 30 * time.Second

	requestIDHeader = "X-Request-ID"
	tracerName      = "github.com/agbru/fibengine/internal/server"
)

// Config configures a Server.
type Config struct {
	Addr     string
	Security SecurityConfig
	// DefaultPolicy applies when a request has no policy parameter.
	DefaultPolicy fibonacci.Policy
	// Workers bounds the goroutines of one batch request.
	Workers         int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Server is the HTTP host.
type Server struct {
	cfg     Config
	metrics *Metrics
	logger  logging.Logger
	tracer  trace.Tracer
}

type ctxKey struct{}

// New creates a server. Zero timeouts select the defaults and a nil logger
// discards every entry.
func New(cfg Config, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewLogger(io.Discard, "server")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &Server{
		cfg:     cfg,
		metrics: NewMetrics(),
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
}

// Handler returns the routed handler with every middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	route := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, s.requestMiddleware(pattern, SecurityMiddleware(s.cfg.Security, h)))
	}
	route("/fibonacci", s.handleFibonacci)
	route("/batch", s.handleBatch)
	route("/health", s.handleHealth)
	route("/metrics", s.handleMetrics)
	return mux
}

// Run listens on cfg.Addr and serves until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", logging.Duration("timeout", s.cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestMiddleware assigns a request ID, opens a span, tracks metrics and
// logs the request.
func (s *Server) requestMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return s.metricsMiddleware(endpoint, func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		ctx, span := s.tracer.Start(r.Context(), r.Method+" "+endpoint,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
				attribute.String("request.id", id),
			))
		defer span.End()

		rec, _ := w.(*statusRecorder)
		next(w, r.WithContext(context.WithValue(ctx, ctxKey{}, id)))

		status := http.StatusOK
		if rec != nil {
			status = rec.status
		}
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}

// metricsMiddleware counts and times requests under endpoint and writes
// one access log line per request.
func (s *Server) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next(rec, r)
		elapsed := time.Since(start)
		s.metrics.ObserveRequest(endpoint, rec.status, elapsed)

		s.logger.Info("request",
			logging.String("request_id", rec.Header().Get(requestIDHeader)),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("query", r.URL.RawQuery),
			logging.Int("status", rec.status),
			logging.Duration("duration", elapsed))
	}
}

// RequestID returns the ID assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
