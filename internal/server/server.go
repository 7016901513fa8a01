// Package server exposes merged timelines and trend charts over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civiclens/civiclens/core"
	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/internal/outwriter"
	"github.com/civiclens/civiclens/schema"
)

// shutdownTimeout bounds how long in-flight requests get after the context is cancelled.
const shutdownTimeout = 10 * time.Second

// requestIDHeader carries the per-request id in both directions.
const requestIDHeader = "X-Request-ID"

// Server serves the timeline endpoints.
type Server struct {
	logger *zap.Logger
	client contract.APIClient
	mgr    contract.CacheManager
	cfg    *contract.Config
}

// NewServer creates a new HTTP server. cfg supplies the defaults every request starts from.
func NewServer(logger *zap.Logger, client contract.APIClient, mgr contract.CacheManager, cfg *contract.Config) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{logger: logger, client: client, mgr: mgr, cfg: cfg}
}

// Handler returns the routed handler with request ids and access logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/timelines/merged", s.handleMerged)
	mux.HandleFunc("GET /api/events/{id}/trend", s.handleTrend)
	return s.requestIDMiddleware(s.loggingMiddleware(mux))
}

// Start listens on addr and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("starting HTTP server", zap.String("addr", ln.Addr().String()))

	errChan := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errChan
	case err := <-errChan:
		if err == nil {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleMerged serves GET /api/timelines/merged?events=1,2[&metric=likes][&format=json|csv|png].
func (s *Server) handleMerged(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ids, err := contract.ParseIDList(query.Get("events"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("events: %v", err))
		return
	}

	cfg := s.cfg.Clone()
	cfg.EventIDs = ids
	if err := cfg.ApplyMetric(query.Get("metric")); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	format, ok := pickFormat(query.Get("format"), schema.JSONOut, schema.JSONOut, schema.CSVOut, schema.PNGOut)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "format must be json, csv or png")
		return
	}

	start := time.Now()
	result, err := core.BuildMerge(core.WithSuppressHeader(r.Context()), cfg, s.client, s.mgr)
	if err != nil {
		s.respondBackendError(w, err)
		return
	}

	cfg.Output = format
	cfg.OutputFile = ""
	s.respondRendered(w, format, func(buf *bytes.Buffer) error {
		return outwriter.PrintMergeResults(buf, result, cfg, time.Since(start))
	})
}

// handleTrend serves GET /api/events/{id}/trend[?format=svg|json|png][&closed=true].
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	id, err := contract.ParseID(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := s.cfg.Clone()
	cfg.EventIDs = []int{id}
	query := r.URL.Query()
	if raw := query.Get("closed"); raw != "" {
		closed, err := strconv.ParseBool(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("closed must be a boolean (got %q)", raw))
			return
		}
		cfg.Closed = closed
	}
	if err := cfg.ApplyMetric(query.Get("metric")); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	format, ok := pickFormat(query.Get("format"), schema.SVGOut, schema.SVGOut, schema.JSONOut, schema.PNGOut)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "format must be svg, json or png")
		return
	}

	start := time.Now()
	result, err := core.BuildTrend(core.WithSuppressHeader(r.Context()), cfg, s.client, s.mgr)
	if err != nil {
		s.respondBackendError(w, err)
		return
	}

	cfg.Output = format
	cfg.OutputFile = ""
	s.respondRendered(w, format, func(buf *bytes.Buffer) error {
		return outwriter.PrintTrendResults(buf, result, cfg, time.Since(start))
	})
}

// pickFormat returns def for an empty value, or raw when it is one of allowed.
func pickFormat(raw string, def schema.OutputMode, allowed ...schema.OutputMode) (schema.OutputMode, bool) {
	if raw == "" {
		return def, true
	}
	format := schema.OutputMode(strings.ToLower(raw))
	for _, a := range allowed {
		if format == a {
			return format, true
		}
	}
	return "", false
}

// contentTypes maps the served formats to their media types.
var contentTypes = map[schema.OutputMode]string{
	schema.JSONOut: "application/json",
	schema.CSVOut:  "text/csv; charset=utf-8",
	schema.SVGOut:  "image/svg+xml",
	schema.PNGOut:  "image/png",
}

// respondRendered renders into a buffer first so that a failed render can still send a 500.
func (s *Server) respondRendered(w http.ResponseWriter, format schema.OutputMode, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.logger.Error("failed to render response", zap.String("format", string(format)), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to render response")
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

// respondBackendError maps a build failure onto a status code.
func (s *Server) respondBackendError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, contract.ErrNotFound) {
		status = http.StatusNotFound
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.logger.Warn("HTTP error response", zap.Int("status", status), zap.String("message", message))
	s.respondJSON(w, status, map[string]string{"error": message})
}

// requestIDMiddleware keeps the caller's request id or assigns a new one.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware writes one access log line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap ResponseWriter to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		s.logger.Info("HTTP request",
			zap.String("request_id", r.Header.Get(requestIDHeader)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapper.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.String("user_agent", r.UserAgent()),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
