// SPDX-License-Identifier: EPL-2.0

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Liam-coding/Voice-API/internal/config"
	"github.com/Liam-coding/Voice-API/internal/metrics"
	"github.com/Liam-coding/Voice-API/pipeline"
	"github.com/Liam-coding/Voice-API/result"
	"github.com/Liam-coding/Voice-API/session"
)

const (
	serviceName    = "Voice Translation API"
	serviceVersion = "2.0.0"

	// multipartMemory is kept in memory before spilling to disk.
	multipartMemory = 1 << 20
)

var supportedLanguages = []string{"zh", "en", "ja", "ko", "ru", "fr", "de", "es", "pt", "it"}

// Normalizer turns uploads into canonical PCM.
type Normalizer interface {
	Normalize(data []byte) pipeline.Output
	Formats() []string
}

// Translator relays canonical PCM to the translation service, either as
// one frame or as a chunked stream.
type Translator interface {
	Translate(ctx context.Context, source, target string, pcm []byte) (result.Result, error)
	Stream(ctx context.Context, source, target string, pcm []byte) (result.Result, error)
	Status() session.Status
}

type Options struct {
	Server     config.ServerConfig
	SourceLang string
	TargetLang string
	// Stream is the default for requests without a stream field.
	Stream bool

	Pipeline Normalizer
	Session  Translator

	// Metrics and Gatherer are optional.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Server serves the HTTP API.
type Server struct {
	server   *http.Server
	opts     Options
	logger   *slog.Logger
	pipeline Normalizer
	session  Translator
	metrics  *metrics.Metrics
}

func New(opts Options) *Server {
	s := &Server{
		opts:     opts,
		logger:   opts.Logger,
		pipeline: opts.Pipeline,
		session:  opts.Session,
		metrics:  opts.Metrics,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.server = &http.Server{
		Addr:              opts.Server.Addr(),
		Handler:           cors(opts.Server.CORSOrigin, mux),
		ReadTimeout:       opts.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      opts.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/translate", s.withMetrics("/api/translate", s.handleTranslate))
	mux.HandleFunc("GET /health", s.withMetrics("/health", s.handleHealth))
	mux.HandleFunc("GET /api/status", s.withMetrics("/api/status", s.handleStatus))

	if s.opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
}

// Handler is the full handler chain, CORS included.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// ListenAndServe blocks until the server stops. A clean Shutdown returns
// nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting HTTP API server", slog.String("address", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("stopping HTTP API server")
	return s.server.Shutdown(ctx)
}

// withMetrics records the status code and latency of handler.
func (s *Server) withMetrics(route string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(ww, r)

		elapsed := time.Since(start)
		if s.metrics != nil {
			s.metrics.ObserveHTTP(route, r.Method, ww.statusCode, elapsed)
		}
		s.logger.Debug("request served",
			slog.String("route", route),
			slog.String("method", r.Method),
			slog.Int("status", ww.statusCode),
			slog.Duration("elapsed", elapsed),
		)
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func cors(origin string, next http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		h.Set("Access-Control-Expose-Headers", headerSubstituted)
		if origin != "*" {
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
