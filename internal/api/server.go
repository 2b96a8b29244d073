// Package api exposes correlation queries over HTTP, so any front end can
// drive the engine with stateless request/response calls.
package api

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mailscan/replylag/internal/config"
	"github.com/mailscan/replylag/internal/correlate"
)

// Correlator defines the engine operations the API needs.
type Correlator interface {
	Resolve(searchID string) correlate.Result
	ResolveBatch(searchIDs []string) []correlate.Result
}

// DatasetInfo describes the loaded dataset for the stats endpoint.
type DatasetInfo struct {
	Records     int            `json:"records"`
	Threads     int            `json:"threads"`
	SearchIDs   int            `json:"search_ids"`
	SkippedRows int            `json:"skipped_rows"`
	ThreadTypes map[string]int `json:"thread_types"`
}

// Server represents the HTTP API server.
type Server struct {
	cfg    *config.Config
	engine Correlator
	info   DatasetInfo
	logger *slog.Logger
	router chi.Router
	server *http.Server
}

// NewServer creates a new API server over a built engine.
func NewServer(cfg *config.Config, engine Correlator, info DatasetInfo, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		engine: engine,
		info:   info,
		logger: logger,
	}
	s.router = s.setupRouter()
	return s
}

// setupRouter configures the chi router with all routes and middleware.
func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(s.loggerMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	// Health check (no auth required)
	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/stats", s.handleStats)
		r.Get("/correlate/{searchID}", s.handleCorrelate)
		r.Post("/correlate", s.handleCorrelateBatch)
	})

	return r
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.cfg.Server.BindAddr, strconv.Itoa(s.cfg.Server.APIPort))

	if s.cfg.Server.APIKey == "" {
		s.logger.Warn("API server running without authentication — set [server] api_key in config.toml")
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the configured router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// loggerMiddleware logs each request with method, path, status and duration.
func (s *Server) loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// authMiddleware enforces the configured API key via the X-API-Key header.
// No key configured means open access (bind to loopback in that case).
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := s.cfg.Server.APIKey
		if key != "" {
			got := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				writeError(w, http.StatusUnauthorized, "invalid or missing API key")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
