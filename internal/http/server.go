package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"dompet/internal/log"
	"dompet/internal/metrics"
)

// Pinger reports whether the ledger database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	mux         *http.ServeMux
	db          Pinger
	logger      *log.Logger
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer configures the health, readiness and metrics routes. db may be nil
// when the bot runs without storage, in which case /readyz fails.
func NewServer(addr string, db Pinger, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		mux:         mux,
		db:          db,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(rateLimitRequests),
	}

	mux.HandleFunc("GET /{$}", s.withLogging(handleIndex))
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	return s
}

// HandleWebhook mounts the Telegram webhook under pattern, rate limited per
// client IP.
func (s *Server) HandleWebhook(pattern string, h http.Handler) {
	s.mux.HandleFunc("POST "+pattern, s.withLogging(s.withRateLimit(h.ServeHTTP)))
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)
		if !s.rateLimiter.allow(clientIP, time.Now()) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded", "client_ip", clientIP, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// withLogging attaches a request scoped logger and logs the outcome.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		logger := s.logger.With(log.FieldRequestID, log.NewRequestID())
		ctx := log.WithContext(r.Context(), logger)
		r = r.WithContext(ctx)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		metrics.ObserveHTTP(r.Pattern, rw.statusCode)
		logger.InfoContext(ctx, "Request completed", log.NewFields().
			WithHTTPResponse(r.Method, r.URL.Path, rw.statusCode, time.Since(start).Milliseconds()).
			ToSlice()...)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("Bot is running!"))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
