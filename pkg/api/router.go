package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/fees"
)

// Options wires the router's collaborators. History and Decimals are optional.
type Options struct {
	Status          StatusGetter
	History         HistoryStore
	Decimals        DecimalsResolver
	Schedule        fees.FeeSchedule
	DefaultDecimals int32
	Logger          *slog.Logger
}

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	h := &Handlers{
		status:          opts.Status,
		history:         opts.History,
		decimals:        opts.Decimals,
		schedule:        opts.Schedule,
		defaultDecimals: opts.DefaultDecimals,
		log:             log,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// Swap execution status.
		r.Get("/status", h.GetStatus)
		r.Get("/status/history", h.GetStatusHistory)

		// Private withdrawals.
		r.Post("/withdrawals/plan", h.PlanWithdrawal)
	})

	return r
}

// requestLogger writes one slog record per request
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// Server represents an HTTP server with all routes configured
type Server struct {
	server *http.Server
}

// NewServer creates a new HTTP server for handler
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
