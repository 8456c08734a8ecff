package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"sales-insight/internal/config"
	"sales-insight/internal/errors"
	"sales-insight/internal/handlers"
	"sales-insight/internal/middleware"
	"sales-insight/internal/observability"
	"sales-insight/internal/services"
)

// multipartOverhead is the body allowance on top of the file size limit for
// multipart boundaries and part headers.
const multipartOverhead = 64 << 10

const pruneInterval = time.Minute

type Server struct {
	router       chi.Router
	logger       *slog.Logger
	rateLimiter  *middleware.RateLimiter
	apiHandlers  *handlers.APIHandlers
	sseHandlers  *handlers.SSEHandlers
	pageHandlers *handlers.PageHandlers
}

func NewServer(sales *services.Sales, cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		logger:       logger,
		rateLimiter:  middleware.NewRateLimiter(cfg.Security),
		apiHandlers:  handlers.NewAPIHandlers(sales, cfg, logger),
		sseHandlers:  handlers.NewSSEHandlers(sales, cfg, logger),
		pageHandlers: handlers.NewPageHandlers(cfg, logger),
	}
	s.setupRoutes(cfg)
	return s
}

func (s *Server) setupRoutes(cfg *config.Config) {
	r := s.router

	r.Use(
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logger(s.logger),
		middleware.Tracing(s.logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		chimw.RealIP,
		middleware.RateLimit(s.rateLimiter, s.logger),
	)

	r.NotFound(s.notFound)
	r.MethodNotAllowed(s.notFound)

	r.Get("/", s.pageHandlers.HandleIndex)
	r.Get("/health", s.apiHandlers.HandleHealth)
	r.Get("/admin/stats", s.apiHandlers.HandleStats)

	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBodySize(cfg.Upload.MaxFileSize + multipartOverhead))

		r.Post("/api/quick-stats", s.apiHandlers.HandleQuickStats)
		r.Post("/api/validate", s.apiHandlers.HandleValidate)
		r.Post("/api/analyze", s.apiHandlers.HandleAnalyze)

		r.Post("/sse/analyze", s.sseHandlers.HandleAnalyze)
	})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	errors.WriteError(w, s.logger, errors.NotFound("Resource not found"), observability.GetRequestID(r.Context()))
}

// PruneClients drops idle rate limiter entries until ctx is done.
func (s *Server) PruneClients(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.rateLimiter.Prune(now); n > 0 {
				s.logger.Debug("pruned idle rate limiter entries", "count", n)
			}
		}
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
