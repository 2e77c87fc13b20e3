package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storepulse/internal/config"
	"storepulse/internal/response"
)

// Pinger reports whether a backing dependency is reachable. *sql.DB
// satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Mount attaches a module's routes under /api/<Path>.
type Mount struct {
	Path   string
	Routes func(r chi.Router)
}

type Dependencies struct {
	Health    Pinger
	WebSocket http.Handler
	Mounts    []Mount
}

type healthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRouter(cfg config.ServerConfig, deps Dependencies, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(echoRequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestContext)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", health(deps.Health, logger))
	r.Handle("/metrics", promhttp.Handler())
	if deps.WebSocket != nil {
		r.Handle("/ws", deps.WebSocket)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow > 0 {
			api.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}
		api.Use(instrument(logger))
		for _, m := range deps.Mounts {
			api.Route("/"+m.Path, m.Routes)
		}
	})

	return r
}

func health(db Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := healthResponse{Status: "ok", Database: "ok", Timestamp: time.Now().UTC()}
		status := http.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				logger.Warn("health check failed", zap.Error(err), zap.String("trace_id", response.TraceID(r.Context())))
				body.Status = "degraded"
				body.Database = "unreachable"
				status = http.StatusServiceUnavailable
			}
		}

		response.JSON(w, status, body, logger)
	}
}
