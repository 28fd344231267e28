package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lokah-app/lokah/internal/database"
	mw "github.com/lokah-app/lokah/internal/middleware"
	inats "github.com/lokah-app/lokah/internal/nats"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	ChatWithParallelSelf  http.HandlerFunc
	ExtractMemory         http.HandlerFunc
	GenerateReflection    http.HandlerFunc
	GenerateAlternateSelf http.HandlerFunc

	// ExtractMemorySkipped answers extract-memory when auth or rate limiting
	// turns the request away; nil writes {"memory":null}.
	ExtractMemorySkipped http.HandlerFunc

	// Optional; nil leaves the function routes unauthenticated.
	AuthMiddleware func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	RateLimiter        func(http.Handler) http.Handler
}

// NewRouter mounts the four functions under /functions/v1. pool and
// natsClient may be nil when the deployment does not use them.
func NewRouter(pool *pgxpool.Pool, natsClient *inats.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"nats":     "healthy",
		}
		status := http.StatusOK

		if pool == nil {
			health["database"] = "not configured"
		} else if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if natsClient == nil {
			health["nats"] = "not configured"
		} else if !natsClient.Healthy() {
			// Events are best-effort, so a NATS outage degrades without failing readiness.
			health["nats"] = "unhealthy"
			health["status"] = "degraded"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/functions/v1", func(r chi.Router) {
		// Preflight answers before auth and rate limiting.
		r.Options("/*", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		r.Group(func(r chi.Router) {
			if h.AuthMiddleware != nil {
				r.Use(h.AuthMiddleware)
			}
			if cfg.RateLimiter != nil {
				r.Use(cfg.RateLimiter)
			}

			r.Post("/chat-with-parallel-self", h.ChatWithParallelSelf)
			r.Post("/generate-reflection", h.GenerateReflection)
			r.Post("/generate-alternate-self", h.GenerateAlternateSelf)
		})

		// extract-memory answers 200 even when the caller is rejected.
		skipped := h.ExtractMemorySkipped
		if skipped == nil {
			skipped = func(w http.ResponseWriter, r *http.Request) {
				JSON(w, http.StatusOK, map[string]any{"memory": nil})
			}
		}
		r.With(
			softReject(h.AuthMiddleware, skipped),
			softReject(cfg.RateLimiter, skipped),
		).Post("/extract-memory", h.ExtractMemory)
	})

	return r
}

// softReject runs mw in front of the route. When mw answers the request
// itself instead of calling through, its response is discarded and reject
// writes the reply.
func softReject(mw func(http.Handler) http.Handler, reject http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if mw == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed := false
			guarded := mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				passed = true
				next.ServeHTTP(w, r)
			}))
			guarded.ServeHTTP(&discardWriter{header: http.Header{}}, r)
			if !passed {
				reject(w, r)
			}
		})
	}
}

// discardWriter swallows a middleware's rejection response.
type discardWriter struct {
	header http.Header
}

func (d *discardWriter) Header() http.Header         { return d.header }
func (d *discardWriter) Write(b []byte) (int, error) { return len(b), nil }
func (d *discardWriter) WriteHeader(int)             {}

