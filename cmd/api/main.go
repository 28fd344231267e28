package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lokah-app/lokah/internal/api"
	"github.com/lokah-app/lokah/internal/auth"
	"github.com/lokah-app/lokah/internal/chat"
	"github.com/lokah-app/lokah/internal/config"
	"github.com/lokah-app/lokah/internal/database"
	"github.com/lokah-app/lokah/internal/gateway"
	"github.com/lokah-app/lokah/internal/memory"
	mw "github.com/lokah-app/lokah/internal/middleware"
	inats "github.com/lokah-app/lokah/internal/nats"
	"github.com/lokah-app/lokah/internal/pipeline"
	iredis "github.com/lokah-app/lokah/internal/redis"
	"github.com/lokah-app/lokah/internal/reflection"
	"github.com/lokah-app/lokah/internal/reply"
	"github.com/lokah-app/lokah/internal/selves"
	"github.com/lokah-app/lokah/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Gateway and normalization pipeline
	normalizer, err := reply.NewNormalizer()
	if err != nil {
		slog.Error("compiling reply schemas", "error", err)
		os.Exit(1)
	}
	runner := pipeline.New(gateway.New(cfg.Gateway), normalizer)

	// Alternate-self store
	var (
		pool *pgxpool.Pool
		repo selves.Repository
	)
	switch cfg.Store.Driver {
	case config.StoreDriverSupabase:
		repo, err = selves.NewSupabaseRepository(cfg.Supabase)
		if err != nil {
			slog.Error("creating supabase repository", "error", err)
			os.Exit(1)
		}
	default:
		pool, err = database.NewPostgresPool(ctx, cfg.DB)
		if err != nil {
			slog.Error("connecting to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
			slog.Error("running migrations", "error", err)
			os.Exit(1)
		}
		repo = selves.NewRepository(pool)
	}
	slog.Info("alternate-self store ready", "driver", cfg.Store.Driver)

	// NATS (optional)
	var (
		natsClient       *inats.Client
		reflectionEvents reflection.EventPublisher
		selfEvents       selves.EventPublisher
	)
	if cfg.NATS.URL != "" {
		natsClient, err = inats.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to nats", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()

		publisher := inats.NewPublisher(natsClient.JetStream())
		reflectionEvents = publisher
		selfEvents = publisher
	} else {
		slog.Info("NATS_URL not set, event publishing disabled")
	}

	// Auth (optional)
	var authMiddleware func(http.Handler) http.Handler
	if cfg.Auth.JWTSecret != "" {
		authMiddleware = auth.Middleware(auth.NewVerifier(cfg.Auth.JWTSecret))
	}

	// Rate limiting (optional)
	var rateLimiter func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled {
		redisClient, err := iredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Error("connecting to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		rateLimiter = mw.NewRateLimiter(redisClient, cfg.RateLimit.MaxRequests, cfg.RateLimit.WindowSec).
			WithKeyFunc(auth.UserIDFromRequest).
			Middleware
	}

	chatHandler := chat.NewHandler(chat.NewService(runner))
	memoryHandler := memory.NewHandler(memory.NewService(runner))
	reflectionHandler := reflection.NewHandler(reflection.NewService(runner, reflectionEvents))
	selvesHandler := selves.NewHandler(selves.NewService(runner, repo, selfEvents))

	router := api.NewRouter(pool, natsClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimiter:        rateLimiter,
	}, api.HandlerSet{
		ChatWithParallelSelf:  chatHandler.Reply,
		ExtractMemory:         memoryHandler.Extract,
		ExtractMemorySkipped:  memoryHandler.Skipped,
		GenerateReflection:    reflectionHandler.Generate,
		GenerateAlternateSelf: selvesHandler.Generate,
		AuthMiddleware:        authMiddleware,
	})

	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
