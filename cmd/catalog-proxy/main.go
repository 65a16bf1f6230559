// Command catalog-proxy exposes the catalog client as a small HTTP
// service: it loads collections from the upstream storefront through
// the response cache and serves filtered, sorted, paginated pages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/feastly/catalog-client/pkg/cache"
	"github.com/feastly/catalog-client/pkg/catalog"
	"github.com/feastly/catalog-client/pkg/client"
	"github.com/feastly/catalog-client/pkg/logging"
	"github.com/feastly/catalog-client/pkg/session"
)

func main() {
	upstreamURL := getEnv("UPSTREAM_URL", "http://localhost:3000")
	port := getEnv("PORT", "8080")
	userAgent := getEnv("USER_AGENT", "catalog-client/0.1.0")
	redisURL := getEnv("REDIS_URL", "")
	sessionID := getEnv("SESSION_ID", "default")

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "") == "true",
		Output: os.Stderr,
	})
	logger = logging.NewLogger("catalog-proxy")

	// Without REDIS_URL both stores are process-local; with it, cache
	// entries and the session survive a restart.
	var cacheStore cache.Store = cache.NewMemoryStore(cache.DefaultTTL)
	var sessionStore session.Store = session.NewMemoryStore()
	if redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisURL})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("redis", redisURL).Msg("Failed to connect to redis")
		}
		cacheStore = cache.NewRedisStore(redisClient, cache.DefaultTTL)
		sessionStore = session.NewRedisStore(redisClient, sessionID)
		logger.Info().Str("redis", redisURL).Msg("Connected to redis")
	}

	cfg := client.DefaultConfig(upstreamURL)
	cfg.UserAgent = userAgent
	cfg.Tokens = session.Tokens(sessionStore)

	apiClient, err := client.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create storefront client")
	}

	srv := &server{
		loader: catalog.NewLoader(apiClient, cacheStore),
		linker: session.NewLinker(apiClient, sessionStore),
		logger: logger,
	}

	addr := ":" + port
	logger.Info().
		Str("addr", addr).
		Str("upstream", upstreamURL).
		Msg("Starting catalog proxy")

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// server bundles the proxy's dependencies for the HTTP handlers.
type server struct {
	loader *catalog.Loader
	linker *session.Linker
	logger zerolog.Logger
}

func (s *server) router() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleBrowse)
		r.Get("/catalog/{productID}", s.handleProduct)
		r.Get("/categories", s.handleCategories)
		r.Get("/restaurants", s.handleRestaurants)

		r.Post("/session/login", s.handleLogin)
		r.Post("/session/logout", s.handleLogout)
		r.Get("/session", s.handleSession)
	})

	return r
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
