package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	limiterstdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"

	"github.com/treatly/backend-treats/internal/app"
	"github.com/treatly/backend-treats/internal/cart"
	"github.com/treatly/backend-treats/internal/catalog"
	"github.com/treatly/backend-treats/internal/common"
	"github.com/treatly/backend-treats/internal/config"
	"github.com/treatly/backend-treats/internal/health"
	"github.com/treatly/backend-treats/internal/obs"
	"github.com/treatly/backend-treats/internal/ratelimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "treats")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "treats-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			SamplingRatio: envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0),
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	catalogCache := catalog.NewCache(redisClient, cfg.CatalogCacheTTL)
	items, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.CatalogPath).Msg("load catalog from disk")
		cached, ok, cacheErr := catalogCache.Get(ctx)
		if cacheErr != nil || !ok {
			logger.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("load catalog")
		}
		logger.Info().Msg("serving catalog from redis cache")
		items = cached
	}
	catalogService, err := catalog.NewService(items)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}
	obs.SetCatalogItems(catalogService.Len())
	if err := catalogCache.Set(ctx, items); err != nil {
		logger.Warn().Err(err).Msg("prime catalog cache")
	}
	logger.Info().Int("items", catalogService.Len()).Msg("catalog loaded")

	limiterStore, err := app.NewLimiterStore(redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise limiter store")
	}
	ipLimiter := app.NewIPLimiter(limiterStore, cfg.RateLimitMax, cfg.RateLimitWindow)

	deps := app.Dependencies{
		Context:      context.Background(),
		Redis:        redisClient,
		Validator:    validator.New(),
		Limiter:      ipLimiter,
		LimiterStore: limiterStore,
	}

	carts := &cart.Service{Redis: redisClient, TTL: cfg.CartTTL}
	cartHandler := &cart.Handler{Carts: carts, Catalog: catalogService, Validate: deps.Validator}
	catalogHandler := &catalog.Handler{Service: catalogService}

	mutationLimiter := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "rl:cart:"},
		Config: ratelimit.Config{
			Key:    func(r *http.Request) string { return common.ClientIP(r) },
			Window: cfg.MutationLimitWin,
			Max:    cfg.MutationLimitMax,
		},
		OnError: func(err error) {
			logger.Warn().Err(err).Msg("cart mutation limiter")
		},
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, nil, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(limiterstdlib.NewMiddleware(ipLimiter).Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	checker := readinessChecker{redis: redisClient, catalog: catalogService}
	healthHandler := health.Handler{Checker: checker}
	r.Get("/healthz/live", healthHandler.Live)
	r.Get("/healthz/ready", healthHandler.Ready)

	r.Route("/v1", func(v chi.Router) {
		v.Get("/catalog", catalogHandler.List)
		v.Post("/carts", cartHandler.Create)
		v.Get("/carts/{id}/total", cartHandler.Total)
		v.Group(func(m chi.Router) {
			m.Use(mutationLimiter.Middleware)
			m.Put("/carts/{id}/items", cartHandler.UpsertItem)
			m.Delete("/carts/{id}", cartHandler.Clear)
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

type readinessChecker struct {
	redis   *redis.Client
	catalog *catalog.Service
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func (c readinessChecker) CatalogReady(context.Context) error {
	if c.catalog == nil || c.catalog.Len() == 0 {
		return errors.New("catalog not loaded")
	}
	return nil
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		if trimmed := strings.TrimSpace(val); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}
