package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/carebridge/interpreter-booking/internal/api/router"
	"github.com/carebridge/interpreter-booking/internal/auth"
	appconfig "github.com/carebridge/interpreter-booking/internal/config"
	"github.com/carebridge/interpreter-booking/internal/dashboard"
	"github.com/carebridge/interpreter-booking/internal/directory"
	"github.com/carebridge/interpreter-booking/internal/http/handlers"
	"github.com/carebridge/interpreter-booking/internal/interpreters"
	"github.com/carebridge/interpreter-booking/internal/matching"
	"github.com/carebridge/interpreter-booking/internal/observability/metrics"
	"github.com/carebridge/interpreter-booking/internal/patients"
	"github.com/carebridge/interpreter-booking/internal/requests"
	"github.com/carebridge/interpreter-booking/pkg/logging"
)

func main() {
	// Load .env in development; absence is fine.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting interpreter-booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, dashboard cache disabled", "error", err)
			redisClient = nil
		}
	}

	// Repositories and stores
	userRepo := auth.NewPostgresRepository(pool)
	patientRepo := patients.NewPostgresRepository(pool)
	interpreterRepo := interpreters.NewPostgresRepository(pool)
	requestStore := requests.NewPostgresStore(pool)

	// External patient directory
	fhirClient := directory.NewClient(cfg.FHIRBaseURL, cfg.FHIRTimeout, logger.Named("directory"))

	// Services
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	patientService := patients.NewService(fhirClient, patientRepo, logger.Named("patients"))
	matchingMetrics := metrics.NewMatchingMetrics(nil)
	engine := matching.NewEngine(requestStore, interpreterRepo, patientRepo, matchingMetrics, logger.Named("matching"))

	// Handlers
	routerCfg := &router.Config{
		Logger:              logger,
		TokenIssuer:         issuer,
		AuthHandler:         auth.NewHandler(userRepo, issuer, logger.Named("auth")),
		PatientsHandler:     patients.NewHandler(patientService, fhirClient, patientRepo, logger.Named("patients")),
		InterpretersHandler: interpreters.NewHandler(interpreterRepo, logger.Named("interpreters")),
		RequestsHandler:     handlers.NewRequestsHandler(engine, requestStore, interpreterRepo, patientRepo, logger.Named("requests")),
		DashboardHandler:    dashboard.NewStatsHandler(dashboard.NewStatsRepository(pool), redisClient, cfg.DashboardCacheTTL, logger.Named("dashboard")),
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
