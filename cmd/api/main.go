package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SageDevelopmentCode/dine-api/internal/app/migrate"
	httpx "github.com/SageDevelopmentCode/dine-api/internal/http"
	"github.com/SageDevelopmentCode/dine-api/internal/repository/postgres"
	"github.com/SageDevelopmentCode/dine-api/internal/service/auth"
	"github.com/SageDevelopmentCode/dine-api/internal/service/dashboard"
	"github.com/SageDevelopmentCode/dine-api/internal/service/profile"
	"github.com/SageDevelopmentCode/dine-api/internal/service/telemetry"
	"github.com/SageDevelopmentCode/dine-api/internal/ws"
	"github.com/SageDevelopmentCode/dine-api/pkg/config"
	"github.com/SageDevelopmentCode/dine-api/pkg/logger"
)

func main() {
	cfg := config.LoadAPIConfig()
	log := logger.New("api", logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := runner.Ensure(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)
	metricsHub := ws.NewHub()

	telemetrySvc := telemetry.New(repo, metricsHub, log, cfg.TelemetryBuffer, cfg.RPCTimeout)
	go telemetrySvc.Run(ctx)

	authSvc := auth.New(cfg, log)
	profileSvc := profile.New(repo, log, cfg.RPCTimeout)
	dashboardSvc := dashboard.New(repo, log, cfg.RPCTimeout)

	limiter := httpx.NewMemoryRateLimiter()
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimiter, err := httpx.NewRedisRateLimiter(addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limiter = redisLimiter
		}
	}

	router := httpx.NewRouter(log, authSvc, profileSvc, dashboardSvc, telemetrySvc, limiter, cfg.IsProduction(), pool.Ping)
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		select {
		case <-telemetrySvc.Done():
		case <-shutdownCtx.Done():
			log.Warn("telemetry drain timed out")
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
