// Copyright (c) 2026 Housika. All rights reserved.

// Command api is the entry point for the Housika HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool) and run migrations.
//  4. Connect to Redis when the session backend needs it.
//  5. Build the session store, role resolver and mailer.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/housika/housika-api/internal/api"
	"github.com/housika/housika-api/internal/notify"
	"github.com/housika/housika-api/internal/platform/config"
	"github.com/housika/housika-api/internal/platform/constants"
	"github.com/housika/housika-api/internal/platform/mailer"
	"github.com/housika/housika-api/internal/platform/middleware"
	"github.com/housika/housika-api/internal/platform/migration"
	pgstore "github.com/housika/housika-api/internal/platform/postgres"
	redisstore "github.com/housika/housika-api/internal/platform/redis"
	"github.com/housika/housika-api/internal/platform/sec"
	"github.com/housika/housika-api/internal/users/access"
	"github.com/housika/housika-api/internal/users/account"
	"github.com/housika/housika-api/internal/users/auth"
	"github.com/housika/housika-api/internal/users/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	logLevel := new(slog.LevelVar)
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		logLevel.Set(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("session_backend", cfg.SessionBackend),
	)

	// Root context for startup. A deadline surfaces misconfiguration quickly
	// rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	healthChecks := []api.HealthCheck{{
		Name:  "postgres",
		Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
	}}

	// ── 4. Session backend ────────────────────────────────────────────────
	var (
		registry    session.Registry
		gate        access.ReservedRoleGate
		resetTokens auth.CodeStore
		otps        auth.CodeStore
	)

	switch cfg.SessionBackend {
	case config.BackendRedis:
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer closeRedis(log, rdb)

		registry = session.NewRedisRegistry(rdb)
		gate = access.NewRedisGate(rdb)
		resetTokens = auth.NewResetTokenStore(rdb)
		otps = auth.NewOTPStore(rdb)
		healthChecks = append(healthChecks, api.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
		})

	case config.BackendMemory:
		log.Warn("memory_session_backend", slog.String("note", "sessions are local to this instance"))
		registry = session.NewMemoryRegistry()
		gate = access.NewMemoryGate()
		resetTokens = auth.NewMemoryCodeStore()
		otps = auth.NewMemoryCodeStore()
	}

	codec, err := sec.NewTokenCodec([]byte(cfg.SessionSecret), constants.AuthIssuer)
	must(log, err, "initialize token codec")

	sessions := session.NewStore(codec, registry, cfg.TokenTTL, log)
	resolver := access.NewResolver(gate)
	authenticate := middleware.Authenticate(sessions)

	// ── 5. Mail ───────────────────────────────────────────────────────────
	var mail mailer.Mailer = mailer.NewLogMailer(log)
	if cfg.ZeptoAPIKey != "" {
		mail = mailer.NewZeptoMailer(cfg.ZeptoAPIKey, log)
	}
	branding := mailer.Branding{Brand: auth.Brand, SupportEmail: cfg.MailSupportAddress}

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)

	authService := auth.NewService(userRepository, resetTokens, otps, sessions, resolver, mail, auth.MailSettings{
		Sender:      mailer.Sender{Address: cfg.MailFromAddress, Name: cfg.MailFromName},
		Branding:    branding,
		FrontendURL: cfg.FrontendURL,
	}, log)

	accountService := account.NewService(userRepository, sessions, mail, account.WelcomeSettings{
		Sender:   mailer.Sender{Address: cfg.MailSupportAddress, Name: cfg.MailSupportName},
		Branding: branding,
		LoginURL: strings.TrimRight(cfg.FrontendURL, "/") + "/login",
	}, log)

	notifyService := notify.NewService(mail, branding, log)
	desks := []notify.Desk{
		notify.AdminDesk(mailer.Sender{Address: cfg.MailAdminAddress, Name: cfg.MailAdminName}),
		notify.CustomerCareDesk(mailer.Sender{Address: cfg.MailSupportAddress, Name: cfg.MailSupportName}),
	}

	liveness, readiness := api.NewHealthHandlers(log, healthChecks...)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, authenticate, cfg.IsProduction()),
		Users:     account.NewHandler(accountService, authenticate),
		Emails:    notify.NewHandler(notifyService, authenticate, desks...),
	})

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

func closeRedis(log *slog.Logger, client *redis.Client) {
	log.Info("closing_redis_client")
	if err := client.Close(); err != nil {
		log.Error("redis_close_error", slog.Any("error", err))
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
