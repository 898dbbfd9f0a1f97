// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the saddlebag web server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Build the session store (signed cookie, or Redis when configured).
//  4. Connect to PostgreSQL and run migrations when DATABASE_URL is set.
//  5. Wire the Discord, entitlement and market components.
//  6. Start HTTP server with graceful shutdown.
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
	"syscall"
	"time"

	"github.com/taibuivan/saddlebag/internal/api"
	"github.com/taibuivan/saddlebag/internal/entitlement"
	"github.com/taibuivan/saddlebag/internal/market"
	"github.com/taibuivan/saddlebag/internal/platform/config"
	"github.com/taibuivan/saddlebag/internal/platform/constants"
	"github.com/taibuivan/saddlebag/internal/platform/discord"
	"github.com/taibuivan/saddlebag/internal/platform/migration"
	pgstore "github.com/taibuivan/saddlebag/internal/platform/postgres"
	redisstore "github.com/taibuivan/saddlebag/internal/platform/redis"
	"github.com/taibuivan/saddlebag/internal/platform/sec"
	"github.com/taibuivan/saddlebag/internal/session"
	"github.com/taibuivan/saddlebag/internal/users/account"
	"github.com/taibuivan/saddlebag/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("session_backend", cfg.SessionBackend),
		slog.Bool("ledger_enabled", cfg.DatabaseURL != ""),
	)

	// Login and refresh report the misconfiguration per request; say it once here too.
	if !cfg.DiscordOAuthConfigured() {
		log.Error("discord_oauth_not_configured",
			slog.String("hint", "set DISCORD_CLIENT_ID and DISCORD_CLIENT_SECRET"))
	}
	if cfg.DiscordBotToken == "" {
		log.Warn("discord_bot_token_missing",
			slog.String("effect", "logins proceed with empty roles; refresh always fails"))
	}

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Server context bounds background goroutines (rate limiter cleanup).
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	// ── 3. Session Store ──────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.SessionSecrets, constants.SessionIssuer)
	must(log, err, "initialize session signing")

	cookieOptions := session.CookieOptions{Secure: !cfg.IsDevelopment()}
	health := api.HealthDependencies{}

	var sessions session.Store
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		sessions = session.NewRedisStore(rdb, tokens, cookieOptions, log)
		health.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	default:
		sessions = session.NewCookieStore(tokens, cookieOptions, log)
	}

	// ── 4. Link Ledger (optional) ─────────────────────────────────────────
	var links auth.LinkRepository = auth.NopLinkRepository{}
	if cfg.DatabaseURL != "" {
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		links = auth.NewLinkRepository(pool)
		health.CheckDatabase = func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		}
	}

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	discordClient := discord.NewClient(discord.Config{
		APIBaseURL:   cfg.DiscordAPIURL,
		AuthorizeURL: constants.DiscordAuthorizeURL,
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		BotToken:     cfg.DiscordBotToken,
	}, &http.Client{})

	authService := auth.NewService(discordClient, links, auth.Options{
		GuildID:          constants.DiscordGuildID,
		StrictRoleLookup: cfg.DiscordRolesLookupStrict,
	})

	evaluator := entitlement.NewEvaluator(cfg.PremiumRoleIDs, cfg.RolesRefreshWindow)
	marketClient := market.NewClient(cfg.MarketAPIURL, &http.Client{}, log)

	liveness, readiness := api.NewHealthHandlers(health, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, sessions),
		Account:   account.NewHandler(account.NewService(), sessions),
		Market:    market.NewHandler(marketClient),
	}

	// ── 6. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(serverCtx, cfg, log, api.Dependencies{
		Sessions:  sessions,
		Evaluator: evaluator,
	}, handlers)

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
