// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/saddlebag/internal/entitlement"
	"github.com/taibuivan/saddlebag/internal/market"
	"github.com/taibuivan/saddlebag/internal/paywall"
	"github.com/taibuivan/saddlebag/internal/platform/config"
	"github.com/taibuivan/saddlebag/internal/platform/constants"
	"github.com/taibuivan/saddlebag/internal/platform/middleware"
	"github.com/taibuivan/saddlebag/internal/session"
	"github.com/taibuivan/saddlebag/internal/users/account"
	"github.com/taibuivan/saddlebag/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. Always 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. 200 when every configured dependency answers.
	Readiness http.HandlerFunc

	// Auth handles the Discord login, callback, disconnect and roles refresh.
	Auth *auth.Handler

	// Account serves /options and the entitlement loader.
	Account *account.Handler

	// Market serves the premium market-data views.
	Market *market.Handler
}

// Dependencies carries what the middleware chain needs to resolve a session.
type Dependencies struct {
	Sessions  session.Store
	Evaluator *entitlement.Evaluator

	// Now is the clock used for staleness. Defaults to time.Now.
	Now func() time.Time
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, deps Dependencies, h Handlers) *Server {
	router := newRouter(context, cfg, log, deps, h)

	return &Server{
		router: router,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

func newRouter(context context.Context, cfg *config.Config, log *slog.Logger, deps Dependencies, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution. The session is loaded
	// before the logger so request logs carry the discord_id.
	r.Use(middleware.RequestID())
	r.Use(middleware.LoadSession(deps.Sessions, deps.Evaluator, deps.Now))
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Site Routes
	// Redirect-driven flows that land on /options.
	r.Mount(constants.OptionsPath, h.Account.Routes())
	r.Mount("/", h.Auth.Routes())

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/", h.Account.APIRoutes())

		// Premium views sit behind the paywall gate.
		api.Route("/premium", func(premium chi.Router) {
			premium.Use(paywall.Gate)
			premium.Mount("/", h.Market.Routes())
		})
	})

	return r
}

// # Server Lifecycle

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
