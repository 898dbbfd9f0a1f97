// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/saddlebag/internal/platform/apperr"
	"github.com/taibuivan/saddlebag/internal/platform/constants"
	"github.com/taibuivan/saddlebag/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/saddlebag/internal/platform/request"
	"github.com/taibuivan/saddlebag/internal/platform/respond"
	"github.com/taibuivan/saddlebag/internal/session"
)

// # Definitions & Constructors

// Handler implements the Discord link endpoints.
//
// # Outcomes
//
// Every user-recoverable outcome lands on /options with a success or error
// marker. Only deployment errors (missing OAuth credentials) answer with the
// JSON error envelope.
type Handler struct {
	authService *Service
	sessions    session.Store
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, sessions session.Store) *Handler {
	return &Handler{authService: service, sessions: sessions}
}

// Routes returns a [chi.Router] with the Discord flow routes, mounted at the site root.
//
// # Endpoints
//   - GET  /discord-login         : Redirects to the Discord consent page.
//   - GET  /discord-callback      : Completes the code grant.
//   - POST /discord-disconnect    : Unlinks the identity.
//   - POST /refresh-discord-roles : Re-verifies guild roles.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/discord-login", handler.login)
	router.Get(constants.DiscordCallbackPath, handler.callback)
	router.Post("/discord-disconnect", handler.disconnect)
	router.Post("/refresh-discord-roles", handler.refreshRoles)

	return router
}

/*
Login starts the OAuth flow.

GET /discord-login

Response:
  - 302: Discord consent page
  - 500: INTERNAL_ERROR when client credentials are missing
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	location, err := handler.authService.AuthorizeURL(redirectURI(request))
	if err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), eventLoginMisconfigured)
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	respond.Redirect(writer, request, location)
}

/*
Callback completes the OAuth flow.

GET /discord-callback

Description: Provider-reported errors and missing codes never touch the
session. A completed flow writes identity and roles in one cookie write.

Response:
  - 302: /options?success=discord_connected
  - 302: /options?error=discord_auth_failed | no_auth_code
  - 500: INTERNAL_ERROR when client credentials are missing
*/
func (handler *Handler) callback(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	logger := ctxutil.GetLogger(ctx)
	query := request.URL.Query()

	if query.Get(paramError) != "" {
		logger.InfoContext(ctx, eventCallbackFailed, slog.String("provider_error", query.Get(paramError)))
		failure(writer, request, constants.MarkerDiscordAuthFailed)
		return
	}

	code := query.Get(paramCode)
	if code == "" {
		failure(writer, request, constants.MarkerNoAuthCode)
		return
	}

	linked, err := handler.authService.Complete(ctx, requestutil.Session(request), code, redirectURI(request))
	if errors.Is(err, ErrNotConfigured) {
		logger.ErrorContext(ctx, eventLoginMisconfigured)
		respond.Error(writer, request, apperr.Internal(err))
		return
	}
	if err != nil {
		logger.WarnContext(ctx, eventCallbackFailed, slog.Any("error", err))
		failure(writer, request, constants.MarkerDiscordAuthFailed)
		return
	}

	if !handler.persist(writer, request, linked) {
		failure(writer, request, constants.MarkerDiscordAuthFailed)
		return
	}

	logger.InfoContext(ctx, eventDiscordLinked,
		slog.String("discord_id", linked.DiscordID),
		slog.Int("roles", len(linked.DiscordRoles)),
	)
	success(writer, request, constants.MarkerDiscordConnected)
}

/*
Disconnect unlinks the Discord identity.

POST /discord-disconnect

Response:
  - 302: /options?success=discord_disconnected
*/
func (handler *Handler) disconnect(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	current := requestutil.Session(request)

	unlinked := handler.authService.Disconnect(ctx, current)
	if !handler.persist(writer, request, unlinked) {
		respond.Error(writer, request, apperr.ServiceUnavailable("Session storage is unavailable"))
		return
	}

	if current.LoggedIn() {
		ctxutil.GetLogger(ctx).InfoContext(ctx, eventDiscordUnlinked, slog.String("discord_id", current.DiscordID))
	}
	success(writer, request, constants.MarkerDiscordDisconnected)
}

/*
RefreshRoles re-verifies the guild roles of the linked identity.

POST /refresh-discord-roles

Description: fetch() callers sending JSON receive {"success":true}; form
posts are redirected. Every failure redirects with the refresh-failed marker
and leaves the session untouched.

Response:
  - 200: {"success":true} with Set-Cookie (JSON callers)
  - 302: /options?success=discord_roles_refreshed with Set-Cookie
  - 302: /options?error=discord_roles_refresh_failed
*/
func (handler *Handler) refreshRoles(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	logger := ctxutil.GetLogger(ctx)

	refreshed, err := handler.authService.Refresh(ctx, requestutil.Session(request))
	if err != nil {
		logger.WarnContext(ctx, eventRolesRefreshFailed, slog.Any("error", err))
		failure(writer, request, constants.MarkerDiscordRefreshFailed)
		return
	}

	if !handler.persist(writer, request, refreshed) {
		failure(writer, request, constants.MarkerDiscordRefreshFailed)
		return
	}

	logger.InfoContext(ctx, eventRolesRefreshed,
		slog.String("discord_id", refreshed.DiscordID),
		slog.Int("roles", len(refreshed.DiscordRoles)),
	)

	if requestutil.SendsJSON(request) {
		respond.Success(writer)
		return
	}
	success(writer, request, constants.MarkerDiscordRolesRefreshed)
}

// # Helpers

// persist writes the snapshot and stages its Set-Cookie header. It reports
// false (after logging) when the store rejected the write.
func (handler *Handler) persist(writer http.ResponseWriter, request *http.Request, snapshot session.Session) bool {
	setCookie, err := handler.sessions.Write(request.Context(), snapshot)
	if err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), eventSessionWriteFailed, slog.Any("error", err))
		return false
	}

	writer.Header().Add(constants.HeaderSetCookie, setCookie)
	return true
}

// redirectURI is the callback URL as the browser sees this site.
func redirectURI(request *http.Request) string {
	return requestutil.BaseURL(request) + constants.DiscordCallbackPath
}

func success(writer http.ResponseWriter, request *http.Request, marker string) {
	respond.Marker(writer, request, constants.OptionsPath, constants.QuerySuccess, marker)
}

func failure(writer http.ResponseWriter, request *http.Request, marker string) {
	respond.Marker(writer, request, constants.OptionsPath, constants.QueryError, marker)
}
