// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/saddlebag/internal/platform/apperr"
	"github.com/taibuivan/saddlebag/internal/platform/constants"
	"github.com/taibuivan/saddlebag/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/saddlebag/internal/platform/request"
	"github.com/taibuivan/saddlebag/internal/platform/respond"
	"github.com/taibuivan/saddlebag/internal/platform/validate"
	"github.com/taibuivan/saddlebag/internal/session"
)

// Handler implements the HTTP layer for the options surface.
type Handler struct {
	accountService *Service
	sessions       session.Store
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service, sessions session.Store) *Handler {
	return &Handler{accountService: service, sessions: sessions}
}

// Routes returns the routes mounted at /options.
//
// # Endpoints
//   - GET  /options : Preferences, Discord link and status banner.
//   - POST /options : Saves preferences.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.getOptions)
	router.Post("/", handler.updateOptions)

	return router
}

// APIRoutes returns the routes mounted under /api/v1.
//
// # Endpoints
//   - GET /entitlement : The entitlement loader.
func (handler *Handler) APIRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/entitlement", handler.getEntitlement)

	return router
}

/*
GET /options.

Response:
  - 200: OptionsView
*/
func (handler *Handler) getOptions(writer http.ResponseWriter, request *http.Request) {
	view := handler.accountService.Options(
		requestutil.Session(request),
		ctxutil.GetEntitlement(request.Context()),
		request.URL.Query(),
	)
	respond.OK(writer, view)
}

/*
POST /options.

Description: Accepts JSON from fetch() callers and form posts from plain
browsers. Form posts are answered with a redirect marker.

Response:
  - 200: {"success":true} (JSON callers)
  - 302: /options?success=preferences_saved
  - 302: /options?error=preferences_invalid (form callers)
  - 400: VALIDATION_ERROR (JSON callers)
*/
func (handler *Handler) updateOptions(writer http.ResponseWriter, request *http.Request) {
	asJSON := requestutil.SendsJSON(request)

	var input Preferences
	if asJSON {
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, validate.ErrInvalidJSON)
			return
		}
	} else {
		if err := request.ParseForm(); err != nil {
			respond.Marker(writer, request, constants.OptionsPath, constants.QueryError, constants.MarkerPreferencesInvalid)
			return
		}
		input = Preferences{
			World:      request.PostForm.Get(FieldWorld),
			DataCenter: request.PostForm.Get(FieldDataCenter),
			Region:     request.PostForm.Get(FieldRegion),
		}
	}

	updated, err := handler.accountService.UpdatePreferences(requestutil.Session(request), input)
	if err != nil {
		if asJSON {
			respond.Error(writer, request, err)
			return
		}
		respond.Marker(writer, request, constants.OptionsPath, constants.QueryError, constants.MarkerPreferencesInvalid)
		return
	}

	setCookie, err := handler.sessions.Write(request.Context(), updated)
	if err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "session_write_failed", slog.Any("error", err))
		respond.Error(writer, request, apperr.ServiceUnavailable("Session storage is unavailable"))
		return
	}
	writer.Header().Add(constants.HeaderSetCookie, setCookie)

	if asJSON {
		respond.Success(writer)
		return
	}
	respond.Marker(writer, request, constants.OptionsPath, constants.QuerySuccess, constants.MarkerPreferencesSaved)
}

/*
GET /api/v1/entitlement.

Description: The loader consumed by gated pages: login state, premium and
staleness, plus the display identity.

Response:
  - 200: EntitlementView
*/
func (handler *Handler) getEntitlement(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.accountService.Entitlement(
		requestutil.Session(request),
		ctxutil.GetEntitlement(request.Context()),
	))
}
