// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package market

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/saddlebag/internal/platform/apperr"
	requestutil "github.com/taibuivan/saddlebag/internal/platform/request"
	"github.com/taibuivan/saddlebag/internal/platform/respond"
	"github.com/taibuivan/saddlebag/internal/platform/validate"
)

// Poster is the subset of [Client] the handler needs.
type Poster interface {
	PostJSON(ctx context.Context, path string, body any) (json.RawMessage, error)
}

// Handler serves the premium market proxies. Mount it behind the paywall gate.
type Handler struct {
	client Poster
}

// NewHandler constructs a new market [Handler].
func NewHandler(client Poster) *Handler {
	return &Handler{client: client}
}

// Routes returns the premium routes.
//
// # Endpoints
//   - POST /weekly-deltas : Weekly price-group deltas.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/weekly-deltas", handler.weeklyDeltas)

	return router
}

/*
POST /api/v1/premium/weekly-deltas.

Response:
  - 200: Upstream payload in the data envelope
  - 400: VALIDATION_ERROR
  - 502: BAD_GATEWAY when the market API fails
  - 503: SERVICE_UNAVAILABLE while the circuit is open
*/
func (handler *Handler) weeklyDeltas(writer http.ResponseWriter, request *http.Request) {
	var input WeeklyDeltasRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := input.Validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload, err := handler.client.PostJSON(request.Context(), WeeklyDeltasPath, input)
	if err != nil {
		respond.Error(writer, request, upstreamError(err))
		return
	}

	respond.OK(writer, payload)
}

func upstreamError(err error) error {
	if errors.Is(err, ErrUnavailable) {
		return apperr.ServiceUnavailable("Market data is temporarily unavailable")
	}
	return apperr.BadGateway("Market data API", err)
}
