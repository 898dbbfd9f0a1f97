// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package market is the client for the remote market-data API and the premium
proxy endpoints built on it.

Every call carries the fixed 'saddlebag-web/<version>' User-Agent and runs
through a circuit breaker, so a struggling upstream is shed quickly instead
of holding request goroutines until the global request timeout.
*/
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/taibuivan/saddlebag/internal/platform/constants"
)

const breakerName = "market-api"

// maxErrorBody caps how much of an upstream error body is kept.
const maxErrorBody = 512

// ErrUnavailable is returned while the circuit is open.
var ErrUnavailable = errors.New("market: upstream temporarily unavailable")

// StatusError reports a non-2xx upstream answer.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("market: %s returned status %d: %s", e.Path, e.Status, e.Body)
}

// Client posts JSON to the market API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[json.RawMessage]
	logger     *slog.Logger
}

// NewClient creates a client for baseURL. httpClient may be nil.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	breaker := gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Rejected input is the caller's fault, not an upstream outage.
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.Status < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit_breaker_state_change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		breaker:    breaker,
		logger:     logger,
	}
}

/*
PostJSON sends body to path and returns the raw JSON answer.

Returns:
  - json.RawMessage: Upstream body, validated as JSON
  - error: ErrUnavailable while the circuit is open, *StatusError, or transport failures
*/
func (c *Client) PostJSON(ctx context.Context, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("market: failed to encode request: %w", err)
	}

	result, err := c.breaker.Execute(func() (json.RawMessage, error) {
		return c.post(ctx, path, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return result, err
}

func (c *Client) post(ctx context.Context, path string, payload []byte) (json.RawMessage, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("market: failed to create request: %w", err)
	}
	request.Header.Set(constants.HeaderContentType, constants.MIMEApplicationJSON)
	request.Header.Set(constants.HeaderAccept, constants.MIMEApplicationJSON)
	request.Header.Set("User-Agent", constants.UserAgent)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("market: %s request failed: %w", path, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("market: failed to read %s response: %w", path, err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{Path: path, Status: response.StatusCode, Body: string(body)}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("market: %s returned invalid JSON", path)
	}

	return json.RawMessage(body), nil
}
