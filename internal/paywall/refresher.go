// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package paywall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/taibuivan/saddlebag/internal/platform/constants"
)

// HTTPRefresher calls POST /refresh-discord-roles the way the gate page does.
//
// It sends a JSON content type so the endpoint answers with a body instead of
// a redirect, and never follows redirects: a redirect means failure.
type HTTPRefresher struct {
	endpoint string
	client   *http.Client
}

// NewHTTPRefresher wraps client. The client's cookie jar carries the session.
func NewHTTPRefresher(endpoint string, client *http.Client) *HTTPRefresher {
	if client == nil {
		client = &http.Client{}
	}

	noRedirect := *client
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &HTTPRefresher{endpoint: endpoint, client: &noRedirect}
}

// Refresh performs one call. Anything other than 200 {"success":true} fails.
func (r *HTTPRefresher) Refresh(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader([]byte("{}")))
	if err != nil {
		return fmt.Errorf("paywall: failed to create refresh request: %w", err)
	}
	request.Header.Set(constants.HeaderContentType, constants.MIMEApplicationJSON)
	request.Header.Set(constants.HeaderAccept, constants.MIMEApplicationJSON)

	response, err := r.client.Do(request)
	if err != nil {
		return fmt.Errorf("paywall: refresh request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("paywall: failed to read refresh response: %w", err)
	}

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("paywall: refresh returned status %d (%s)", response.StatusCode, response.Header.Get("Location"))
	}

	var ack struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &ack); err != nil || !ack.Success {
		return errors.New("paywall: refresh was not acknowledged")
	}

	return nil
}
