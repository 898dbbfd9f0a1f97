// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/taibuivan/saddlebag/internal/paywall"
	"github.com/taibuivan/saddlebag/internal/platform/constants"
	"github.com/taibuivan/saddlebag/internal/users/account"
)

// Client talks to a saddlebag server with one browser-like cookie jar.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

// NewClient seeds a cookie jar with sessionCookie for server.
func NewClient(server, sessionCookie string, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(server, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("cli: invalid server URL %q", server)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cli: failed to create cookie jar: %w", err)
	}

	if sessionCookie != "" {
		jar.SetCookies(base, []*http.Cookie{{
			Name:  constants.SessionCookieName,
			Value: sessionCookie,
			Path:  constants.SessionCookiePath,
		}})
	}

	return &Client{base: base, http: &http.Client{Jar: jar}, logger: logger}, nil
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

// Entitlement fetches GET /api/v1/entitlement.
func (c *Client) Entitlement(ctx context.Context) (account.EntitlementView, error) {
	var envelope struct {
		Data account.EntitlementView `json:"data"`
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/v1/entitlement"), nil)
	if err != nil {
		return envelope.Data, fmt.Errorf("cli: failed to create entitlement request: %w", err)
	}
	request.Header.Set(constants.HeaderAccept, constants.MIMEApplicationJSON)

	response, err := c.http.Do(request)
	if err != nil {
		return envelope.Data, fmt.Errorf("cli: entitlement request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return envelope.Data, fmt.Errorf("cli: failed to read entitlement response: %w", err)
	}

	if response.StatusCode != http.StatusOK {
		return envelope.Data, fmt.Errorf("cli: entitlement returned status %d", response.StatusCode)
	}

	if err := json.Unmarshal(body, &envelope); err != nil {
		return envelope.Data, fmt.Errorf("cli: failed to parse entitlement: %w", err)
	}

	return envelope.Data, nil
}

// Refresher returns a paywall refresher sharing this client's cookie jar.
func (c *Client) Refresher() *paywall.HTTPRefresher {
	return paywall.NewHTTPRefresher(c.endpoint("/refresh-discord-roles"), c.http)
}

// SessionCookie returns the current __session value, including one rotated
// by a refresh.
func (c *Client) SessionCookie() string {
	for _, cookie := range c.http.Jar.Cookies(c.base) {
		if cookie.Name == constants.SessionCookieName {
			return cookie.Value
		}
	}
	return ""
}
