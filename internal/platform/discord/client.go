// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package discord is a minimal REST client for the Discord endpoints the site
relies on: the OAuth2 code exchange, the current-user lookup and the guild
member lookup performed with the bot token.

Calls are sequential, carry the caller's context for cancellation and are
never retried. A failed call returns an error; deciding whether that failure
is fatal belongs to the caller.
*/
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/taibuivan/saddlebag/internal/platform/constants"
)

// ErrBotTokenMissing is returned by guild lookups when no bot token is configured.
var ErrBotTokenMissing = errors.New("discord: bot token not configured")

// maxErrorBody caps how much of an error response is kept for logging.
const maxErrorBody = 512

// # Wire Types

// Token is the subset of the OAuth2 token response the site uses.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	ExpiresIn   int    `json:"expires_in"`
}

// User is the '/users/@me' identity.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Avatar     string `json:"avatar"`
}

type guildMember struct {
	Roles []string `json:"roles"`
}

// StatusError reports a non-success HTTP status from Discord.
type StatusError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("discord: %s returned status %d: %s", e.Endpoint, e.Status, e.Body)
}

// # Client

// Config carries the credentials and endpoints of a [Client].
type Config struct {
	APIBaseURL   string
	AuthorizeURL string
	ClientID     string
	ClientSecret string
	BotToken     string
}

// Client talks to the Discord REST API.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a client. httpClient may be nil; no client-level timeout
// is applied so calls share the request's deadline.
func NewClient(config Config, httpClient *http.Client) *Client {
	if config.APIBaseURL == "" {
		config.APIBaseURL = constants.DiscordAPIBaseURL
	}
	if config.AuthorizeURL == "" {
		config.AuthorizeURL = constants.DiscordAuthorizeURL
	}
	config.APIBaseURL = strings.TrimSuffix(config.APIBaseURL, "/")

	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{config: config, httpClient: httpClient}
}

// OAuthConfigured reports whether the application credentials are present.
func (c *Client) OAuthConfigured() bool {
	return c.config.ClientID != "" && c.config.ClientSecret != ""
}

// HasBotToken reports whether guild lookups are possible.
func (c *Client) HasBotToken() bool {
	return c.config.BotToken != ""
}

// AuthorizeURL builds the consent-page URL for redirectURI.
func (c *Client) AuthorizeURL(redirectURI string) string {
	params := url.Values{
		"client_id":     {c.config.ClientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"scope":         {constants.DiscordScope},
	}

	return c.config.AuthorizeURL + "?" + params.Encode()
}

// ExchangeCode trades an authorization code for an access token. redirectURI
// must equal the one sent to the consent page.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	data := url.Values{
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {redirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIBaseURL+"/oauth2/token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("discord: failed to create token request: %w", err)
	}
	req.Header.Set(constants.HeaderContentType, "application/x-www-form-urlencoded")

	var token Token
	if err := c.do(req, "token", &token); err != nil {
		return nil, err
	}

	if token.AccessToken == "" {
		return nil, errors.New("discord: token response carried no access_token")
	}

	return &token, nil
}

// CurrentUser resolves the identity behind a user access token.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.APIBaseURL+"/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("discord: failed to create identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var user User
	if err := c.do(req, "users/@me", &user); err != nil {
		return nil, err
	}

	if user.ID == "" {
		return nil, errors.New("discord: identity response carried no id")
	}

	return &user, nil
}

/*
GuildMemberRoles returns the role ids userID holds in guildID.

Description: Uses the bot token. A 404 means the user is not a member and is
reported as an empty role list, not an error.

Returns:
  - []string: Role ids, never nil on success
  - error: ErrBotTokenMissing, *StatusError or transport failures
*/
func (c *Client) GuildMemberRoles(ctx context.Context, guildID, userID string) ([]string, error) {
	if !c.HasBotToken() {
		return nil, ErrBotTokenMissing
	}

	endpoint := fmt.Sprintf("%s/guilds/%s/members/%s", c.config.APIBaseURL, url.PathEscape(guildID), url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("discord: failed to create guild member request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.config.BotToken)

	var member guildMember
	err = c.do(req, "guild member", &member)

	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	if member.Roles == nil {
		return []string{}, nil
	}
	return member.Roles, nil
}

// do executes req and decodes a 200 JSON body into out.
func (c *Client) do(req *http.Request, endpoint string, out any) error {
	req.Header.Set(constants.HeaderAccept, constants.MIMEApplicationJSON)
	req.Header.Set("User-Agent", constants.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord: %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("discord: failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &StatusError{Endpoint: endpoint, Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("discord: failed to parse %s response: %w", endpoint, err)
	}

	return nil
}
