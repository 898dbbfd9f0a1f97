// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Session: Cookie naming and lifetime.
  - Discord: Provider endpoints, guild identity and OAuth scope.
  - Markers: Machine-readable status markers carried on /options redirects.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "saddlebag-web"
	AppVersion = "0.1.0-dev"

	// UserAgent is sent on every outbound call to the market-data API.
	UserAgent = AppName + "/" + AppVersion
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 35 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	// Outbound provider calls inherit it through the request context.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Session

const (
	// SessionCookieName is the name of the cookie addressing the session.
	SessionCookieName = "__session"

	// SessionCookiePath scopes the session cookie to the whole site.
	SessionCookiePath = "/"

	// SessionMaxAge is the cookie lifetime. Fields have no TTL of their own.
	SessionMaxAge = 365 * 24 * time.Hour

	// SessionIssuer is the 'iss' claim stamped on signed session tokens.
	SessionIssuer = "saddlebag.web"

	// DefaultRolesRefreshWindow is how old a role snapshot may get before it
	// must be re-verified against the guild.
	DefaultRolesRefreshWindow = 8 * 24 * time.Hour

	// RefreshReloadDelay is how long the paywall waits before the reload
	// fallback after a failed roles refresh.
	RefreshReloadDelay = 1500 * time.Millisecond
)

// # Discord

const (
	// DiscordAuthorizeURL is the user-facing consent page.
	DiscordAuthorizeURL = "https://discord.com/oauth2/authorize"

	// DiscordAPIBaseURL is the REST base used for token, identity and guild calls.
	DiscordAPIBaseURL = "https://discord.com/api/v10"

	// DiscordScope is the fixed OAuth scope requested at login.
	DiscordScope = "identify"

	// DiscordGuildID is the community guild whose roles confer premium.
	DiscordGuildID = "973380473281724476"

	// DiscordCallbackPath is echoed back verbatim as redirect_uri.
	DiscordCallbackPath = "/discord-callback"
)

// # Routes

const (
	// OptionsPath is the landing surface for every Discord flow outcome.
	OptionsPath = "/options"
)

// # Status Markers

const (
	MarkerDiscordConnected      = "discord_connected"
	MarkerDiscordDisconnected   = "discord_disconnected"
	MarkerDiscordRolesRefreshed = "discord_roles_refreshed"
	MarkerPreferencesSaved      = "preferences_saved"
	MarkerDiscordAuthFailed     = "discord_auth_failed"
	MarkerNoAuthCode            = "no_auth_code"
	MarkerDiscordRefreshFailed  = "discord_roles_refresh_failed"
	MarkerPreferencesInvalid    = "preferences_invalid"

	QuerySuccess = "success"
	QueryError   = "error"
)

// # HTTP Headers

const (
	HeaderXRequestID      = "X-Request-ID"
	HeaderXRealIP         = "X-Real-IP"
	HeaderXForwardedFor   = "X-Forwarded-For"
	HeaderXForwardedProto = "X-Forwarded-Proto"
	HeaderXForwardedHost  = "X-Forwarded-Host"
	HeaderOrigin          = "Origin"
	HeaderContentType     = "Content-Type"
	HeaderAccept          = "Accept"
	HeaderSetCookie       = "Set-Cookie"

	MIMEApplicationJSON = "application/json"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldSuccess = "success"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaUsers = "users"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixSession = "session:"
)
