// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the Discord identity flows of the site.

It links a browser session to a Discord account through the OAuth2 code
grant, keeps the cached guild roles current, and unlinks on request.

Architecture:

  - Service: Orchestrates the provider calls and session transitions.
  - Provider: The Discord REST client, abstracted for tests.
  - LinkRepository: Best-effort Postgres audit ledger of linked identities.

The service never writes cookies. It returns the next [session.Session] and
the HTTP layer persists it in a single write, so a failed flow leaves the
browser's session untouched.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/saddlebag/internal/platform/ctxutil"
	"github.com/taibuivan/saddlebag/internal/platform/discord"
	"github.com/taibuivan/saddlebag/internal/session"
)

var (
	// ErrNotConfigured means the OAuth application credentials are missing.
	ErrNotConfigured = errors.New("auth: discord oauth client id/secret not configured")

	// ErrNotLinked is returned when a refresh is requested without a Discord identity.
	ErrNotLinked = errors.New("auth: session has no discord identity")
)

// # Contracts & Types

// Provider is the subset of the Discord API the flows depend on.
type Provider interface {
	OAuthConfigured() bool
	HasBotToken() bool
	AuthorizeURL(redirectURI string) string
	ExchangeCode(ctx context.Context, code, redirectURI string) (*discord.Token, error)
	CurrentUser(ctx context.Context, accessToken string) (*discord.User, error)
	GuildMemberRoles(ctx context.Context, guildID, userID string) ([]string, error)
}

// Options tunes the role lookup policy.
type Options struct {

	// GuildID is the guild whose roles are fetched.
	GuildID string

	// StrictRoleLookup fails the login when the role lookup fails instead of
	// continuing with an empty role list.
	StrictRoleLookup bool

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Service implements the Discord link, refresh and unlink use cases.
type Service struct {
	provider Provider
	links    LinkRepository
	options  Options
}

// NewService constructs a new [Service]. links may be nil when no ledger is configured.
func NewService(provider Provider, links LinkRepository, options Options) *Service {
	if links == nil {
		links = NopLinkRepository{}
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	return &Service{provider: provider, links: links, options: options}
}

// # Login Flow

/*
AuthorizeURL returns the Discord consent URL for redirectURI.

Returns:
  - string: Absolute consent-page URL
  - error: ErrNotConfigured when client credentials are missing
*/
func (service *Service) AuthorizeURL(redirectURI string) (string, error) {
	if !service.provider.OAuthConfigured() {
		return "", ErrNotConfigured
	}
	return service.provider.AuthorizeURL(redirectURI), nil
}

/*
Complete finishes the OAuth callback and returns the linked session.

Description: Calls are sequential (token, identity, roles) and never
retried. The role lookup is best-effort unless StrictRoleLookup is set: on
failure the session is linked with an empty role list stamped now, which
reads as a fresh snapshot without premium.

Parameters:
  - ctx: context.Context
  - current: session.Session (preferences are preserved)
  - code: string (authorization code)
  - redirectURI: string (must match the one sent to the consent page)

Returns:
  - session.Session: The snapshot to persist
  - error: ErrNotConfigured, or any provider failure
*/
func (service *Service) Complete(ctx context.Context, current session.Session, code, redirectURI string) (session.Session, error) {
	if !service.provider.OAuthConfigured() {
		return current, ErrNotConfigured
	}

	token, err := service.provider.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		return current, fmt.Errorf("auth_token_exchange_failed: %w", err)
	}

	user, err := service.provider.CurrentUser(ctx, token.AccessToken)
	if err != nil {
		return current, fmt.Errorf("auth_identity_fetch_failed: %w", err)
	}

	identity := session.Identity{ID: user.ID, Username: user.Username, Avatar: user.Avatar}

	roles, err := service.provider.GuildMemberRoles(ctx, service.options.GuildID, user.ID)
	if err != nil {
		if service.options.StrictRoleLookup {
			return current, fmt.Errorf("auth_roles_lookup_failed: %w", err)
		}

		ctxutil.GetLogger(ctx).WarnContext(ctx, eventRolesLookupDegraded,
			slog.String("discord_id", user.ID),
			slog.Any("error", err),
		)

		// An empty role list still counts as a completed lookup: no premium, not stale.
		linked := current.Link(identity, []string{}, service.options.Now())
		service.recordLink(ctx, linked)
		return linked, nil
	}

	linked := current.Link(identity, roles, service.options.Now())
	service.recordLink(ctx, linked)
	return linked, nil
}

// # Roles Refresh

/*
Refresh re-fetches the guild roles for the linked identity.

Description: On success the role list is replaced wholesale and the refresh
time stamped. On any failure current is returned unchanged. Concurrent
refreshes are not coordinated; the last session write wins.

Returns:
  - session.Session: The snapshot to persist
  - error: ErrNotLinked, discord.ErrBotTokenMissing or provider failures
*/
func (service *Service) Refresh(ctx context.Context, current session.Session) (session.Session, error) {
	if !current.LoggedIn() {
		return current, ErrNotLinked
	}

	if !service.provider.HasBotToken() {
		return current, discord.ErrBotTokenMissing
	}

	roles, err := service.provider.GuildMemberRoles(ctx, service.options.GuildID, current.DiscordID)
	if err != nil {
		return current, fmt.Errorf("auth_roles_refresh_failed: %w", err)
	}

	refreshed := current.ReplaceRoles(roles, service.options.Now())
	service.recordLink(ctx, refreshed)
	return refreshed, nil
}

// # Disconnect

// Disconnect drops the Discord identity and keeps the visitor's preferences.
func (service *Service) Disconnect(ctx context.Context, current session.Session) session.Session {
	if current.LoggedIn() {
		if err := service.links.MarkUnlinked(ctx, current.DiscordID, service.options.Now()); err != nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, eventLinkLedgerWriteError, slog.Any("error", err))
		}
	}
	return current.Unlink()
}

// recordLink mirrors the snapshot into the ledger. Failures are only logged.
func (service *Service) recordLink(ctx context.Context, snapshot session.Session) {
	link := Link{
		DiscordID: snapshot.DiscordID,
		Username:  snapshot.DiscordUsername,
		Avatar:    snapshot.DiscordAvatar,
		Roles:     snapshot.DiscordRoles,
		LinkedAt:  service.options.Now(),
	}
	if !snapshot.RolesRefreshedAt.IsZero() {
		refreshedAt := snapshot.RolesRefreshedAt
		link.RefreshedAt = &refreshedAt
	}

	if err := service.links.Upsert(ctx, link); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, eventLinkLedgerWriteError,
			slog.String("discord_id", snapshot.DiscordID),
			slog.Any("error", err),
		)
	}
}
