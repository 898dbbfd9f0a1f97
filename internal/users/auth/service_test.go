// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/saddlebag/internal/entitlement"
	"github.com/taibuivan/saddlebag/internal/paywall"
	"github.com/taibuivan/saddlebag/internal/platform/constants"
	"github.com/taibuivan/saddlebag/internal/platform/discord"
	"github.com/taibuivan/saddlebag/internal/session"
	"github.com/taibuivan/saddlebag/internal/users/auth"
)

var fixedNow = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

func newService(provider *fakeProvider, links auth.LinkRepository, strict bool) *auth.Service {
	return auth.NewService(provider, links, auth.Options{
		GuildID:          "973380473281724476",
		StrictRoleLookup: strict,
		Now:              func() time.Time { return fixedNow },
	})
}

/*
TestService_Complete_Success verifies a full login links identity and roles in one snapshot.
*/
func TestService_Complete_Success(t *testing.T) {
	provider := newFakeProvider()
	links := &fakeLinks{}
	service := newService(provider, links, false)

	current := session.Session{World: "Gilgamesh"}
	linked, err := service.Complete(context.Background(), current, "code-1", "https://site/discord-callback")
	require.NoError(t, err)

	assert.Equal(t, []string{"token", "identity", "roles"}, provider.Calls())
	assert.Equal(t, "code-1", provider.exchanged.code)
	assert.Equal(t, "https://site/discord-callback", provider.exchanged.redirectURI)

	assert.Equal(t, "42", linked.DiscordID)
	assert.Equal(t, "moogle", linked.DiscordUsername)
	assert.Equal(t, "hash", linked.DiscordAvatar)
	assert.Equal(t, []string{"1210537409949548615"}, linked.DiscordRoles)
	assert.Equal(t, fixedNow, linked.RolesRefreshedAt)
	assert.Equal(t, "Gilgamesh", linked.World)

	require.Len(t, links.upserts, 1)
	assert.Equal(t, "42", links.upserts[0].DiscordID)
	require.NotNil(t, links.upserts[0].RefreshedAt)
}

/*
TestService_Complete_Failures ensures token and identity failures abort without mutation.
*/
func TestService_Complete_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeProvider)
		calls []string
	}{
		{"token", func(p *fakeProvider) { p.exchangeErr = errUpstream }, []string{"token"}},
		{"identity", func(p *fakeProvider) { p.userErr = errUpstream }, []string{"token", "identity"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newFakeProvider()
			tt.setup(provider)
			service := newService(provider, nil, false)

			current := session.Session{World: "Gilgamesh"}
			got, err := service.Complete(context.Background(), current, "code", "https://site/discord-callback")

			assert.Error(t, err)
			assert.Equal(t, current, got)
			assert.Equal(t, tt.calls, provider.Calls())
		})
	}
}

/*
TestService_Complete_RoleLookupDegrades checks a failed role lookup never blocks login
and lands on the subscribe prompt instead of another refresh attempt.
*/
func TestService_Complete_RoleLookupDegrades(t *testing.T) {
	for name, setup := range map[string]func(*fakeProvider){
		"lookup_error": func(p *fakeProvider) { p.rolesErr = errUpstream },
		"no_bot_token": func(p *fakeProvider) { p.botToken = false },
	} {
		t.Run(name, func(t *testing.T) {
			provider := newFakeProvider()
			setup(provider)
			service := newService(provider, nil, false)

			linked, err := service.Complete(context.Background(), session.Session{}, "code", "https://site/discord-callback")
			require.NoError(t, err)

			assert.True(t, linked.LoggedIn())
			assert.NotNil(t, linked.DiscordRoles)
			assert.Empty(t, linked.DiscordRoles)
			assert.Equal(t, fixedNow, linked.RolesRefreshedAt)

			result := entitlement.NewEvaluator([]string{"1211135583286509638"}, constants.DefaultRolesRefreshWindow).Evaluate(linked, fixedNow)
			assert.Equal(t, entitlement.Result{IsLoggedIn: true}, result)
			assert.Equal(t, paywall.StateSubscribe, paywall.Decide(result))
		})
	}
}

/*
TestService_Complete_StrictRoleLookup verifies the strict policy fails the login instead.
*/
func TestService_Complete_StrictRoleLookup(t *testing.T) {
	provider := newFakeProvider()
	provider.rolesErr = errUpstream
	service := newService(provider, nil, true)

	current := session.Session{}
	got, err := service.Complete(context.Background(), current, "code", "https://site/discord-callback")
	assert.ErrorIs(t, err, errUpstream)
	assert.Equal(t, current, got)
}

/*
TestService_Complete_NotConfigured ensures no network call happens without credentials.
*/
func TestService_Complete_NotConfigured(t *testing.T) {
	provider := newFakeProvider()
	provider.configured = false
	service := newService(provider, nil, false)

	_, err := service.Complete(context.Background(), session.Session{}, "code", "x")
	assert.ErrorIs(t, err, auth.ErrNotConfigured)
	assert.Empty(t, provider.Calls())

	_, err = service.AuthorizeURL("x")
	assert.ErrorIs(t, err, auth.ErrNotConfigured)
}

/*
TestService_Refresh covers the refresh preconditions and the wholesale replace.
*/
func TestService_Refresh(t *testing.T) {
	stale := session.Session{
		DiscordID:        "42",
		DiscordRoles:     []string{"old-role", "1210537409949548615"},
		RolesRefreshedAt: fixedNow.Add(-30 * 24 * time.Hour),
	}

	t.Run("not_linked", func(t *testing.T) {
		provider := newFakeProvider()
		_, err := newService(provider, nil, false).Refresh(context.Background(), session.Session{})
		assert.ErrorIs(t, err, auth.ErrNotLinked)
		assert.Empty(t, provider.Calls())
	})

	t.Run("no_bot_token", func(t *testing.T) {
		provider := newFakeProvider()
		provider.botToken = false
		got, err := newService(provider, nil, false).Refresh(context.Background(), stale)
		assert.ErrorIs(t, err, discord.ErrBotTokenMissing)
		assert.Equal(t, stale, got)
		assert.Empty(t, provider.Calls())
	})

	t.Run("provider_error", func(t *testing.T) {
		provider := newFakeProvider()
		provider.rolesErr = errUpstream
		got, err := newService(provider, nil, false).Refresh(context.Background(), stale)
		assert.ErrorIs(t, err, errUpstream)
		assert.Equal(t, stale, got)
	})

	t.Run("replaces_roles", func(t *testing.T) {
		provider := newFakeProvider()
		provider.roles = []string{"new-role"}
		got, err := newService(provider, nil, false).Refresh(context.Background(), stale)
		require.NoError(t, err)
		assert.Equal(t, []string{"new-role"}, got.DiscordRoles)
		assert.Equal(t, fixedNow, got.RolesRefreshedAt)
	})

	t.Run("idempotent", func(t *testing.T) {
		provider := newFakeProvider()
		service := newService(provider, nil, false)
		first, err := service.Refresh(context.Background(), stale)
		require.NoError(t, err)
		second, err := service.Refresh(context.Background(), first)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

/*
TestService_Disconnect verifies identity is dropped, preferences kept and the ledger told.
*/
func TestService_Disconnect(t *testing.T) {
	links := &fakeLinks{err: errUpstream}
	service := newService(newFakeProvider(), links, false)

	got := service.Disconnect(context.Background(), session.Session{DiscordID: "42", DiscordRoles: []string{"r"}, Region: "EU"})
	assert.False(t, got.LoggedIn())
	assert.Nil(t, got.DiscordRoles)
	assert.Equal(t, "EU", got.Region)
	assert.Equal(t, []string{"42"}, links.unlinked)

	// Logged-out disconnects do not touch the ledger.
	service.Disconnect(context.Background(), session.Session{})
	assert.Len(t, links.unlinked, 1)
}
