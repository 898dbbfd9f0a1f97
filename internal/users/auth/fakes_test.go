// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/taibuivan/saddlebag/internal/platform/discord"
	"github.com/taibuivan/saddlebag/internal/users/auth"
)

var errUpstream = errors.New("upstream unavailable")

// fakeProvider is a scripted Discord API.
type fakeProvider struct {
	configured bool
	botToken   bool

	exchangeErr error
	user        *discord.User
	userErr     error
	roles       []string
	rolesErr    error

	mu        sync.Mutex
	calls     []string
	exchanged struct{ code, redirectURI string }
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		configured: true,
		botToken:   true,
		user:       &discord.User{ID: "42", Username: "moogle", Avatar: "hash"},
		roles:      []string{"1210537409949548615"},
	}
}

func (f *fakeProvider) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeProvider) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeProvider) OAuthConfigured() bool { return f.configured }
func (f *fakeProvider) HasBotToken() bool     { return f.botToken }

func (f *fakeProvider) AuthorizeURL(redirectURI string) string {
	return "https://discord.test/authorize?redirect_uri=" + redirectURI
}

func (f *fakeProvider) ExchangeCode(_ context.Context, code, redirectURI string) (*discord.Token, error) {
	f.record("token")
	f.exchanged.code, f.exchanged.redirectURI = code, redirectURI
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &discord.Token{AccessToken: "access"}, nil
}

func (f *fakeProvider) CurrentUser(context.Context, string) (*discord.User, error) {
	f.record("identity")
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.user, nil
}

func (f *fakeProvider) GuildMemberRoles(_ context.Context, _, _ string) ([]string, error) {
	f.record("roles")
	if !f.botToken {
		return nil, discord.ErrBotTokenMissing
	}
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	return f.roles, nil
}

// fakeLinks records ledger writes.
type fakeLinks struct {
	mu       sync.Mutex
	upserts  []auth.Link
	unlinked []string
	err      error
}

func (f *fakeLinks) Upsert(_ context.Context, link auth.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, link)
	return f.err
}

func (f *fakeLinks) MarkUnlinked(_ context.Context, discordID string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlinked = append(f.unlinked, discordID)
	return f.err
}
