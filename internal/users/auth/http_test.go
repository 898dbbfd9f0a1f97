// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/saddlebag/internal/platform/constants"
	"github.com/taibuivan/saddlebag/internal/platform/ctxutil"
	"github.com/taibuivan/saddlebag/internal/platform/sec"
	"github.com/taibuivan/saddlebag/internal/session"
	"github.com/taibuivan/saddlebag/internal/users/auth"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// harness serves the auth routes behind a minimal session loader.
type harness struct {
	t        *testing.T
	store    session.Store
	provider *fakeProvider
	server   http.Handler
}

func newHarness(t *testing.T, provider *fakeProvider, store session.Store) *harness {
	t.Helper()
	if store == nil {
		tokens, err := sec.NewTokenService([]string{"test-secret"}, constants.SessionIssuer)
		require.NoError(t, err)
		store = session.NewCookieStore(tokens, session.CookieOptions{}, quietLogger)
	}

	handler := auth.NewHandler(newService(provider, nil, false), store)
	routes := handler.Routes()

	server := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snapshot := store.Read(r.Context(), r.Header.Get("Cookie"))
		ctx := ctxutil.WithLogger(ctxutil.WithSession(r.Context(), snapshot), quietLogger)
		routes.ServeHTTP(w, r.WithContext(ctx))
	})

	return &harness{t: t, store: store, provider: provider, server: server}
}

// cookieFor writes snapshot and returns the Cookie header a browser would send back.
func (h *harness) cookieFor(snapshot session.Session) string {
	h.t.Helper()
	setCookie, err := h.store.Write(context.Background(), snapshot)
	require.NoError(h.t, err)
	return toCookieHeader(h.t, setCookie)
}

func (h *harness) do(method, target, cookie string, headers map[string]string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, nil)
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}
	for key, value := range headers {
		request.Header.Set(key, value)
	}
	recorder := httptest.NewRecorder()
	h.server.ServeHTTP(recorder, request)
	return recorder
}

// sessionAfter reads the session the response's Set-Cookie would establish.
func (h *harness) sessionAfter(recorder *httptest.ResponseRecorder) session.Session {
	h.t.Helper()
	setCookie := recorder.Header().Get("Set-Cookie")
	require.NotEmpty(h.t, setCookie)
	return h.store.Read(context.Background(), toCookieHeader(h.t, setCookie))
}

func toCookieHeader(t *testing.T, setCookie string) string {
	t.Helper()
	cookie, err := http.ParseSetCookie(setCookie)
	require.NoError(t, err)
	return cookie.Name + "=" + cookie.Value
}

func assertMarker(t *testing.T, recorder *httptest.ResponseRecorder, kind, marker string) {
	t.Helper()
	require.Equal(t, http.StatusFound, recorder.Code)
	location, err := url.Parse(recorder.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/options", location.Path)
	assert.Equal(t, marker, location.Query().Get(kind))
}

func TestHandler_Login(t *testing.T) {
	h := newHarness(t, newFakeProvider(), nil)

	recorder := h.do(http.MethodGet, "http://internal/discord-login", "", map[string]string{
		"X-Forwarded-Proto": "https",
		"X-Forwarded-Host":  "saddlebag.example",
	})

	require.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t,
		"https://discord.test/authorize?redirect_uri=https://saddlebag.example/discord-callback",
		recorder.Header().Get("Location"))
}

func TestHandler_Login_NotConfigured(t *testing.T) {
	provider := newFakeProvider()
	provider.configured = false
	h := newHarness(t, provider, nil)

	recorder := h.do(http.MethodGet, "/discord-login", "", nil)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}

func TestHandler_Callback(t *testing.T) {
	tests := []struct {
		name   string
		target string
		setup  func(*fakeProvider)
		kind   string
		marker string
		writes bool
		calls  int
	}{
		{"provider_error", "/discord-callback?error=access_denied&code=x", nil, "error", "discord_auth_failed", false, 0},
		{"no_code", "/discord-callback", nil, "error", "no_auth_code", false, 0},
		{"token_failure", "/discord-callback?code=x", func(p *fakeProvider) { p.exchangeErr = errUpstream }, "error", "discord_auth_failed", false, 1},
		{"identity_failure", "/discord-callback?code=x", func(p *fakeProvider) { p.userErr = errUpstream }, "error", "discord_auth_failed", false, 2},
		{"roles_degraded", "/discord-callback?code=x", func(p *fakeProvider) { p.rolesErr = errUpstream }, "success", "discord_connected", true, 3},
		{"success", "/discord-callback?code=x", nil, "success", "discord_connected", true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newFakeProvider()
			if tt.setup != nil {
				tt.setup(provider)
			}
			h := newHarness(t, provider, nil)

			recorder := h.do(http.MethodGet, tt.target, h.cookieFor(session.Session{World: "Gilgamesh"}), nil)

			assertMarker(t, recorder, tt.kind, tt.marker)
			assert.Len(t, provider.Calls(), tt.calls)

			if !tt.writes {
				assert.Empty(t, recorder.Header().Get("Set-Cookie"))
				return
			}

			got := h.sessionAfter(recorder)
			assert.Equal(t, "42", got.DiscordID)
			assert.Equal(t, "Gilgamesh", got.World)
		})
	}
}

func TestHandler_Callback_NotConfigured(t *testing.T) {
	provider := newFakeProvider()
	provider.configured = false
	h := newHarness(t, provider, nil)

	recorder := h.do(http.MethodGet, "/discord-callback?code=x", "", nil)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Empty(t, provider.Calls())
}

func TestHandler_Disconnect(t *testing.T) {
	h := newHarness(t, newFakeProvider(), nil)
	cookie := h.cookieFor(session.Session{DiscordID: "42", DiscordRoles: []string{"r"}, Region: "EU"})

	recorder := h.do(http.MethodPost, "/discord-disconnect", cookie, nil)
	assertMarker(t, recorder, "success", "discord_disconnected")

	got := h.sessionAfter(recorder)
	assert.False(t, got.LoggedIn())
	assert.Equal(t, "EU", got.Region)
}

func TestHandler_RefreshRoles(t *testing.T) {
	linked := session.Session{DiscordID: "42", DiscordRoles: []string{"stale"}}

	t.Run("logged_out", func(t *testing.T) {
		provider := newFakeProvider()
		h := newHarness(t, provider, nil)
		recorder := h.do(http.MethodPost, "/refresh-discord-roles", "", nil)
		assertMarker(t, recorder, "error", "discord_roles_refresh_failed")
		assert.Empty(t, provider.Calls())
	})

	t.Run("no_bot_token", func(t *testing.T) {
		provider := newFakeProvider()
		provider.botToken = false
		h := newHarness(t, provider, nil)
		recorder := h.do(http.MethodPost, "/refresh-discord-roles", h.cookieFor(linked), nil)
		assertMarker(t, recorder, "error", "discord_roles_refresh_failed")
		assert.Empty(t, provider.Calls())
	})

	t.Run("provider_failure", func(t *testing.T) {
		provider := newFakeProvider()
		provider.rolesErr = errUpstream
		h := newHarness(t, provider, nil)
		recorder := h.do(http.MethodPost, "/refresh-discord-roles", h.cookieFor(linked), map[string]string{"Content-Type": "application/json"})
		assertMarker(t, recorder, "error", "discord_roles_refresh_failed")
		assert.Empty(t, recorder.Header().Get("Set-Cookie"))
	})

	t.Run("form_post", func(t *testing.T) {
		h := newHarness(t, newFakeProvider(), nil)
		recorder := h.do(http.MethodPost, "/refresh-discord-roles", h.cookieFor(linked), nil)
		assertMarker(t, recorder, "success", "discord_roles_refreshed")
		assert.Equal(t, []string{"1210537409949548615"}, h.sessionAfter(recorder).DiscordRoles)
	})

	t.Run("json_caller", func(t *testing.T) {
		h := newHarness(t, newFakeProvider(), nil)
		recorder := h.do(http.MethodPost, "/refresh-discord-roles", h.cookieFor(linked), map[string]string{"Content-Type": "application/json"})

		require.Equal(t, http.StatusOK, recorder.Code)
		var body map[string]bool
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.True(t, body["success"])

		got := h.sessionAfter(recorder)
		assert.Equal(t, []string{"1210537409949548615"}, got.DiscordRoles)
		assert.False(t, got.RolesRefreshedAt.IsZero())
	})
}

// failingStore rejects every write.
type failingStore struct{ session.Store }

func (failingStore) Write(context.Context, session.Session) (string, error) {
	return "", errors.New("store down")
}

func TestHandler_RefreshRoles_WriteFailure(t *testing.T) {
	tokens, err := sec.NewTokenService([]string{"test-secret"}, constants.SessionIssuer)
	require.NoError(t, err)
	cookies := session.NewCookieStore(tokens, session.CookieOptions{}, quietLogger)

	setCookie, err := cookies.Write(context.Background(), session.Session{DiscordID: "42"})
	require.NoError(t, err)

	h := newHarness(t, newFakeProvider(), failingStore{Store: cookies})
	recorder := h.do(http.MethodPost, "/refresh-discord-roles", toCookieHeader(t, setCookie), nil)

	assertMarker(t, recorder, "error", "discord_roles_refresh_failed")
	assert.False(t, strings.Contains(recorder.Header().Get("Set-Cookie"), constants.SessionCookieName))
}
