// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package paywall_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/saddlebag/internal/entitlement"
	"github.com/taibuivan/saddlebag/internal/paywall"
	"github.com/taibuivan/saddlebag/internal/platform/ctxutil"
)

func serveGated(result entitlement.Result, accept string) *httptest.ResponseRecorder {
	content := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("premium data"))
	})

	request := httptest.NewRequest(http.MethodGet, "/premium", nil)
	if accept != "" {
		request.Header.Set("Accept", accept)
	}
	request = request.WithContext(ctxutil.WithEntitlement(request.Context(), result))

	recorder := httptest.NewRecorder()
	paywall.Gate(content).ServeHTTP(recorder, request)
	return recorder
}

func TestGate_JSON(t *testing.T) {
	tests := []struct {
		name   string
		result entitlement.Result
		status int
		code   string
	}{
		{"logged_out", entitlement.Result{}, http.StatusUnauthorized, "LOGIN_REQUIRED"},
		{"stale", entitlement.Result{IsLoggedIn: true, HasPremium: true, NeedsRefresh: true}, http.StatusConflict, "SESSION_STALE"},
		{"free", entitlement.Result{IsLoggedIn: true}, http.StatusForbidden, "PREMIUM_REQUIRED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := serveGated(tt.result, "application/json")
			assert.Equal(t, tt.status, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.code)
			assert.NotContains(t, recorder.Body.String(), "premium data")
		})
	}
}

func TestGate_HTML(t *testing.T) {
	login := serveGated(entitlement.Result{}, "text/html")
	assert.Equal(t, http.StatusUnauthorized, login.Code)
	assert.Contains(t, login.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, login.Body.String(), `href="/discord-login"`)

	refreshing := serveGated(entitlement.Result{IsLoggedIn: true, NeedsRefresh: true}, "text/html")
	assert.Equal(t, http.StatusConflict, refreshing.Code)
	assert.Contains(t, refreshing.Body.String(), "saddlebagRefresh(null)")
	assert.Contains(t, refreshing.Body.String(), "refresh-discord-roles")
	assert.Contains(t, refreshing.Body.String(), "1500")

	subscribe := serveGated(entitlement.Result{IsLoggedIn: true}, "")
	assert.Equal(t, http.StatusForbidden, subscribe.Code)
	assert.Contains(t, subscribe.Body.String(), "Refresh Discord roles")
	assert.NotContains(t, subscribe.Body.String(), "saddlebagRefresh(null)")
}

func TestGate_Content(t *testing.T) {
	recorder := serveGated(entitlement.Result{IsLoggedIn: true, HasPremium: true}, "application/json")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "premium data", recorder.Body.String())
}
