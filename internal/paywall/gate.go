// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package paywall

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/taibuivan/saddlebag/internal/platform/apperr"
	"github.com/taibuivan/saddlebag/internal/platform/constants"
	"github.com/taibuivan/saddlebag/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/saddlebag/internal/platform/request"
	"github.com/taibuivan/saddlebag/internal/platform/respond"
)

// pageData feeds the gate templates.
type pageData struct {
	LoginPath     string
	RefreshPath   string
	ReloadDelayMS int64
}

var pages = template.Must(template.New("gate").Parse(`
{{define "head"}}<!doctype html><html lang="en"><head><meta charset="utf-8"><title>Saddlebag Exchange</title></head><body>{{end}}
{{define "foot"}}</body></html>{{end}}

{{define "login"}}{{template "head" .}}
<main class="paywall paywall-login">
  <h1>Premium content</h1>
  <p>Log in with Discord to check your supporter roles.</p>
  <a class="button" href="{{.LoginPath}}">Log in with Discord</a>
</main>
{{template "foot" .}}{{end}}

{{define "refresh-script"}}
<script>
(function () {
  var inFlight = false;
  window.saddlebagRefresh = function (button) {
    if (inFlight) { return; }
    inFlight = true;
    if (button) { button.disabled = true; }
    fetch({{.RefreshPath}}, {
      method: "POST",
      credentials: "same-origin",
      redirect: "manual",
      headers: {"Content-Type": "application/json"},
      body: "{}"
    }).then(function (response) {
      if (!response.ok) { throw new Error("refresh failed"); }
      return response.json();
    }).then(function (body) {
      if (!body || body.success !== true) { throw new Error("refresh failed"); }
      window.location.reload();
    }).catch(function () {
      setTimeout(function () { window.location.reload(); }, {{.ReloadDelayMS}});
    });
  };
})();
</script>
{{end}}

{{define "refreshing"}}{{template "head" .}}
<main class="paywall paywall-refreshing" aria-busy="true">
  <h1>Checking your Discord roles</h1>
  <p>This only takes a moment.</p>
</main>
{{template "refresh-script" .}}
<script>window.saddlebagRefresh(null);</script>
{{template "foot" .}}{{end}}

{{define "subscribe"}}{{template "head" .}}
<main class="paywall paywall-subscribe">
  <h1>Supporters only</h1>
  <p>This view is available to Saddlebag Exchange supporters on Discord.</p>
  <p>Already subscribed? Refresh your roles.</p>
  <button type="button" onclick="window.saddlebagRefresh(this)">Refresh Discord roles</button>
</main>
{{template "refresh-script" .}}
{{template "foot" .}}{{end}}
`))

var gateErrors = map[State]*apperr.AppError{
	StateLogin:      apperr.LoginRequired(),
	StateRefreshing: apperr.SessionStale(),
	StateSubscribe:  apperr.PremiumRequired(),
}

/*
Gate enforces [Decide] on a route using the entitlement loaded by the session
middleware.

Description: JSON callers receive the error envelope (LOGIN_REQUIRED 401,
SESSION_STALE 409, PREMIUM_REQUIRED 403). Browsers receive the matching
gate page with the same status.
*/
func Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		state := Decide(ctxutil.GetEntitlement(request.Context()))
		if state == StateContent {
			next.ServeHTTP(writer, request)
			return
		}

		appErr := gateErrors[state]
		if requestutil.AcceptsJSON(request) {
			respond.Error(writer, request, appErr)
			return
		}

		renderPage(writer, request, state, appErr.HTTPStatus)
	})
}

func renderPage(writer http.ResponseWriter, request *http.Request, state State, status int) {
	data := pageData{
		LoginPath:     "/discord-login",
		RefreshPath:   "/refresh-discord-roles",
		ReloadDelayMS: constants.RefreshReloadDelay.Milliseconds(),
	}

	var body bytes.Buffer
	if err := pages.ExecuteTemplate(&body, state.String(), data); err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "paywall_render_failed",
			slog.String("state", state.String()),
			slog.Any("error", err),
		)
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	writer.Header().Set(constants.HeaderContentType, "text/html; charset=utf-8")
	writer.Header().Set("Cache-Control", "no-store")
	writer.WriteHeader(status)
	_, _ = body.WriteTo(writer)
}
