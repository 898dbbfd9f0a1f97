// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"net/http"

	"github.com/taibuivan/saddlebag/internal/platform/constants"
)

// CookieOptions controls the attributes of the issued session cookie.
type CookieOptions struct {

	// Secure marks the cookie HTTPS-only. Disabled for local development.
	Secure bool
}

// cookieValue extracts the session cookie from a raw Cookie header.
func cookieValue(cookieHeader string) string {
	if cookieHeader == "" {
		return ""
	}

	request := http.Request{Header: http.Header{"Cookie": {cookieHeader}}}
	cookie, err := request.Cookie(constants.SessionCookieName)
	if err != nil {
		return ""
	}

	return cookie.Value
}

// setCookie renders the Set-Cookie header for value.
func (o CookieOptions) setCookie(value string) string {
	cookie := &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    value,
		Path:     constants.SessionCookiePath,
		MaxAge:   int(constants.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return cookie.String()
}
