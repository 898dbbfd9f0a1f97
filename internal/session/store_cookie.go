// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/saddlebag/internal/platform/sec"
)

// CookieStore keeps the whole session inside a signed cookie.
type CookieStore struct {
	tokens  *sec.TokenService
	options CookieOptions
	logger  *slog.Logger
}

// NewCookieStore creates a stateless [Store].
func NewCookieStore(tokens *sec.TokenService, options CookieOptions, logger *slog.Logger) *CookieStore {
	return &CookieStore{tokens: tokens, options: options, logger: logger}
}

// Read verifies the cookie and decodes its payload.
func (store *CookieStore) Read(ctx context.Context, cookieHeader string) Session {
	value := cookieValue(cookieHeader)
	if value == "" {
		return Session{}
	}

	claims, err := store.tokens.Verify(value)
	if err != nil {
		store.logger.DebugContext(ctx, "session_cookie_rejected", slog.Any("error", err))
		return Session{}
	}

	return decode(claims.Payload)
}

// Write signs the encoded session into a fresh cookie value.
func (store *CookieStore) Write(_ context.Context, snapshot Session) (string, error) {
	payload, err := encode(snapshot)
	if err != nil {
		return "", fmt.Errorf("session: encode failed: %w", err)
	}

	token, err := store.tokens.Sign(sec.SessionClaims{Payload: payload})
	if err != nil {
		return "", err
	}

	return store.options.setCookie(token), nil
}
