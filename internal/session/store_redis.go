// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/saddlebag/internal/platform/constants"
	"github.com/taibuivan/saddlebag/internal/platform/sec"
)

// RedisStore keeps session bodies in Redis and only a signed id in the cookie.
type RedisStore struct {
	client  *redis.Client
	tokens  *sec.TokenService
	options CookieOptions
	logger  *slog.Logger
}

// NewRedisStore creates a server-side [Store].
func NewRedisStore(client *redis.Client, tokens *sec.TokenService, options CookieOptions, logger *slog.Logger) *RedisStore {
	return &RedisStore{client: client, tokens: tokens, options: options, logger: logger}
}

func sessionKey(id string) string {
	return constants.RedisPrefixSession + id
}

/*
Read resolves the signed id and loads the body.

Description: Redis outages degrade to an empty snapshot and are logged; the
visitor is treated as logged out rather than served an error.
*/
func (store *RedisStore) Read(ctx context.Context, cookieHeader string) Session {
	value := cookieValue(cookieHeader)
	if value == "" {
		return Session{}
	}

	claims, err := store.tokens.Verify(value)
	if err != nil || claims.Subject == "" {
		return Session{}
	}

	payload, err := store.client.Get(ctx, sessionKey(claims.Subject)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			store.logger.WarnContext(ctx, "session_redis_read_failed", slog.Any("error", err))
		}
		return Session{}
	}

	snapshot := decode(payload)
	snapshot.ID = claims.Subject
	return snapshot
}

// Write stores the body under the session id, assigning one if needed.
func (store *RedisStore) Write(ctx context.Context, snapshot Session) (string, error) {
	id := snapshot.ID
	if id == "" {
		generated, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("session: id generation failed: %w", err)
		}
		id = generated.String()
	}

	payload, err := encode(snapshot)
	if err != nil {
		return "", fmt.Errorf("session: encode failed: %w", err)
	}

	token, err := store.tokens.Sign(sec.SessionClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: id}})
	if err != nil {
		return "", err
	}

	if err := store.client.Set(ctx, sessionKey(id), payload, constants.SessionMaxAge).Err(); err != nil {
		return "", fmt.Errorf("redis_session_set_failed: %w", err)
	}

	return store.options.setCookie(token), nil
}
