// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/saddlebag/internal/entitlement"
	"github.com/taibuivan/saddlebag/internal/platform/ctxkey"
	"github.com/taibuivan/saddlebag/internal/session"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// # Session & Entitlement

// WithSession returns a new context carrying the request's session snapshot.
func WithSession(ctx context.Context, snapshot session.Session) context.Context {
	return context.WithValue(ctx, ctxkey.KeySession, snapshot)
}

// GetSession retrieves the session snapshot. A request that never passed the
// session middleware reads as an empty (logged-out) session.
func GetSession(ctx context.Context) session.Session {
	snapshot, _ := ctx.Value(ctxkey.KeySession).(session.Session)
	return snapshot
}

// WithEntitlement returns a new context carrying the derived entitlement.
func WithEntitlement(ctx context.Context, result entitlement.Result) context.Context {
	return context.WithValue(ctx, ctxkey.KeyEntitlement, result)
}

// GetEntitlement retrieves the entitlement computed for this request.
// The zero value is the logged-out result, so a missing entry fails closed.
func GetEntitlement(ctx context.Context) entitlement.Result {
	result, _ := ctx.Value(ctxkey.KeyEntitlement).(entitlement.Result)
	return result
}
