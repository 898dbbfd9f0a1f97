// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"time"

	"github.com/taibuivan/saddlebag/internal/entitlement"
	"github.com/taibuivan/saddlebag/internal/platform/ctxutil"
	"github.com/taibuivan/saddlebag/internal/session"
)

// # Session Loading

/*
LoadSession resolves the session cookie and derives the entitlement for
every request.

Flow:
 1. Read the snapshot from the store. Invalid cookies read as logged out.
 2. Evaluate it against the premium policy at the current time.
 3. Inject both into the context for handlers and the paywall gate.

The middleware never rejects a request; gating is the paywall's job.
*/
func LoadSession(store session.Store, evaluator *entitlement.Evaluator, now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()

			snapshot := store.Read(ctx, request.Header.Get("Cookie"))
			result := evaluator.Evaluate(snapshot, now())

			ctx = ctxutil.WithSession(ctx, snapshot)
			ctx = ctxutil.WithEntitlement(ctx, result)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
