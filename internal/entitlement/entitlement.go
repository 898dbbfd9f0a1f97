// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package entitlement derives what a visitor may see from their session.

The evaluator is pure: it performs no I/O and never fails. It answers three
questions per request:

  - Is a Discord identity linked?
  - Does the cached role list intersect the premium allow-list?
  - Is the role snapshot too old to trust without re-verification?
*/
package entitlement

import (
	"time"

	"github.com/taibuivan/saddlebag/internal/platform/constants"
	"github.com/taibuivan/saddlebag/internal/session"
)

// Result is the per-request entitlement. It is never persisted.
// The zero value is the logged-out answer.
type Result struct {
	IsLoggedIn   bool `json:"is_logged_in"`
	HasPremium   bool `json:"has_premium"`
	NeedsRefresh bool `json:"needs_refresh"`
}

// Evaluator applies an injected premium policy.
type Evaluator struct {
	premium map[string]struct{}
	window  time.Duration
}

// NewEvaluator builds an evaluator. A non-positive window falls back to the
// default refresh window.
func NewEvaluator(premiumRoles []string, window time.Duration) *Evaluator {
	if window <= 0 {
		window = constants.DefaultRolesRefreshWindow
	}

	premium := make(map[string]struct{}, len(premiumRoles))
	for _, role := range premiumRoles {
		if role != "" {
			premium[role] = struct{}{}
		}
	}

	return &Evaluator{premium: premium, window: window}
}

// Window returns the configured staleness window.
func (e *Evaluator) Window() time.Duration {
	return e.window
}

// HasPremium reports whether any role is on the allow-list. Nil (unknown or
// unparseable roles) is never premium.
func (e *Evaluator) HasPremium(roles []string) bool {
	for _, role := range roles {
		if _, ok := e.premium[role]; ok {
			return true
		}
	}
	return false
}

// NeedsRefresh reports whether a snapshot taken at refreshedAt is stale.
// A zero time means never refreshed. The boundary itself is still fresh.
func (e *Evaluator) NeedsRefresh(refreshedAt, now time.Time) bool {
	if refreshedAt.IsZero() {
		return true
	}
	return now.Sub(refreshedAt) > e.window
}

// NeedsRefreshRaw is [Evaluator.NeedsRefresh] over the wire encoding.
// Anything that does not parse as epoch milliseconds is stale.
func (e *Evaluator) NeedsRefreshRaw(raw string, now time.Time) bool {
	refreshedAt, ok := session.ParseMillis(raw)
	if !ok {
		return true
	}
	return e.NeedsRefresh(refreshedAt, now)
}

// Evaluate derives the full result. Roles and timestamp are ignored for a
// logged-out session.
func (e *Evaluator) Evaluate(snapshot session.Session, now time.Time) Result {
	if !snapshot.LoggedIn() {
		return Result{}
	}

	return Result{
		IsLoggedIn:   true,
		HasPremium:   e.HasPremium(snapshot.DiscordRoles),
		NeedsRefresh: e.NeedsRefresh(snapshot.RolesRefreshedAt, now),
	}
}
