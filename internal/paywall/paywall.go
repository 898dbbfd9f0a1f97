// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package paywall decides what a gated view shows for a given entitlement.

Decision Table (first match wins):

  - not logged in           → [StateLogin]
  - role snapshot is stale  → [StateRefreshing]
  - no premium role         → [StateSubscribe]
  - otherwise               → [StateContent]

Staleness outranks premium: a stale premium visitor is refreshed before
being shown content, and a stale non-premium visitor is refreshed before
being asked to subscribe.

The package also provides the [Gate] middleware that enforces the table on
HTTP routes, and the [Controller] that drives the role refresh of a gated view.
*/
package paywall

import "github.com/taibuivan/saddlebag/internal/entitlement"

// State is the view a gated surface renders.
type State int

const (
	StateLogin State = iota
	StateRefreshing
	StateSubscribe
	StateContent
)

// String returns the machine name of the state.
func (s State) String() string {
	switch s {
	case StateLogin:
		return "login"
	case StateRefreshing:
		return "refreshing"
	case StateSubscribe:
		return "subscribe"
	case StateContent:
		return "content"
	default:
		return "unknown"
	}
}

// Decide applies the decision table. It is pure.
func Decide(result entitlement.Result) State {
	switch {
	case !result.IsLoggedIn:
		return StateLogin
	case result.NeedsRefresh:
		return StateRefreshing
	case !result.HasPremium:
		return StateSubscribe
	default:
		return StateContent
	}
}
