// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # Link Ledger Access

// LinkRepository defines the data access contract for the Discord link ledger.
//
// The ledger is an audit trail. The session cookie stays the source of truth
// for entitlement, so ledger failures never change a flow's outcome.
type LinkRepository interface {

	/*
		Upsert records a login or role refresh.

		Description: Creates the row on first login. Later calls replace the
		profile fields and roles, and clear any previous unlink.

		Parameters:
		  - context: context.Context
		  - link: Link

		Returns:
		  - error: Persistence failures
	*/
	Upsert(context context.Context, link Link) error

	/*
		MarkUnlinked stamps the time a browser disconnected the identity.

		Parameters:
		  - context: context.Context
		  - discordID: string
		  - at: time.Time

		Returns:
		  - error: Persistence failures
	*/
	MarkUnlinked(context context.Context, discordID string, at time.Time) error
}

// NopLinkRepository is used when no database is configured.
type NopLinkRepository struct{}

// Upsert does nothing.
func (NopLinkRepository) Upsert(context.Context, Link) error { return nil }

// MarkUnlinked does nothing.
func (NopLinkRepository) MarkUnlinked(context.Context, string, time.Time) error { return nil }
