// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Log Events

const (
	eventLoginMisconfigured   = "discord_oauth_not_configured"
	eventCallbackFailed       = "discord_callback_failed"
	eventRolesLookupDegraded  = "discord_roles_lookup_degraded"
	eventRolesRefreshFailed   = "roles_refresh_failed"
	eventRolesRefreshed       = "roles_refreshed"
	eventDiscordLinked        = "discord_linked"
	eventDiscordUnlinked      = "discord_unlinked"
	eventSessionWriteFailed   = "session_write_failed"
	eventLinkLedgerWriteError = "discord_link_ledger_write_failed"
)

// # Query Parameters

const (
	paramCode  = "code"
	paramError = "error"
)
