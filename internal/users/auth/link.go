// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// Link is the ledger's record of a Discord identity that signed in to the site
// and the last role snapshot observed for it.
type Link struct {
	DiscordID   string
	Username    string
	Avatar      string
	Roles       []string
	RefreshedAt *time.Time
	LinkedAt    time.Time
	UnlinkedAt  *time.Time
}
