package schema

// UserDiscordLinkTable represents the 'users.discord_link' table
type UserDiscordLinkTable struct {
	Table       string
	DiscordID   string
	Username    string
	Avatar      string
	Roles       string
	RefreshedAt string
	LinkedAt    string
	UnlinkedAt  string
}

// UserDiscordLink is the schema definition for users.discord_link
var UserDiscordLink = UserDiscordLinkTable{
	Table:       "users.discord_link",
	DiscordID:   "discordid",
	Username:    "username",
	Avatar:      "avatar",
	Roles:       "roles",
	RefreshedAt: "refreshedat",
	LinkedAt:    "linkedat",
	UnlinkedAt:  "unlinkedat",
}

// Columns returns all standard column names
func (t UserDiscordLinkTable) Columns() []string {
	return []string{
		t.DiscordID, t.Username, t.Avatar, t.Roles, t.RefreshedAt, t.LinkedAt, t.UnlinkedAt,
	}
}
