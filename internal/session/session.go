// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session holds the per-browser state: the linked Discord identity, its
last verified guild roles, and the visitor's world and region preferences.

Storage Model:

  - The browser only ever holds the '__session' cookie.
  - [CookieStore] signs the whole session into that cookie.
  - [RedisStore] keeps the body server-side and signs only its id.

Wire Format:

The persisted form keeps string encodings ('discord_roles_refreshed_at' is an
epoch-millisecond string, 'discord_roles' a JSON array). Parsing happens here,
at the boundary, so the rest of the service only sees a typed [Session].
*/
package session

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Store reads and writes sessions addressed by the session cookie.
type Store interface {

	/*
		Read resolves the session addressed by a raw Cookie header.

		Description: Never fails. A missing, unsigned, tampered or expired
		cookie yields an empty (logged-out) snapshot.

		Parameters:
		  - ctx: context.Context
		  - cookieHeader: string (the request's Cookie header verbatim)

		Returns:
		  - Session: Snapshot, possibly empty
	*/
	Read(ctx context.Context, cookieHeader string) Session

	/*
		Write persists the full snapshot and returns the Set-Cookie value.

		Description: Writing the same snapshot twice yields the same persisted
		state. On error nothing has been changed from the caller's view.

		Parameters:
		  - ctx: context.Context
		  - snapshot: Session

		Returns:
		  - string: Set-Cookie header value
		  - error: Signing or storage failures
	*/
	Write(ctx context.Context, snapshot Session) (string, error)
}

// # Domain Model

// Session is the typed view of one browser's state.
type Session struct {

	// ID names the server-side record. Only [RedisStore] assigns it.
	ID string

	// Discord identity. DiscordID is empty until OAuth completes.
	DiscordID       string
	DiscordUsername string
	DiscordAvatar   string

	// DiscordRoles is the last fetched role list. Nil means unknown or
	// unparseable; an empty non-nil slice is a valid "no roles" answer.
	DiscordRoles []string

	// RolesRefreshedAt is the time of the last successful role fetch.
	// The zero value means never refreshed.
	RolesRefreshedAt time.Time

	// Preferences
	World      string
	DataCenter string
	Region     string
}

// Identity is the Discord account captured at login.
type Identity struct {
	ID       string
	Username string
	Avatar   string
}

// LoggedIn reports whether a Discord identity is linked.
func (s Session) LoggedIn() bool {
	return s.DiscordID != ""
}

// Link records a freshly authenticated identity together with the roles
// fetched in the same flow.
func (s Session) Link(identity Identity, roles []string, now time.Time) Session {
	s.DiscordID = identity.ID
	s.DiscordUsername = identity.Username
	s.DiscordAvatar = identity.Avatar
	return s.ReplaceRoles(roles, now)
}

// ReplaceRoles swaps the whole role list and stamps the fetch time.
// Roles are never merged with the previous snapshot.
func (s Session) ReplaceRoles(roles []string, now time.Time) Session {
	if roles == nil {
		roles = []string{}
	}
	s.DiscordRoles = append([]string{}, roles...)
	s.RolesRefreshedAt = now.Truncate(time.Millisecond)
	return s
}

// Unlink drops every Discord field and keeps the preferences.
func (s Session) Unlink() Session {
	s.DiscordID = ""
	s.DiscordUsername = ""
	s.DiscordAvatar = ""
	s.DiscordRoles = nil
	s.RolesRefreshedAt = time.Time{}
	return s
}

// # Wire Codec

// record is the persisted form of a [Session].
type record struct {
	DiscordID        string          `json:"discord_id,omitempty"`
	DiscordUsername  string          `json:"discord_username,omitempty"`
	DiscordAvatar    string          `json:"discord_avatar,omitempty"`
	DiscordRoles     json.RawMessage `json:"discord_roles,omitempty"`
	RolesRefreshedAt string          `json:"discord_roles_refreshed_at,omitempty"`
	World            string          `json:"ffxiv_world,omitempty"`
	DataCenter       string          `json:"ffxiv_data_center,omitempty"`
	Region           string          `json:"wow_region,omitempty"`
}

// encode renders the wire form. Field order is fixed so identical sessions
// encode to identical bytes.
func encode(s Session) ([]byte, error) {
	rec := record{
		DiscordID:       s.DiscordID,
		DiscordUsername: s.DiscordUsername,
		DiscordAvatar:   s.DiscordAvatar,
		World:           s.World,
		DataCenter:      s.DataCenter,
		Region:          s.Region,
	}

	if s.DiscordRoles != nil {
		roles, err := json.Marshal(s.DiscordRoles)
		if err != nil {
			return nil, err
		}
		rec.DiscordRoles = roles
	}

	if !s.RolesRefreshedAt.IsZero() {
		rec.RolesRefreshedAt = FormatMillis(s.RolesRefreshedAt)
	}

	return json.Marshal(rec)
}

// decode parses the wire form. Garbled fields degrade to their absent value
// instead of failing the whole session.
func decode(payload []byte) Session {
	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Session{}
	}

	snapshot := Session{
		DiscordID:       rec.DiscordID,
		DiscordUsername: rec.DiscordUsername,
		DiscordAvatar:   rec.DiscordAvatar,
		DiscordRoles:    decodeRoles(rec.DiscordRoles),
		World:           rec.World,
		DataCenter:      rec.DataCenter,
		Region:          rec.Region,
	}

	if refreshedAt, ok := ParseMillis(rec.RolesRefreshedAt); ok {
		snapshot.RolesRefreshedAt = refreshedAt
	}

	return snapshot
}

// decodeRoles accepts only a JSON array. Non-string entries are skipped.
func decodeRoles(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil
	}

	roles := make([]string, 0, len(items))
	for _, item := range items {
		var role string
		if err := json.Unmarshal(item, &role); err == nil {
			roles = append(roles, role)
		}
	}

	return roles
}

// FormatMillis encodes t as a base-10 epoch-millisecond string.
func FormatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// ParseMillis decodes an epoch-millisecond string. The boolean is false for
// empty or non-numeric input.
func ParseMillis(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	return time.UnixMilli(millis).UTC(), true
}
