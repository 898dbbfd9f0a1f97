// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/taibuivan/saddlebag/internal/entitlement"
	"github.com/taibuivan/saddlebag/internal/platform/constants"
	"github.com/taibuivan/saddlebag/internal/platform/validate"
	"github.com/taibuivan/saddlebag/internal/session"
	"github.com/taibuivan/saddlebag/pkg/slug"
)

// statusMessages is the fixed set of banner texts, keyed by kind then marker.
var statusMessages = map[string]map[string]string{
	constants.QuerySuccess: {
		constants.MarkerDiscordConnected:      "Your Discord account is connected.",
		constants.MarkerDiscordDisconnected:   "Your Discord account has been disconnected.",
		constants.MarkerDiscordRolesRefreshed: "Your Discord roles have been refreshed.",
		constants.MarkerPreferencesSaved:      "Your preferences have been saved.",
	},
	constants.QueryError: {
		constants.MarkerDiscordAuthFailed:    "Discord sign-in failed. Please try again.",
		constants.MarkerNoAuthCode:           "Discord did not return an authorization code. Please try again.",
		constants.MarkerDiscordRefreshFailed: "We could not refresh your Discord roles. Please try again later.",
		constants.MarkerPreferencesInvalid:   "Those preferences could not be saved.",
	},
}

// Field names used in validation errors.
const (
	FieldWorld      = "ffxiv_world"
	FieldDataCenter = "ffxiv_data_center"
	FieldRegion     = "wow_region"
)

// Service implements the options use cases. It is stateless.
type Service struct{}

// NewService constructs a new account [Service].
func NewService() *Service {
	return &Service{}
}

// Options assembles the /options view for snapshot.
func (service *Service) Options(snapshot session.Session, result entitlement.Result, query url.Values) OptionsView {
	return OptionsView{
		Preferences: PreferencesOf(snapshot),
		Discord:     DiscordOf(snapshot),
		Entitlement: result,
		Status:      StatusFrom(query),
	}
}

// Entitlement assembles the loader payload.
func (service *Service) Entitlement(snapshot session.Session, result entitlement.Result) EntitlementView {
	return EntitlementView{Result: result, Discord: DiscordOf(snapshot)}
}

/*
UpdatePreferences validates input and returns the updated snapshot.

Description: Empty fields keep their current value. Data center and region
are canonicalised to their display spelling; the world is trimmed.

Returns:
  - session.Session: Snapshot to persist
  - error: VALIDATION_ERROR with field details
*/
func (service *Service) UpdatePreferences(snapshot session.Session, input Preferences) (session.Session, error) {
	world := strings.TrimSpace(input.World)
	dataCenter := strings.TrimSpace(input.DataCenter)
	region := strings.ToUpper(strings.TrimSpace(input.Region))

	validator := &validate.Validator{}

	if world != "" {
		validator.MinLen(FieldWorld, world, 3).
			MaxLen(FieldWorld, world, 32).
			Custom(FieldWorld, slug.From(world) == "", "Must be a world name")
	}

	canonicalDC, knownDC := dataCenters[slug.From(dataCenter)]
	if dataCenter != "" {
		validator.Custom(FieldDataCenter, !knownDC, "Unknown data center")
	}

	if region != "" {
		validator.OneOf(FieldRegion, region, regions...)
	}

	if err := validator.Err(); err != nil {
		return snapshot, err
	}

	if world != "" {
		snapshot.World = world
	}
	if dataCenter != "" {
		snapshot.DataCenter = canonicalDC
	}
	if region != "" {
		snapshot.Region = region
	}

	return snapshot, nil
}

// PreferencesOf returns the stored selection with defaults filled in.
func PreferencesOf(snapshot session.Session) Preferences {
	preferences := Preferences{World: snapshot.World, DataCenter: snapshot.DataCenter, Region: snapshot.Region}
	if preferences.World == "" {
		preferences.World = DefaultWorld
	}
	if preferences.DataCenter == "" {
		preferences.DataCenter = DefaultDataCenter
	}
	if preferences.Region == "" {
		preferences.Region = DefaultRegion
	}
	return preferences
}

// DiscordOf projects the linked identity for display.
func DiscordOf(snapshot session.Session) DiscordView {
	if !snapshot.LoggedIn() {
		return DiscordView{}
	}

	view := DiscordView{Linked: true, ID: snapshot.DiscordID, Username: snapshot.DiscordUsername}
	if snapshot.DiscordAvatar != "" {
		view.AvatarURL = fmt.Sprintf("%s/avatars/%s/%s.png", discordCDN, url.PathEscape(snapshot.DiscordID), url.PathEscape(snapshot.DiscordAvatar))
	}
	return view
}

// StatusFrom translates the first recognised marker in query. Errors take
// precedence over successes; unknown markers are ignored.
func StatusFrom(query url.Values) *Status {
	for _, kind := range []string{constants.QueryError, constants.QuerySuccess} {
		marker := query.Get(kind)
		if message, ok := statusMessages[kind][marker]; ok {
			return &Status{Kind: kind, Marker: marker, Message: message}
		}
	}
	return nil
}
