// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles the visitor-facing settings surface at /options.

It lets a visitor pick the FFXIV world and data center and the WoW region
used by the market pages, shows the linked Discord account, and turns the
status markers left by the Discord flows into a human-readable banner.

# Architecture

  - Entities: Preferences, DiscordView, Status, OptionsView (DTOs).
  - Storage: Preferences live in the session cookie; there is no database row.
  - Loader: GET /api/v1/entitlement exposes the per-request entitlement.
*/
package account

import (
	"github.com/taibuivan/saddlebag/internal/entitlement"
)

// # Defaults

const (
	DefaultWorld      = "Adamantoise"
	DefaultDataCenter = "Aether"
	DefaultRegion     = "NA"

	// discordCDN hosts user avatars.
	discordCDN = "https://cdn.discordapp.com"
)

// dataCenters maps the normalized key of every FFXIV data center to its display name.
var dataCenters = map[string]string{
	"aether":    "Aether",
	"crystal":   "Crystal",
	"dynamis":   "Dynamis",
	"primal":    "Primal",
	"chaos":     "Chaos",
	"light":     "Light",
	"elemental": "Elemental",
	"gaia":      "Gaia",
	"mana":      "Mana",
	"meteor":    "Meteor",
	"materia":   "Materia",
}

// regions lists the WoW regions the market API serves.
var regions = []string{"NA", "EU"}

// # Domain Entities

// Preferences is the visitor's market selection.
type Preferences struct {
	World      string `json:"ffxiv_world"`
	DataCenter string `json:"ffxiv_data_center"`
	Region     string `json:"wow_region"`
}

// DiscordView is the linked account as shown on /options.
type DiscordView struct {
	Linked    bool   `json:"linked"`
	ID        string `json:"id,omitempty"`
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Status is the banner derived from a redirect marker.
type Status struct {
	Kind    string `json:"kind"`
	Marker  string `json:"marker"`
	Message string `json:"message"`
}

// OptionsView is the GET /options payload.
type OptionsView struct {
	Preferences Preferences        `json:"preferences"`
	Discord     DiscordView        `json:"discord"`
	Entitlement entitlement.Result `json:"entitlement"`
	Status      *Status            `json:"status,omitempty"`
}

// EntitlementView is the loader payload consumed by gated pages.
type EntitlementView struct {
	entitlement.Result
	Discord DiscordView `json:"discord"`
}
