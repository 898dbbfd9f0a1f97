// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package market

import (
	"time"

	"github.com/taibuivan/saddlebag/internal/platform/validate"
)

// WeeklyDeltasPath is the upstream endpoint for weekly price-group deltas.
const WeeklyDeltasPath = "/ffxiv/weekly-price-group-delta"

var (
	regions  = []string{"NA", "EU", "JP", "OC"}
	settings = []string{"average", "median"}
)

// maxItemGroups bounds the fan-out of a single deltas query.
const maxItemGroups = 20

// WeeklyDeltasRequest is the body accepted by the premium deltas endpoint and
// forwarded unchanged.
type WeeklyDeltasRequest struct {
	Region          string   `json:"region"`
	StartYear       int      `json:"start_year"`
	StartMonth      int      `json:"start_month"`
	StartDay        int      `json:"start_day"`
	EndYear         int      `json:"end_year"`
	EndMonth        int      `json:"end_month"`
	EndDay          int      `json:"end_day"`
	PriceSetting    string   `json:"price_setting"`
	QuantitySetting string   `json:"quantity_setting"`
	ItemGroups      []string `json:"item_groups"`
}

// Validate checks the request before it leaves the site.
func (r WeeklyDeltasRequest) Validate() error {
	validator := &validate.Validator{}

	validator.OneOf("region", r.Region, regions...).
		Range("start_year", r.StartYear, 2020, 2100).
		Range("start_month", r.StartMonth, 1, 12).
		Range("start_day", r.StartDay, 1, 31).
		Range("end_year", r.EndYear, 2020, 2100).
		Range("end_month", r.EndMonth, 1, 12).
		Range("end_day", r.EndDay, 1, 31).
		OneOf("price_setting", r.PriceSetting, settings...).
		OneOf("quantity_setting", r.QuantitySetting, settings...).
		Custom("item_groups", len(r.ItemGroups) > maxItemGroups, "Too many item groups")

	for _, group := range r.ItemGroups {
		validator.Required("item_groups", group).MaxLen("item_groups", group, 64)
	}

	if !validator.HasErrors() {
		start := time.Date(r.StartYear, time.Month(r.StartMonth), r.StartDay, 0, 0, 0, 0, time.UTC)
		end := time.Date(r.EndYear, time.Month(r.EndMonth), r.EndDay, 0, 0, 0, 0, time.UTC)
		validator.Custom("end_day", end.Before(start), "End date must not precede start date")
	}

	return validator.Err()
}
