// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entitlement_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/saddlebag/internal/entitlement"
	"github.com/taibuivan/saddlebag/internal/session"
)

const (
	premiumA = "1210537409949548615"
	premiumB = "1211135581254451213"
	premiumC = "1211135713006723082"
)

var (
	day = 24 * time.Hour
	now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
)

func newEvaluator() *entitlement.Evaluator {
	return entitlement.NewEvaluator([]string{premiumA, premiumB, premiumC}, 8*day)
}

/*
TestHasPremium exercises allow-list intersection.
*/
func TestHasPremium(t *testing.T) {
	evaluator := newEvaluator()

	tests := []struct {
		name  string
		roles []string
		want  bool
	}{
		{"nil", nil, false},
		{"empty", []string{}, false},
		{"unrelated", []string{"111", "222"}, false},
		{"single", []string{premiumB}, true},
		{"mixed", []string{"111", premiumC}, true},
		{"all", []string{premiumA, premiumB, premiumC}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluator.HasPremium(tt.roles))
		})
	}
}

/*
TestNeedsRefresh checks the staleness boundary.
*/
func TestNeedsRefresh(t *testing.T) {
	evaluator := newEvaluator()

	tests := []struct {
		name        string
		refreshedAt time.Time
		want        bool
	}{
		{"never", time.Time{}, true},
		{"just_now", now, false},
		{"seven_days", now.Add(-7 * day), false},
		{"exactly_eight_days", now.Add(-8 * day), false},
		{"eight_days_one_ms", now.Add(-8*day - time.Millisecond), true},
		{"nine_days", now.Add(-9 * day), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluator.NeedsRefresh(tt.refreshedAt, now))
		})
	}
}

/*
TestNeedsRefreshRaw covers the string-encoded timestamp.
*/
func TestNeedsRefreshRaw(t *testing.T) {
	evaluator := newEvaluator()
	millis := func(t time.Time) string { return strconv.FormatInt(t.UnixMilli(), 10) }

	assert.True(t, evaluator.NeedsRefreshRaw("", now))
	assert.True(t, evaluator.NeedsRefreshRaw("yesterday", now))
	assert.True(t, evaluator.NeedsRefreshRaw(millis(now.Add(-9*day)), now))
	assert.False(t, evaluator.NeedsRefreshRaw(millis(now.Add(-8*day)), now))
	assert.False(t, evaluator.NeedsRefreshRaw(millis(now.Add(-time.Hour)), now))
}

/*
TestEvaluate covers the combined result, including the logged-out short circuit.
*/
func TestEvaluate(t *testing.T) {
	evaluator := newEvaluator()

	tests := []struct {
		name    string
		session session.Session
		want    entitlement.Result
	}{
		{
			name:    "logged_out_ignores_roles",
			session: session.Session{DiscordRoles: []string{premiumA}, RolesRefreshedAt: now},
			want:    entitlement.Result{},
		},
		{
			name:    "fresh_premium",
			session: session.Session{DiscordID: "1", DiscordRoles: []string{premiumA}, RolesRefreshedAt: now.Add(-day)},
			want:    entitlement.Result{IsLoggedIn: true, HasPremium: true},
		},
		{
			name:    "stale_premium",
			session: session.Session{DiscordID: "1", DiscordRoles: []string{premiumA}, RolesRefreshedAt: now.Add(-10 * day)},
			want:    entitlement.Result{IsLoggedIn: true, HasPremium: true, NeedsRefresh: true},
		},
		{
			name:    "fresh_free",
			session: session.Session{DiscordID: "1", DiscordRoles: []string{}, RolesRefreshedAt: now},
			want:    entitlement.Result{IsLoggedIn: true},
		},
		{
			name:    "never_refreshed",
			session: session.Session{DiscordID: "1"},
			want:    entitlement.Result{IsLoggedIn: true, NeedsRefresh: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluator.Evaluate(tt.session, now))
		})
	}
}

/*
TestNewEvaluator_DefaultWindow verifies a zero window falls back to eight days.
*/
func TestNewEvaluator_DefaultWindow(t *testing.T) {
	evaluator := entitlement.NewEvaluator(nil, 0)
	assert.Equal(t, 8*day, evaluator.Window())
	assert.False(t, evaluator.HasPremium([]string{""}))
}
