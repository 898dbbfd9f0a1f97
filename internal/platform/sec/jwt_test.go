// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"encoding/json"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/saddlebag/internal/platform/sec"
)

const testIssuer = "saddlebag.test"

/*
TestTokenService_RoundTrip verifies that a signed payload verifies unchanged.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service, err := sec.NewTokenService([]string{"alpha"}, testIssuer)
	require.NoError(t, err)

	token, err := service.Sign(sec.SessionClaims{Payload: json.RawMessage(`{"discord_id":"1"}`)})
	require.NoError(t, err)

	claims, err := service.Verify(token)
	require.NoError(t, err)
	assert.JSONEq(t, `{"discord_id":"1"}`, string(claims.Payload))
	assert.Equal(t, testIssuer, claims.Issuer)
}

/*
TestTokenService_Deterministic checks identical input signs to an identical token.
*/
func TestTokenService_Deterministic(t *testing.T) {
	service, err := sec.NewTokenService([]string{"alpha"}, testIssuer)
	require.NoError(t, err)

	claims := sec.SessionClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	first, err := service.Sign(claims)
	require.NoError(t, err)
	second, err := service.Sign(claims)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

/*
TestTokenService_Rotation verifies old secrets still verify after rotation.
*/
func TestTokenService_Rotation(t *testing.T) {
	old, err := sec.NewTokenService([]string{"old"}, testIssuer)
	require.NoError(t, err)
	token, err := old.Sign(sec.SessionClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "s"}})
	require.NoError(t, err)

	rotated, err := sec.NewTokenService([]string{"new", "old"}, testIssuer)
	require.NoError(t, err)
	claims, err := rotated.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "s", claims.Subject)

	retired, err := sec.NewTokenService([]string{"new"}, testIssuer)
	require.NoError(t, err)
	_, err = retired.Verify(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestTokenService_Rejects covers tampered, foreign-issuer and unsigned tokens.
*/
func TestTokenService_Rejects(t *testing.T) {
	service, err := sec.NewTokenService([]string{"alpha"}, testIssuer)
	require.NoError(t, err)

	token, err := service.Sign(sec.SessionClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "s"}})
	require.NoError(t, err)

	foreign, err := sec.NewTokenService([]string{"alpha"}, "someone.else")
	require.NoError(t, err)
	foreignToken, err := foreign.Sign(sec.SessionClaims{})
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"iss": testIssuer}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, candidate := range map[string]string{
		"empty":    "",
		"garbage":  "not-a-token",
		"tampered": token[:len(token)-2] + "xx",
		"issuer":   foreignToken,
		"none_alg": unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := service.Verify(candidate)
			assert.ErrorIs(t, err, sec.ErrInvalidToken)
		})
	}
}

/*
TestDeriveKey checks purpose separation and empty-secret rejection.
*/
func TestDeriveKey(t *testing.T) {
	a, err := sec.DeriveKey("secret", "one")
	require.NoError(t, err)
	b, err := sec.DeriveKey("secret", "two")
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)

	_, err = sec.DeriveKey("", "one")
	assert.Error(t, err)
}
