// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (key derivation, token
// signing) from the session and domain logic. The session store depends on
// [TokenService] to make its cookie tamper-evident.
package sec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// sessionKeyPurpose scopes the HKDF derivation for session signing keys.
const sessionKeyPurpose = "session-cookie-v1"

// ErrInvalidToken is returned for any token that fails signature, method or
// issuer checks. Callers treat it as "no session" and never surface details.
var ErrInvalidToken = errors.New("sec: invalid token")

// SessionClaims is the payload of a signed session token.
//
// # Why no time claims?
//
// Expiry is carried by the cookie's Max-Age, and leaving iat/exp out makes
// signing deterministic: the same session always yields the same token.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Payload is the encoded session body (cookie backend) and is empty when
	// the token only names a server-side session (Subject).
	Payload json.RawMessage `json:"ses,omitempty"`
}

// TokenService signs and verifies session tokens with HS256.
//
// The first key signs; every key verifies, so secrets can be rotated by
// prepending the new secret and retiring the old one after a cookie lifetime.
type TokenService struct {
	keys   [][]byte
	issuer string
}

// NewTokenService derives one signing key per secret.
func NewTokenService(secrets []string, issuer string) (*TokenService, error) {
	if len(secrets) == 0 {
		return nil, errors.New("sec: at least one session secret is required")
	}

	keys := make([][]byte, 0, len(secrets))
	for _, secret := range secrets {
		key, err := DeriveKey(secret, sessionKeyPurpose)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return &TokenService{keys: keys, issuer: issuer}, nil
}

// Sign stamps the issuer and returns the compact token.
func (service *TokenService) Sign(claims SessionClaims) (string, error) {
	claims.Issuer = service.issuer

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.keys[0])
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature against every configured key.
func (service *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(service.issuer),
	)

	for _, key := range service.keys {
		claims := &SessionClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err == nil && token.Valid {
			return claims, nil
		}
	}

	return nil, ErrInvalidToken
}
