// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// derivedKeyLength is the HMAC-SHA256 key size in bytes.
const derivedKeyLength = 32

// DeriveKey stretches an operator-supplied secret into a fixed-size key bound
// to purpose. Distinct purposes never share key material even when they share
// the same secret.
func DeriveKey(secret, purpose string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: empty secret for %s", purpose)
	}

	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))

	key := make([]byte, derivedKeyLength)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("sec: failed to derive %s key: %w", purpose, err)
	}

	return key, nil
}
