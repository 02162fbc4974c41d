// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"

	"github.com/MKhiriev/dashkeys/internal/config"
)

// Supported KDF names.
const (
	KDFPBKDF2   = "pbkdf2"
	KDFArgon2id = "argon2id"
)

const (
	// DefaultIterations is the PBKDF2-HMAC-SHA256 iteration count.
	DefaultIterations = 100_000

	// KeyLength is the derived AES-256 key size in bytes.
	KeyLength = 32

	// SaltLength is the size of a freshly generated salt in bytes.
	SaltLength = 16
)

// kdfFunc derives KeyLength bytes from a secret and a salt.
type kdfFunc func(secret, salt []byte) []byte

// newKDF resolves the configured KDF. Any problem here is a deployment
// error, so it is reported once at construction.
func newKDF(cfg config.Crypto) (kdfFunc, error) {
	switch cfg.KDF {
	case "", KDFPBKDF2:
		iterations := cfg.Iterations
		if iterations == 0 {
			iterations = DefaultIterations
		}
		if iterations < 0 {
			return nil, fmt.Errorf("%w: pbkdf2 iterations must be positive, got %d", ErrUnsupportedKDF, iterations)
		}
		return func(secret, salt []byte) []byte {
			return pbkdf2.Key(secret, salt, iterations, KeyLength, sha256.New)
		}, nil

	case KDFArgon2id:
		// OWASP baseline: 1 pass, 64 MiB, 4 lanes
		t, m, p := cfg.ArgonTime, cfg.ArgonMemory, cfg.ArgonThreads
		if t == 0 {
			t = 1
		}
		if m == 0 {
			m = 64 * 1024
		}
		if p == 0 {
			p = 4
		}
		return func(secret, salt []byte) []byte {
			return argon2.IDKey(secret, salt, t, m, p, KeyLength)
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKDF, cfg.KDF)
	}
}

// DeriveKey implements [KeyChainService].
func (k *keyChainService) DeriveKey(fingerprint string, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		return nil, ErrEmptySalt
	}
	secret := []byte(fingerprint)
	defer Wipe(secret)

	return k.kdf(secret, salt), nil
}
