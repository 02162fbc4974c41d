// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

// NonceLength is the AES-GCM standard nonce size in bytes.
const NonceLength = 12

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeyLength {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKeyLength, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

// GenerateSalt implements [KeyChainService].
func (k *keyChainService) GenerateSalt() ([]byte, error) {
	return k.randomBytes(SaltLength)
}

// GenerateNonce implements [KeyChainService].
func (k *keyChainService) GenerateNonce() ([]byte, error) {
	return k.randomBytes(NonceLength)
}

func (k *keyChainService) randomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(k.random, buf); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return buf, nil
}

// Encrypt implements [KeyChainService]. The returned ciphertext carries the
// GCM tag; the nonce is not prepended and has to be stored separately.
func (k *keyChainService) Encrypt(key, nonce, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNonceLength, len(nonce))
	}
	return gcm.Seal(nil, nonce, plaintext, nil), nil
}

// Decrypt implements [KeyChainService].
func (k *keyChainService) Decrypt(key, nonce, ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNonceLength, len(nonce))
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailure, err)
	}
	return plaintext, nil
}

// Wipe zeroes b in place. Go gives no guarantee that no other copy of the
// data exists, so this only shortens how long the bytes stay readable.
func Wipe(b []byte) {
	clear(b)
}

// randReader is swapped in tests.
var randReader io.Reader = rand.Reader
