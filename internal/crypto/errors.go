package crypto

import "errors"

var (
	// ErrAuthenticationFailure is returned by Decrypt when the GCM tag does
	// not verify against the key and nonce. Retrying with the same inputs
	// fails the same way.
	ErrAuthenticationFailure = errors.New("authentication failed")

	// ErrInvalidKeyLength is returned when a key is not 32 bytes long.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrInvalidNonceLength is returned when a nonce does not match the AEAD nonce size.
	ErrInvalidNonceLength = errors.New("invalid nonce length")

	// ErrEmptySalt is returned by DeriveKey when no salt is given.
	ErrEmptySalt = errors.New("empty salt")

	// ErrUnsupportedKDF is a configuration error: the KDF name or its
	// parameters are not usable. It is fatal and never retried.
	ErrUnsupportedKDF = errors.New("unsupported key derivation function")
)
