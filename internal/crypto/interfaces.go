package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/keychain_service_mock.go -package=mock

// KeyChainService groups the device-bound cryptography used to protect API
// keys at rest. It knows nothing about storage or about which service a key
// belongs to; callers get raw bytes in and raw bytes out.
//
// Flow for one store:
//
//	fp         = Fingerprint()                      (device seed, never stored)
//	salt,nonce = GenerateSalt(), GenerateNonce()    (fresh per call)
//	key        = DeriveKey(fp, salt)                (per operation, never stored)
//	ciphertext = Encrypt(key, nonce, plaintext)
//
// Retrieval re-derives key from the stored salt and the current fingerprint.
type KeyChainService interface {
	// Fingerprint returns the base64 SHA-256 digest of the current device
	// environment. It is deterministic for an unchanged environment and never
	// fails: missing attributes are replaced by fixed fallbacks.
	Fingerprint() string

	// GenerateSalt returns 16 random bytes for key derivation.
	GenerateSalt() ([]byte, error)

	// GenerateNonce returns a fresh 12-byte AES-GCM nonce. A nonce must never
	// be used twice with the same derived key.
	GenerateNonce() ([]byte, error)

	// DeriveKey turns fingerprint and salt into a 256-bit AES key using the
	// configured password-based KDF.
	DeriveKey(fingerprint string, salt []byte) ([]byte, error)

	// Encrypt seals plaintext with AES-256-GCM.
	Encrypt(key, nonce, plaintext []byte) ([]byte, error)

	// Decrypt opens ciphertext with AES-256-GCM. It returns
	// ErrAuthenticationFailure when the tag does not verify, which is what a
	// changed device fingerprint or a tampered envelope looks like.
	Decrypt(key, nonce, ciphertext []byte) ([]byte, error)
}

// EnvironmentProbe reports the device attributes a fingerprint is built from.
type EnvironmentProbe interface {
	Probe() Environment
}
