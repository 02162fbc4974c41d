package service

import (
	"context"

	"github.com/MKhiriev/dashkeys/models"
)

// CredentialStore protects the API key of one named service. The key is
// kept in storage only as an encrypted envelope bound to the current device;
// the plaintext exists in memory only for the duration of a call.
//
// Calls for one service are expected to be issued one at a time. There is no
// operation lock: two concurrent updates are last-write-wins in storage.
type CredentialStore interface {
	// Service returns the service name the store was created for.
	Service() string

	// StorageKey returns the namespaced storage key holding the envelope.
	StorageKey() string

	// Load rebuilds the state from storage without decrypting anything.
	Load(ctx context.Context) models.CredentialState

	// Store encrypts plaintext under a fresh salt and nonce and replaces the
	// stored envelope. Whitespace-only input fails with ErrEmptyInput before
	// any crypto or storage work.
	Store(ctx context.Context, plaintext string) error

	// Retrieve decrypts the stored key. ok is false and err is nil when no key
	// is stored. A malformed record yields ErrShape, a record that does not
	// decrypt on this device yields ErrAuthenticationFailure.
	Retrieve(ctx context.Context) (plaintext string, ok bool, err error)

	// Update replaces the stored key: remove, then store. If the store step
	// fails the credential is left empty.
	Update(ctx context.Context, plaintext string) error

	// Remove deletes the stored envelope. Removing an absent key succeeds.
	Remove(ctx context.Context) error

	// ClearError drops the recorded error and keeps the key state.
	ClearError()

	// IsKeySet reports whether a well-formed envelope is stored. It neither
	// decrypts nor changes state.
	IsKeySet(ctx context.Context) (bool, error)

	// MaskedKey returns the last mask computed from a plaintext, the
	// placeholder mask when a key is known to be stored, or "".
	MaskedKey() string

	// State returns a snapshot of the current state.
	State() models.CredentialState
}

// CredentialManager hands out one CredentialStore per service name, all
// sharing the same storage and keychain.
type CredentialManager interface {
	// For returns the store of service, creating it on first use.
	For(service string) (CredentialStore, error)

	// List returns the sorted names of the services that hold a well-formed
	// envelope.
	List(ctx context.Context) ([]string, error)

	// Prefix returns the storage key prefix.
	Prefix() string
}
