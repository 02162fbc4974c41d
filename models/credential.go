// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// CredentialStatus is the lifecycle state of one named credential.
type CredentialStatus int

const (
	// StatusEmpty means no usable envelope is stored for the service.
	StatusEmpty CredentialStatus = iota
	// StatusPresent means a well-formed envelope is stored.
	StatusPresent
	// StatusLoading means an operation is in flight.
	StatusLoading
	// StatusError means the stored envelope could not be decrypted.
	StatusError
)

func (s CredentialStatus) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusPresent:
		return "present"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// CredentialState is the UI-facing view of one named credential. It never
// carries the plaintext: MaskedKey is derived from a value that was just
// submitted or just decrypted, or is a fixed placeholder when a key is known
// to be stored.
type CredentialState struct {
	Service   string
	Status    CredentialStatus
	IsLoading bool
	Error     error
	MaskedKey string
	HasKey    bool
}
