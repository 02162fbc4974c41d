package service

import (
	"errors"

	"github.com/MKhiriev/dashkeys/internal/crypto"
	"github.com/MKhiriev/dashkeys/internal/envelope"
)

var (
	// ErrEmptyInput is returned when an empty or whitespace-only secret is
	// submitted. Nothing is encrypted or written.
	ErrEmptyInput = errors.New("empty credential")

	// ErrShape is returned when the stored record is not a valid envelope.
	ErrShape = envelope.ErrShape

	// ErrAuthenticationFailure is returned when a stored envelope does not
	// decrypt under the current device fingerprint.
	ErrAuthenticationFailure = crypto.ErrAuthenticationFailure

	// ErrStorage wraps every error returned by the storage collaborator.
	ErrStorage = errors.New("credential storage error")

	ErrEmptyServiceName = errors.New("empty service name")
)

// UserMessage renders err as a short sentence for the credential UI. It
// returns "" for a nil error.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return "enter an API key before saving"
	case errors.Is(err, ErrShape):
		return "the stored key is unreadable; remove it and enter it again"
	case errors.Is(err, ErrAuthenticationFailure):
		return "failed to decrypt — may be corrupted or the device context changed"
	case errors.Is(err, ErrEmptyServiceName):
		return "a service name is required"
	default:
		return err.Error()
	}
}
