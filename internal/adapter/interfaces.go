// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter sends outbound HTTP requests that need a stored API key.
//
// The key is fetched from the credential store right before a request is
// built, attached according to the endpoint's [KeyPlacement], and is not
// kept by the client afterwards. Every request therefore re-derives and
// re-decrypts the key.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] (e.g. [ErrUnauthorized]
// for 401, which usually means the stored key was revoked).
package adapter

import (
	"context"
)

// CredentialSource yields the plaintext key of one service. It is satisfied
// by the credential store.
type CredentialSource interface {
	Retrieve(ctx context.Context) (plaintext string, ok bool, err error)
}

// CredentialLookup resolves the credential source of a service name.
type CredentialLookup func(service string) (CredentialSource, error)

// KeyedClient performs requests authenticated with a stored API key.
type KeyedClient interface {
	// Get sends a GET request to endpoint.BaseURL+path with the key of
	// endpoint.Service attached. It returns ErrKeyNotSet when the service has
	// no stored key, and a mapped error for non-2xx responses.
	Get(ctx context.Context, endpoint Endpoint, path string) (*Response, error)
}
