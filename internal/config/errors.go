package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates invalid credential-store settings
	// (for example, an empty key prefix).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidCryptoConfigs indicates an unknown KDF or a non-positive
	// iteration count.
	ErrInvalidCryptoConfigs = errors.New("invalid crypto configuration")
	// ErrInvalidStorageConfigs indicates an unknown storage driver or a
	// missing DSN for a persistent driver.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAdapterConfigs indicates negative adapter timeouts or retries.
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
)
