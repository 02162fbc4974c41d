// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "strings"

// validate checks that the final merged [StructuredConfig] can be used to
// build the credential store.
//
// Returns nil if the configuration is valid, or one of the Err* sentinels
// otherwise.
func (cfg *StructuredConfig) validate() error {
	if strings.TrimSpace(cfg.App.KeyPrefix) == "" {
		return ErrInvalidAppConfigs
	}

	switch cfg.Crypto.KDF {
	case "pbkdf2":
		if cfg.Crypto.Iterations <= 0 {
			return ErrInvalidCryptoConfigs
		}
	case "argon2id":
	default:
		return ErrInvalidCryptoConfigs
	}

	switch cfg.Storage.Driver {
	case "memory":
	case "file", "sqlite":
		if cfg.Storage.DSN == "" {
			return ErrInvalidStorageConfigs
		}
	default:
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.RequestTimeout < 0 || cfg.Adapter.RetryCount < 0 {
		return ErrInvalidAdapterConfigs
	}

	return nil
}
