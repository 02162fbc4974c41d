// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"

	"github.com/spf13/pflag"
)

// StructuredConfig is the top-level configuration container for dashkeys.
// It is populated by merging defaults, a config file, environment variables
// and command-line flags.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
//   - json/yaml: keys used by the optional config file.
type StructuredConfig struct {
	// App holds credential-store behaviour that is not cryptographic.
	App App `envPrefix:"APP_" json:"app" yaml:"app"`

	// Crypto selects the KDF and optional device attribute overrides.
	Crypto Crypto `envPrefix:"CRYPTO_" json:"crypto" yaml:"crypto"`

	// Storage selects the key-value backend envelopes are persisted to.
	Storage Storage `envPrefix:"STORAGE_" json:"storage" yaml:"storage"`

	// Adapter configures the outbound HTTP client that consumes decrypted keys.
	Adapter Adapter `envPrefix:"ADAPTER_" json:"adapter" yaml:"adapter"`

	// Log configures zerolog output.
	Log Log `envPrefix:"LOG_" json:"log" yaml:"log"`

	// ConfigFilePath is the optional path to a JSON or YAML config file.
	// Populated via the CONFIG environment variable or the -c / --config flag.
	ConfigFilePath string `env:"CONFIG" json:"-" yaml:"-"`
}

// App holds credential-store settings.
type App struct {
	// KeyPrefix namespaces every envelope in storage: the record for service
	// "alpha-vantage" lives under KeyPrefix+"alpha-vantage". It must stay the
	// same for the lifetime of a deployment.
	// Env: APP_KEY_PREFIX
	KeyPrefix string `env:"KEY_PREFIX" json:"key_prefix" yaml:"key_prefix"`

	// KeepMalformed disables purging of records that fail envelope shape
	// validation. By default such records are deleted on retrieval. It is a
	// pointer so that a later source can set it back to false.
	// Env: APP_KEEP_MALFORMED
	KeepMalformed *bool `env:"KEEP_MALFORMED" json:"keep_malformed" yaml:"keep_malformed"`
}

// Crypto holds key-derivation settings.
type Crypto struct {
	// KDF is "pbkdf2" (default) or "argon2id".
	// Env: CRYPTO_KDF
	KDF string `env:"KDF" json:"kdf" yaml:"kdf"`

	// Iterations is the PBKDF2 iteration count.
	// Env: CRYPTO_ITERATIONS
	Iterations int `env:"ITERATIONS" json:"iterations" yaml:"iterations"`

	// Argon2id cost parameters; zero values fall back to 1 pass, 64 MiB, 4 lanes.
	ArgonTime    uint32 `env:"ARGON_TIME" json:"argon_time" yaml:"argon_time"`
	ArgonMemory  uint32 `env:"ARGON_MEMORY" json:"argon_memory" yaml:"argon_memory"`
	ArgonThreads uint8  `env:"ARGON_THREADS" json:"argon_threads" yaml:"argon_threads"`

	// Device overrides individual fingerprint attributes.
	Device Device `envPrefix:"DEVICE_" json:"device" yaml:"device"`
}

// Device holds fingerprint attribute overrides. Empty fields are probed
// from the host. Changing any of them invalidates stored credentials.
type Device struct {
	UserAgent string `env:"USER_AGENT" json:"user_agent" yaml:"user_agent"`
	Language  string `env:"LANGUAGE" json:"language" yaml:"language"`
	// Screen is WIDTHxHEIGHT, e.g. "1920x1080".
	Screen   string `env:"SCREEN" json:"screen" yaml:"screen"`
	Platform string `env:"PLATFORM" json:"platform" yaml:"platform"`
}

// Storage selects the persistence backend.
type Storage struct {
	// Driver is one of "memory", "file" or "sqlite".
	// Env: STORAGE_DRIVER
	Driver string `env:"DRIVER" json:"driver" yaml:"driver"`

	// DSN is the file path for the "file" driver or the SQLite DSN for
	// "sqlite". Ignored by "memory".
	// Env: STORAGE_DSN
	DSN string `env:"DSN" json:"dsn" yaml:"dsn"`
}

// Adapter holds settings for the keyed outbound HTTP client.
type Adapter struct {
	// RequestTimeout bounds a single outbound request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" json:"request_timeout" yaml:"request_timeout"`

	// RetryCount is how many times resty retries a failed request.
	// Env: ADAPTER_RETRY_COUNT
	RetryCount int `env:"RETRY_COUNT" json:"retry_count" yaml:"retry_count"`
}

// Log holds logger settings.
type Log struct {
	// Level is a zerolog level name ("debug", "info", ...).
	// Env: LOG_LEVEL
	Level string `env:"LEVEL" json:"level" yaml:"level"`

	// File, when set, receives log output instead of stdout. The terminal UI
	// needs this so log lines do not draw over it.
	// Env: LOG_FILE
	File string `env:"FILE" json:"file" yaml:"file"`
}

// KeepsMalformed reports whether malformed records are kept.
func (a App) KeepsMalformed() bool {
	return a.KeepMalformed != nil && *a.KeepMalformed
}

// Default returns the configuration used when no source sets a value.
func Default() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			KeyPrefix: "secure-credential-",
		},
		Crypto: Crypto{
			KDF:        "pbkdf2",
			Iterations: 100_000,
		},
		Storage: Storage{
			Driver: "file",
			DSN:    defaultStoragePath(),
		},
		Adapter: Adapter{
			RequestTimeout: 15 * time.Second,
			RetryCount:     2,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all sources. Priority, lowest to highest:
//  1. Defaults
//  2. Config file (path taken from env or flags)
//  3. Environment variables
//  4. Command-line flags (only flags explicitly set in fs)
//
// fs may be nil when no flags are available.
func GetStructuredConfig(fs *pflag.FlagSet) (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(fs).
		withFile().
		build()
}
