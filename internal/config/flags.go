package config

import (
	"github.com/spf13/pflag"
)

// Flag names shared by [RegisterFlags] and [ParseFlags].
const (
	flagConfig         = "config"
	flagKeyPrefix      = "key-prefix"
	flagKeepMalformed  = "keep-malformed"
	flagKDF            = "kdf"
	flagIterations     = "iterations"
	flagStorageDriver  = "storage"
	flagStorageDSN     = "dsn"
	flagRequestTimeout = "request-timeout"
	flagLogLevel       = "log-level"
	flagLogFile        = "log-file"
)

// RegisterFlags declares the configuration flags on fs.
//
// Flags:
//
//	-c/--config         json or yaml file path with configs
//	--key-prefix        storage key namespace for envelopes
//	--keep-malformed    do not purge records that fail shape validation
//	--kdf               key derivation function (pbkdf2, argon2id)
//	--iterations        pbkdf2 iteration count
//	--storage           storage driver (memory, file, sqlite)
//	--dsn               storage file path or sqlite DSN
//	--request-timeout   outbound request timeout (e.g., "15s")
//	--log-level         zerolog level
//	--log-file          write logs to this file
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(flagConfig, "c", "", "JSON or YAML config file path")
	fs.String(flagKeyPrefix, "", "Storage key namespace for envelopes")
	fs.Bool(flagKeepMalformed, false, "Keep records that fail envelope validation")
	fs.String(flagKDF, "", "Key derivation function (pbkdf2, argon2id)")
	fs.Int(flagIterations, 0, "PBKDF2 iteration count")
	fs.String(flagStorageDriver, "", "Storage driver (memory, file, sqlite)")
	fs.String(flagStorageDSN, "", "Storage file path or SQLite DSN")
	fs.Duration(flagRequestTimeout, 0, "Outbound request timeout (e.g., 15s)")
	fs.String(flagLogLevel, "", "Log level (debug, info, warn, error)")
	fs.String(flagLogFile, "", "Write logs to this file")
}

// ParseFlags reads the flags declared by [RegisterFlags] from an already
// parsed fs. Flags that were not set on the command line stay zero so they
// do not override lower-priority sources. Flags missing from fs are ignored.
func ParseFlags(fs *pflag.FlagSet) *StructuredConfig {
	cfg := &StructuredConfig{}
	if fs == nil {
		return cfg
	}

	str := func(name string, dst *string) {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}

	str(flagConfig, &cfg.ConfigFilePath)
	str(flagKeyPrefix, &cfg.App.KeyPrefix)
	str(flagKDF, &cfg.Crypto.KDF)
	str(flagStorageDriver, &cfg.Storage.Driver)
	str(flagStorageDSN, &cfg.Storage.DSN)
	str(flagLogLevel, &cfg.Log.Level)
	str(flagLogFile, &cfg.Log.File)

	if fs.Changed(flagKeepMalformed) {
		keep, _ := fs.GetBool(flagKeepMalformed)
		cfg.App.KeepMalformed = &keep
	}
	if fs.Changed(flagIterations) {
		cfg.Crypto.Iterations, _ = fs.GetInt(flagIterations)
	}
	if fs.Changed(flagRequestTimeout) {
		cfg.Adapter.RequestTimeout, _ = fs.GetDuration(flagRequestTimeout)
	}

	return cfg
}
