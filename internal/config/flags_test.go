package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestParseFlags_AllFlags(t *testing.T) {
	fs := newTestFlagSet(t,
		"-c", "/etc/dashkeys.json",
		"--key-prefix", "k-",
		"--keep-malformed",
		"--kdf", "argon2id",
		"--iterations", "1000",
		"--storage", "memory",
		"--dsn", "x.db",
		"--request-timeout", "3s",
		"--log-level", "warn",
		"--log-file", "out.log",
	)

	cfg := ParseFlags(fs)

	assert.Equal(t, "/etc/dashkeys.json", cfg.ConfigFilePath)
	assert.Equal(t, "k-", cfg.App.KeyPrefix)
	require.NotNil(t, cfg.App.KeepMalformed)
	assert.True(t, *cfg.App.KeepMalformed)
	assert.Equal(t, "argon2id", cfg.Crypto.KDF)
	assert.Equal(t, 1000, cfg.Crypto.Iterations)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "x.db", cfg.Storage.DSN)
	assert.Equal(t, 3*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "out.log", cfg.Log.File)
}

func TestParseFlags_UnsetFlagsStayZero(t *testing.T) {
	cfg := ParseFlags(newTestFlagSet(t))
	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestParseFlags_NilFlagSet(t *testing.T) {
	assert.Equal(t, &StructuredConfig{}, ParseFlags(nil))
}
