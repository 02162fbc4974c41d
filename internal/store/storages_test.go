package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/dashkeys/internal/config"
	"github.com/MKhiriev/dashkeys/internal/logger"
)

func configStorage(driver, dsn string) config.Storage {
	return config.Storage{Driver: driver, DSN: dsn}
}

func TestNewStorage(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.Storage
		wantErr error
	}{
		{name: "memory", cfg: configStorage(DriverMemory, "")},
		{name: "file", cfg: configStorage(DriverFile, filepath.Join(dir, "c.json"))},
		{name: "sqlite", cfg: configStorage(DriverSQLite, filepath.Join(dir, "c.db"))},
		{name: "sqlite in memory", cfg: configStorage(DriverSQLite, ":memory:")},
		{name: "file without path", cfg: configStorage(DriverFile, ""), wantErr: ErrInvalidDSN},
		{name: "sqlite without dsn", cfg: configStorage(DriverSQLite, ""), wantErr: ErrInvalidDSN},
		{name: "unknown", cfg: configStorage("redis", "x"), wantErr: ErrUnknownDriver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStorage(context.Background(), tt.cfg, logger.Nop())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer s.Close()

			ctx := context.Background()
			require.NoError(t, s.Set(ctx, "k", "v"))
			v, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v", v)
		})
	}
}
