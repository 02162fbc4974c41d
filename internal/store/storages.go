package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/dashkeys/internal/config"
	"github.com/MKhiriev/dashkeys/internal/logger"
)

// Storage driver names accepted by [NewStorage].
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// NewStorage initialises the storage backend selected by cfg.Driver:
//   - "memory" keeps everything in the process;
//   - "file" keeps a JSON object file at cfg.DSN;
//   - "sqlite" opens cfg.DSN, runs pending migrations and uses the
//     credentials table.
//
// Returns an error if the backend cannot be opened or migrated.
func NewStorage(ctx context.Context, cfg config.Storage, log *logger.Logger) (KeyValueStorage, error) {
	log.Info().Str("driver", cfg.Driver).Msg("creating credential storage...")

	switch cfg.Driver {
	case DriverMemory:
		return NewMemoryStorage(), nil

	case DriverFile:
		return NewFileStorage(cfg.DSN, log)

	case DriverSQLite:
		db, err := NewConnectSQLite(ctx, cfg.DSN, log)
		if err != nil {
			return nil, fmt.Errorf("sqlite connection error: %w", err)
		}
		if err = db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		return NewSQLiteStorage(db, log), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
