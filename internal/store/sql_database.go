package store

import (
	"database/sql"

	"github.com/MKhiriev/dashkeys/internal/logger"
	"github.com/MKhiriev/dashkeys/migrations"
)

// DB wraps the SQLite connection used by the "sqlite" driver.
type DB struct {
	*sql.DB
	logger *logger.Logger
}

// Migrate applies pending schema migrations.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
