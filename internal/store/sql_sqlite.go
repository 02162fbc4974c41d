package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/dashkeys/internal/logger"
)

// NewConnectSQLite opens the SQLite database at dsn, creating the database
// file when dsn is a plain path that does not exist yet.
func NewConnectSQLite(ctx context.Context, dsn string, log *logger.Logger) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: empty sqlite dsn", ErrInvalidDSN)
	}

	// db will be in file
	if err := createLocalDBFileIfNotExists(dsn); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error creating database file")
		return nil, fmt.Errorf("error creating database file: %w", err)
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}
	// one writer at a time; SQLite serializes anyway and this avoids SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	// ping database
	err = conn.PingContext(ctx)
	if err != nil {
		conn.Close()
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database (ping)")
		return nil, err
	}
	log.Debug().Str("func", "NewConnectSQLite").Msg("connected to database successfully")

	// construct a DB struct
	db := &DB{
		DB:     conn,
		logger: log,
	}

	return db, nil
}

func createLocalDBFileIfNotExists(dsn string) error {
	// URIs and in-memory databases are left to the driver
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}

	if _, err := os.Stat(dsn); os.IsNotExist(err) {
		if err = os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
			return fmt.Errorf("error creating DB dir: %w", err)
		}
		// if not found - create
		f, err := os.OpenFile(dsn, os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	// file already exists
	return nil
}
