package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/dashkeys/internal/logger"
)

type sqliteStorage struct {
	*DB
	logger *logger.Logger
	now    func() time.Time
}

// NewSQLiteStorage returns a [KeyValueStorage] over the credentials table.
// The schema must already be migrated (see [DB.Migrate]).
func NewSQLiteStorage(db *DB, log *logger.Logger) KeyValueStorage {
	return &sqliteStorage{
		DB:     db,
		logger: log,
		now:    time.Now,
	}
}

func (s *sqliteStorage) Get(ctx context.Context, key string) (string, bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetQuery(key)
	if err != nil {
		return "", false, err
	}

	var value string
	err = s.DB.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "sqliteStorage.Get").
			Str("key", key).
			Msg("failed to query credential")
		return "", false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return value, true, nil
}

func (s *sqliteStorage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	log := logger.FromContext(ctx)

	query, args, err := buildUpsertQuery(key, value, s.now())
	if err != nil {
		return err
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "sqliteStorage.Set").
			Str("key", key).
			Msg("failed to upsert credential")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (s *sqliteStorage) Remove(ctx context.Context, key string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteQuery(key)
	if err != nil {
		return err
	}

	// zero affected rows is fine: removal is idempotent
	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "sqliteStorage.Remove").
			Str("key", key).
			Msg("failed to delete credential")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (s *sqliteStorage) Keys(ctx context.Context, prefix string) ([]string, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildKeysQuery(prefix)
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "sqliteStorage.Keys").
			Msg("failed to list credential keys")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err = rows.Scan(&key); err != nil {
			log.Err(err).
				Str("func", "sqliteStorage.Keys").
				Msg("failed to scan credential key")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		keys = append(keys, key)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).
			Str("func", "sqliteStorage.Keys").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating credential rows: %w", err)
	}

	return keys, nil
}

func (s *sqliteStorage) Close() error {
	return s.DB.Close()
}
