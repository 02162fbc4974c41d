// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/dashkeys/internal/logger"
)

func newTestSQLiteStorage(t *testing.T) (*sqliteStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := &sqliteStorage{
		DB:     &DB{DB: db, logger: logger.Nop()},
		logger: logger.Nop(),
		now:    func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
	return s, mock
}

func TestSQLiteStorage_Get_Success(t *testing.T) {
	s, mock := newTestSQLiteStorage(t)

	mock.ExpectQuery(`SELECT value FROM credentials WHERE key = \?`).
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("v"))

	v, ok, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStorage_Get_NotFound(t *testing.T) {
	s, mock := newTestSQLiteStorage(t)

	mock.ExpectQuery(`SELECT value FROM credentials`).
		WithArgs("k").
		WillReturnError(sql.ErrNoRows)

	v, ok, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestSQLiteStorage_Get_UnexpectedError(t *testing.T) {
	s, mock := newTestSQLiteStorage(t)

	mock.ExpectQuery(`SELECT value FROM credentials`).
		WithArgs("k").
		WillReturnError(errors.New("disk I/O error"))

	_, _, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

func TestSQLiteStorage_Set(t *testing.T) {
	s, mock := newTestSQLiteStorage(t)

	mock.ExpectExec(`INSERT INTO credentials`).
		WithArgs("k", "v", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Set(context.Background(), "k", "v"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStorage_Set_Error(t *testing.T) {
	s, mock := newTestSQLiteStorage(t)

	mock.ExpectExec(`INSERT INTO credentials`).
		WillReturnError(errors.New("database is locked"))

	assert.ErrorIs(t, s.Set(context.Background(), "k", "v"), ErrExecutingStatement)
}

func TestSQLiteStorage_Set_EmptyKey(t *testing.T) {
	s, mock := newTestSQLiteStorage(t)

	assert.ErrorIs(t, s.Set(context.Background(), "", "v"), ErrEmptyKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStorage_Remove(t *testing.T) {
	s, mock := newTestSQLiteStorage(t)

	mock.ExpectExec(`DELETE FROM credentials WHERE key = \?`).
		WithArgs("k").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Remove(context.Background(), "k"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStorage_Keys(t *testing.T) {
	s, mock := newTestSQLiteStorage(t)

	mock.ExpectQuery(`SELECT key FROM credentials WHERE substr\(key, 1, \?\) = \? ORDER BY key`).
		WithArgs(2, "p-").
		WillReturnRows(sqlmock.NewRows([]string{"key"}).AddRow("p-a").AddRow("p-b"))

	keys, err := s.Keys(context.Background(), "p-")
	require.NoError(t, err)
	assert.Equal(t, []string{"p-a", "p-b"}, keys)
}

func TestSQLiteStorage_Keys_ScanError(t *testing.T) {
	s, mock := newTestSQLiteStorage(t)

	mock.ExpectQuery(`SELECT key FROM credentials`).
		WillReturnRows(sqlmock.NewRows([]string{"key"}).AddRow(nil))

	_, err := s.Keys(context.Background(), "")
	assert.ErrorIs(t, err, ErrScanningRow)
}

func TestSQLiteStorage_Keys_RowsError(t *testing.T) {
	s, mock := newTestSQLiteStorage(t)

	mock.ExpectQuery(`SELECT key FROM credentials`).
		WillReturnRows(sqlmock.NewRows([]string{"key"}).
			AddRow("a").
			RowError(0, errors.New("row failure")))

	_, err := s.Keys(context.Background(), "")
	assert.Error(t, err)
}

func TestSQLiteStorage_RealDatabase(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(ctx, configStorage(DriverSQLite, filepath.Join(t.TempDir(), "db", "credentials.db")), logger.Nop())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, "secure-credential-a_b", "1"))
	require.NoError(t, s.Set(ctx, "secure-credential-a_b", "2"))
	require.NoError(t, s.Set(ctx, "secure-credential-axb", "3"))
	require.NoError(t, s.Set(ctx, "unrelated", "4"))

	v, ok, err := s.Get(ctx, "secure-credential-a_b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	// '_' is not a wildcard
	keys, err := s.Keys(ctx, "secure-credential-a_")
	require.NoError(t, err)
	assert.Equal(t, []string{"secure-credential-a_b"}, keys)

	require.NoError(t, s.Remove(ctx, "secure-credential-a_b"))
	_, ok, err = s.Get(ctx, "secure-credential-a_b")
	require.NoError(t, err)
	assert.False(t, ok)
}
