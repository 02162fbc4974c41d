// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGetQuery(t *testing.T) {
	query, args, err := buildGetQuery("secure-credential-x")
	require.NoError(t, err)
	assert.Equal(t, "SELECT value FROM credentials WHERE key = ?", query)
	assert.Equal(t, []any{"secure-credential-x"}, args)
}

func TestBuildUpsertQuery(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	query, args, err := buildUpsertQuery("k", "v", now)
	require.NoError(t, err)
	assert.Contains(t, query, "INSERT INTO credentials")
	assert.Contains(t, query, "ON CONFLICT(key) DO UPDATE SET value = excluded.value")
	assert.Equal(t, []any{"k", "v", now}, args)
}

func TestBuildDeleteQuery(t *testing.T) {
	query, args, err := buildDeleteQuery("k")
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM credentials WHERE key = ?", query)
	assert.Equal(t, []any{"k"}, args)
}

func TestBuildKeysQuery(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "no prefix",
			prefix:   "",
			wantSQL:  "SELECT key FROM credentials ORDER BY key",
			wantArgs: nil,
		},
		{
			name:     "ascii prefix",
			prefix:   "secure-credential-",
			wantSQL:  "SELECT key FROM credentials WHERE substr(key, 1, ?) = ? ORDER BY key",
			wantArgs: []any{18, "secure-credential-"},
		},
		{
			name:     "prefix counted in runes",
			prefix:   "ключ-",
			wantSQL:  "SELECT key FROM credentials WHERE substr(key, 1, ?) = ? ORDER BY key",
			wantArgs: []any{5, "ключ-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildKeysQuery(tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, query)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
				return
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
