package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "a", "1"))
	require.NoError(t, s.Set(ctx, "a", "2"))

	v, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	require.NoError(t, s.Remove(ctx, "a"))
	require.NoError(t, s.Remove(ctx, "a"), "second remove is a no-op")

	_, ok, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStorage_EmptyKey(t *testing.T) {
	err := NewMemoryStorage().Set(context.Background(), "", "v")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestMemoryStorage_Keys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	for _, k := range []string{"p-b", "p-a", "other", "p_c"} {
		require.NoError(t, s.Set(ctx, k, "x"))
	}

	keys, err := s.Keys(ctx, "p-")
	require.NoError(t, err)
	assert.Equal(t, []string{"p-a", "p-b"}, keys)

	all, err := s.Keys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMemoryStorage_Closed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	require.NoError(t, s.Close())

	_, _, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrStorageClosed)
	assert.ErrorIs(t, s.Set(ctx, "a", "1"), ErrStorageClosed)
	assert.ErrorIs(t, s.Remove(ctx, "a"), ErrStorageClosed)
	_, err = s.Keys(ctx, "")
	assert.ErrorIs(t, err, ErrStorageClosed)
}

func TestMemoryStorage_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMemoryStorage().Set(ctx, "a", "1")
	assert.ErrorIs(t, err, context.Canceled)
}
