// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/dashkeys/internal/logger"
)

func newTestFileStorage(t *testing.T) (KeyValueStorage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	s, err := NewFileStorage(path, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestNewFileStorage_EmptyPath(t *testing.T) {
	_, err := NewFileStorage("", logger.Nop())
	assert.ErrorIs(t, err, ErrInvalidDSN)
}

func TestNewFileStorage_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStorage(path, logger.Nop())
	assert.ErrorIs(t, err, ErrCorruptedFile)
}

func TestNewFileStorage_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	s, err := NewFileStorage(path, logger.Nop())
	require.NoError(t, err)

	keys, err := s.Keys(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFileStorage_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s, path := newTestFileStorage(t)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing is written before the first Set")

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Remove(ctx, "k"))
	require.NoError(t, s.Remove(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStorage_FileLayout(t *testing.T) {
	ctx := context.Background()
	s, path := newTestFileStorage(t)
	require.NoError(t, s.Set(ctx, "secure-credential-x", `{"encrypted":"a"}`))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var items map[string]string
	require.NoError(t, json.Unmarshal(data, &items))
	assert.Equal(t, map[string]string{"secure-credential-x": `{"encrypted":"a"}`}, items)

	// no temp files left behind, only the data file and its lock
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"credentials.json", "credentials.json.lock"}, names)
}

func TestFileStorage_SeesExternalWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")

	a, err := NewFileStorage(path, logger.Nop())
	require.NoError(t, err)
	b, err := NewFileStorage(path, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, a.Set(ctx, "k", "from-a"))

	v, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from-a", v)
}

func TestFileStorage_ConcurrentHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	const perHandle = 50

	handles := make([]KeyValueStorage, 2)
	for i := range handles {
		s, err := NewFileStorage(path, logger.Nop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		handles[i] = s
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, len(handles)*perHandle)
	for h, s := range handles {
		for i := 0; i < perHandle; i++ {
			h, s, i := h, s, i
			wg.Add(1)
			go func() {
				defer wg.Done()
				key := "h" + strconv.Itoa(h) + "-" + strconv.Itoa(i)
				errs <- s.Set(ctx, key, "v")
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	keys, err := handles[0].Keys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, keys, len(handles)*perHandle)

	keys, err = handles[1].Keys(ctx, "h0-")
	require.NoError(t, err)
	assert.Len(t, keys, perHandle)
}

func TestFileStorage_CorruptedAfterOpen(t *testing.T) {
	ctx := context.Background()
	s, path := newTestFileStorage(t)
	require.NoError(t, s.Set(ctx, "k", "v"))

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCorruptedFile)
	assert.ErrorIs(t, s.Set(ctx, "k", "v"), ErrCorruptedFile)
}

func TestFileStorage_Keys(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestFileStorage(t)
	require.NoError(t, s.Set(ctx, "p-2", "x"))
	require.NoError(t, s.Set(ctx, "p-1", "x"))
	require.NoError(t, s.Set(ctx, "q-1", "x"))

	keys, err := s.Keys(ctx, "p-")
	require.NoError(t, err)
	assert.Equal(t, []string{"p-1", "p-2"}, keys)
}

func TestFileStorage_Closed(t *testing.T) {
	s, _ := newTestFileStorage(t)
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Set(context.Background(), "k", "v"), ErrStorageClosed)
}

func TestFileStorage_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, path := newTestFileStorage(t)
	w, ok := s.(Watcher)
	require.True(t, ok, "file storage must implement Watcher")

	var calls atomic.Int32
	require.NoError(t, w.Watch(ctx, func() { calls.Add(1) }))

	// unrelated file in the same directory is ignored
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.txt"), []byte("x"), 0o600))

	other, err := NewFileStorage(path, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, other.Set(context.Background(), "k", "v"))

	assert.Eventually(t, func() bool { return calls.Load() > 0 }, 2*time.Second, 10*time.Millisecond)
}
