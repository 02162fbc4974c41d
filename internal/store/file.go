// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/MKhiriev/dashkeys/internal/logger"
)

// fileStorage keeps every key in one JSON object file. The file is re-read
// on every operation so that writes by other processes are seen, and
// rewritten through a temp file plus rename so that each Set is an atomic
// replace on disk. Writers serialize on an advisory lock held on a sibling
// ".lock" file, so handles in different goroutines or processes never lose
// each other's updates.
type fileStorage struct {
	path   string
	logger *logger.Logger

	mu     sync.Mutex
	closed bool
}

// NewFileStorage returns a [KeyValueStorage] backed by the JSON file at
// path. The file and its directory are created on first write with 0600 /
// 0700 permissions.
func NewFileStorage(path string, log *logger.Logger) (KeyValueStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty file path", ErrInvalidDSN)
	}
	s := &fileStorage{path: path, logger: log}

	// fail early on a file we could never parse
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *fileStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrStorageClosed
	}

	items, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := items[key]
	return v, ok, nil
}

func (s *fileStorage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStorageClosed
	}

	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	items[key] = value
	return s.persist(items)
}

func (s *fileStorage) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStorageClosed
	}

	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return s.persist(items)
}

func (s *fileStorage) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStorageClosed
	}

	items, err := s.load()
	if err != nil {
		return nil, err
	}
	return matchingKeys(items, prefix), nil
}

func (s *fileStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// lock takes the exclusive cross-process write lock. The read-modify-rename
// cycle of a writer must run entirely under it.
func (s *fileStorage) lock() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	f, err := os.OpenFile(s.path+lockSuffix, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open storage lock: %w", err)
	}
	if err = lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("acquire storage lock: %w", err)
	}
	return func() {
		if uerr := unlockFile(f); uerr != nil {
			s.logger.Warn().Err(uerr).Str("path", s.path).Msg("failed to release storage lock")
		}
		f.Close()
	}, nil
}

func (s *fileStorage) load() (map[string]string, error) {
	items := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return items, nil
		}
		return nil, fmt.Errorf("read storage file: %w", err)
	}
	if len(data) == 0 {
		return items, nil
	}

	if err = json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptedFile, err)
	}
	return items, nil
}

func (s *fileStorage) persist(items map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	payload, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".dashkeys-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp storage file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err = tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp storage file: %w", err)
	}
	if _, err = tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp storage file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp storage file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp storage file: %w", err)
	}

	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}

// Watch implements [Watcher]. It watches the parent directory, because the
// file itself is replaced by rename on every write, and calls onChange for
// every event touching the storage file.
func (s *fileStorage) Watch(ctx context.Context, onChange func()) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err = watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to add path to watcher: %w", err)
	}

	target := filepath.Clean(s.path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					onChange()
				}
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn().Err(werr).Str("path", s.path).Msg("storage watcher error")
			}
		}
	}()

	return nil
}
