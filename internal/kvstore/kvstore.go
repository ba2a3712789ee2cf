// Package kvstore persists small named values that must survive process restarts.
//
// It is the durable process-wide storage of the showcase: the cached catalog bytes and the
// time of the last successful fetch are kept there.
package kvstore

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/ubuntu/app-showcase/internal/fileutils"
	"github.com/ubuntu/decorate"
)

// Store is a key/value storage of raw bytes.
type Store interface {
	// Get returns the value stored under key. found is false if the key was never set.
	Get(key string) (value []byte, found bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
}

// FileStore is a Store kept in a single TOML file.
//
// The file is read on every Get, so that values written by other processes are observed,
// and replaced atomically on every Set.
type FileStore struct {
	path string
	mu   sync.RWMutex

	log *slog.Logger
}

// stateFile is the on disk representation of the store. Values are base64 encoded.
type stateFile struct {
	Slots map[string]string `toml:"slots"`
}

// NewFileStore returns a FileStore backed by the file at path.
// The file and its parent directories are created on the first Set.
func NewFileStore(l *slog.Logger, path string) *FileStore {
	if l == nil {
		l = slog.Default()
	}
	return &FileStore{path: path, log: l}
}

// Path returns the path of the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the value stored under key.
func (s *FileStore) Get(key string) (value []byte, found bool, err error) {
	defer decorate.OnError(&err, "could not get %q from %s", key, s.path)

	s.mu.RLock()
	defer s.mu.RUnlock()

	state, err := s.read()
	if err != nil {
		return nil, false, err
	}

	encoded, found := state.Slots[key]
	if !found {
		return nil, false, nil
	}
	value, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false, fmt.Errorf("invalid encoding: %v", err)
	}
	return value, true, nil
}

// Set stores value under key.
func (s *FileStore) Set(key string, value []byte) (err error) {
	defer decorate.OnError(&err, "could not set %q in %s", key, s.path)

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		s.log.Warn("Replacing unreadable state file", "file", s.path, "error", err)
		state = stateFile{}
	}
	if state.Slots == nil {
		state.Slots = make(map[string]string)
	}
	state.Slots[key] = base64.StdEncoding.EncodeToString(value)

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(state); err != nil {
		return fmt.Errorf("could not encode state: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("could not create state directory: %v", err)
	}
	if err := fileutils.AtomicWrite(s.path, buf.Bytes()); err != nil {
		return err
	}
	s.log.Debug("Wrote state slot", "file", s.path, "key", key, "size", len(value))

	return nil
}

// read decodes the backing file. A missing file is an empty state.
func (s *FileStore) read() (stateFile, error) {
	var state stateFile

	data, found, err := fileutils.ReadFileIfExists(s.path)
	if err != nil || !found {
		return state, err
	}
	if err := toml.Unmarshal(data, &state); err != nil {
		return stateFile{}, fmt.Errorf("could not decode state: %v", err)
	}
	return state, nil
}

// Watch starts watching the backing file for changes made by any writer.
//
// It returns two channels: one signaling changes, and another for unrecoverable watcher errors.
// Both are closed once ctx is done.
func (s *FileStore) Watch(ctx context.Context) (changes <-chan struct{}, errs <-chan error, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create watcher: %v", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("failed to create state directory %s: %v", dir, err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("failed to add directory %s to watcher: %v", dir, err)
	}

	s.log.Debug("Watching state directory", "dir", dir)
	changesCh := make(chan struct{}, 1)
	errorsCh := make(chan error, 1)

	go func() {
		defer close(changesCh)
		defer close(errorsCh)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				s.log.Debug("State watcher stopped")
				return
			case event, ok := <-watcher.Events:
				if !ok {
					errorsCh <- errors.New("watcher events channel closed unexpectedly")
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}

				select {
				case changesCh <- struct{}{}:
				default:
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					errorsCh <- errors.New("watcher errors channel closed unexpectedly")
					return
				}
				s.log.Warn("State watcher error", "error", err)
			}
		}
	}()

	return changesCh, errorsCh, nil
}

// MemoryStore is a Store which does not outlive the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, found := s.values[key]
	if !found {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

// Set stores a copy of value under key.
func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = bytes.Clone(value)
	return nil
}
