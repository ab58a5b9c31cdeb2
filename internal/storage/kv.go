// Package storage persists game state through a small key-value
// abstraction, mirroring the browser-storage model the tracker's data
// shapes come from: a handful of logical keys, JSON string values, and a
// quota that can run out.
package storage

import (
	"errors"
	"os"
	"path/filepath"

	util "github.com/christophrus/rummikub-tracker/internal/util"
)

var (
	// ErrNotFound is returned by Get for an absent key.
	ErrNotFound = errors.New("key not found")
	// ErrQuotaExceeded is returned by Set when a write would push the
	// store past its byte budget. Callers surface this distinctly so the
	// UI can suggest remediation (shrink avatars, clear history).
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

type KeyValueStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// FileStore keeps one JSON file per key under a data directory.
type FileStore struct {
	dir   string
	quota int64 // total byte budget across all keys; 0 means unlimited
}

func NewFileStore(dir string, quota int64) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, quota: quota}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Get(key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

func (s *FileStore) Set(key, value string) error {
	if s.quota > 0 {
		used, err := s.usedBytes(key)
		if err != nil {
			return err
		}
		if used+int64(len(value)) > s.quota {
			return ErrQuotaExceeded
		}
	}
	return os.WriteFile(s.path(key), []byte(value), 0o644)
}

func (s *FileStore) Remove(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// usedBytes sums the stored sizes of every key except the one about to be
// overwritten.
func (s *FileStore) usedBytes(excludeKey string) (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() || e.Name() == excludeKey+".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			util.LogWarn("Skipping unreadable storage file %s: %v", e.Name(), err)
			continue
		}
		total += info.Size()
	}
	return total, nil
}

// MemStore is an in-memory KeyValueStore used by tests. MaxBytes models a
// quota the same way FileStore does.
type MemStore struct {
	Values   map[string]string
	MaxBytes int
}

func NewMemStore() *MemStore {
	return &MemStore{Values: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, error) {
	v, ok := s.Values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemStore) Set(key, value string) error {
	if s.MaxBytes > 0 {
		used := 0
		for k, v := range s.Values {
			if k != key {
				used += len(v)
			}
		}
		if used+len(value) > s.MaxBytes {
			return ErrQuotaExceeded
		}
	}
	s.Values[key] = value
	return nil
}

func (s *MemStore) Remove(key string) error {
	delete(s.Values, key)
	return nil
}
