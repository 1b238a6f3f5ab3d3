package kv

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileStore persists all keys as one JSON object in a single file.
//
// The file is re-read on every Get so that separate processes sharing the
// same data directory observe each other's writes. A missing file is an
// empty store; a malformed file is treated as empty (with a warning) and is
// replaced wholesale on the next Set. A file that exists but cannot be read
// reads as empty, and Set refuses to overwrite it.
type FileStore struct {
	path     string
	logger   *zap.Logger
	mu       sync.RWMutex
	readFile func(string) ([]byte, error)
}

// NewFileStore creates a store backed by the file at path.
// The parent directory is created on first write.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger, readFile: os.ReadFile}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Get implements Store.
func (f *FileStore) Get(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := f.load()
	if err != nil {
		f.logger.Warn("could not read state file", zap.String("path", f.path), zap.Error(err))
		return "", false
	}
	v, ok := data[key]
	return v, ok
}

// Set implements Store.
func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}
	data[key] = value

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	// Write to a sibling temp file and rename so readers never see a torn file.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace state: %w", err)
	}

	return nil
}

// load returns the stored keys. Missing and malformed files yield an empty
// map; any other read failure is returned.
func (f *FileStore) load() (map[string]string, error) {
	raw, err := f.readFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	var data map[string]string
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		f.logger.Warn("ignoring malformed state file", zap.String("path", f.path), zap.Error(err))
		return map[string]string{}, nil
	}
	return data, nil
}
