package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileTokenCache persists the current token pair under the config directory
// so credentials survive process restarts.
type FileTokenCache struct {
	path string
}

func NewFileTokenCache(path string) *FileTokenCache {
	return &FileTokenCache{path: path}
}

// Load reads the cached pair. A missing cache file is not an error; it yields
// a zero pair.
func (c *FileTokenCache) Load() (TokenPair, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return TokenPair{}, nil
	}
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to read token cache: %w", err)
	}
	var pair TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return TokenPair{}, fmt.Errorf("token cache is corrupt: %w", err)
	}
	return pair, nil
}

func (c *FileTokenCache) Save(pair TokenPair) error {
	data, err := json.MarshalIndent(pair, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	// Tokens are credentials; keep the file owner-only.
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return nil
}

func (c *FileTokenCache) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token cache: %w", err)
	}
	return nil
}
