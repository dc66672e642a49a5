package token

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists the studio access token between runs.
type Store interface {
	Load() (string, error)
	Save(token string) error
}

// FileStore keeps the token as plain text in a single file. The file
// is created empty when absent so Load never fails on first run.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	// Touch the file so the first Load sees an empty token, not an error
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create token file: %w", err)
	}
	file.Close()

	return &FileStore{path: path}, nil
}

// Load returns the stored token, or an empty string when none has been
// saved yet.
func (s *FileStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

// Save overwrites the stored token.
func (s *FileStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
