package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps one JSON file per document under a data directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a local store rooted at dir. An empty dir defaults to
// "data" in the working directory.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// validateID rejects IDs that could escape the data directory when used in a
// file name.
func validateID(id string) error {
	if id == "" {
		return ErrInvalidID
	}
	if strings.Contains(id, "..") {
		return ErrInvalidID
	}
	if strings.ContainsAny(id, `/\`) {
		return ErrInvalidID
	}
	if strings.ContainsRune(id, '\x00') {
		return ErrInvalidID
	}
	return nil
}

func (s *LocalStore) path(kind Kind, id string) (string, error) {
	if err := validateID(id); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_%s.json", kind, id)
	fullPath := filepath.Join(s.dir, filename)

	// Defense in depth: the resolved path must stay inside the data directory.
	cleanDir := filepath.Clean(s.dir) + string(filepath.Separator)
	if !strings.HasPrefix(filepath.Clean(fullPath), cleanDir) {
		return "", ErrInvalidID
	}
	return fullPath, nil
}

// Save implements Store with an atomic write (tmp file then rename).
func (s *LocalStore) Save(ctx context.Context, kind Kind, id string, data any) error {
	path, err := s.path(kind, id)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to rename document: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *LocalStore) Get(ctx context.Context, kind Kind, id string, out any) (bool, error) {
	path, err := s.path(kind, id)
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read document: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return true, nil
}

// Close implements Store.
func (s *LocalStore) Close() error { return nil }
