package receipt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage defines the interface for receipt file storage. Files are kept
// per user.
type Storage interface {
	// Save stores a file under the user's directory
	Save(userID, name string, data []byte) error

	// Get retrieves one of the user's files
	Get(userID, name string) ([]byte, error)

	// Delete removes one of the user's files
	Delete(userID, name string) error
}

// LocalStorage implements the Storage interface using local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

func (l *LocalStorage) path(userID, name string) (string, error) {
	for _, part := range []string{userID, name} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, part)
		}
	}
	return filepath.Join(l.basePath, userID, name), nil
}

// Save writes a file to local storage
func (l *LocalStorage) Save(userID, name string, data []byte) error {
	path, err := l.path(userID, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating user directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// Get reads a file from local storage
func (l *LocalStorage) Get(userID, name string) ([]byte, error) {
	path, err := l.path(userID, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// Delete removes a file from local storage
func (l *LocalStorage) Delete(userID, name string) error {
	path, err := l.path(userID, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}
