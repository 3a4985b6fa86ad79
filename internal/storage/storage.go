// Package storage keeps uploaded post images on local disk. Stored names are
// opaque UUIDs so client-supplied filenames never reach the filesystem.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store is a local-disk image store.
type Store struct {
	dir string
	log *logrus.Logger
}

// NewStore creates the upload directory if needed and returns a store over it.
func NewStore(dir string, log *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: dir, log: log}, nil
}

// Save writes the uploaded content under a fresh UUID name, keeping only the
// extension of the original filename, and returns the stored name.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.log.Infof("Image stored: %s", name)
	return name, nil
}

// Remove deletes a stored image by name.
func (s *Store) Remove(name string) error {
	// Stored names are UUIDs; reject anything that tries to escape the dir.
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid image name: %q", name)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}

// List returns the names of all stored images.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
