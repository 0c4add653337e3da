package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore implements BlobStore on the local filesystem with two directory
// roots: a private one for downloadable files and a public one for images.
// Image paths are stored with the public URL prefix so they can be served
// directly.
type LocalStore struct {
	privateDir   string
	publicDir    string
	publicPrefix string
}

// NewLocalStore creates a filesystem-backed BlobStore. publicPrefix is the
// URL path segment under which the public directory is served, e.g. "/products".
func NewLocalStore(privateDir, publicDir, publicPrefix string) *LocalStore {
	return &LocalStore{
		privateDir:   privateDir,
		publicDir:    publicDir,
		publicPrefix: strings.TrimSuffix(publicPrefix, "/"),
	}
}

// Put writes data under the root selected by kind. The parent directory is
// created on demand.
func (s *LocalStore) Put(_ context.Context, kind Kind, originalName string, data []byte) (string, error) {
	name := NewBlobName(originalName)
	fsPath, storedPath := s.resolveNew(kind, name)

	if err := os.MkdirAll(filepath.Dir(fsPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s asset directory: %w", kind, err)
	}
	if err := os.WriteFile(fsPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s asset: %w", kind, err)
	}
	return storedPath, nil
}

// Open returns a reader over a previously stored blob.
func (s *LocalStore) Open(_ context.Context, kind Kind, path string) (io.ReadCloser, error) {
	f, err := os.Open(s.resolve(kind, path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s asset %q: %w", kind, path, err)
	}
	return f, nil
}

// Remove deletes a stored blob. An already-missing blob is not an error, so
// deletion stays idempotent against earlier partial cleanup.
func (s *LocalStore) Remove(_ context.Context, kind Kind, path string) error {
	if err := os.Remove(s.resolve(kind, path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s asset %q: %w", kind, path, err)
	}
	return nil
}

// resolveNew returns the filesystem path to write to and the path to persist
// on the product row for a freshly named blob.
func (s *LocalStore) resolveNew(kind Kind, name string) (fsPath, storedPath string) {
	if kind == KindImage {
		return filepath.Join(s.publicDir, name), s.publicPrefix + "/" + name
	}
	p := filepath.Join(s.privateDir, name)
	return p, p
}

// resolve maps a stored path back to its filesystem location.
func (s *LocalStore) resolve(kind Kind, path string) string {
	if kind == KindImage {
		name := strings.TrimPrefix(path, s.publicPrefix+"/")
		return filepath.Join(s.publicDir, filepath.Base(name))
	}
	return path
}
