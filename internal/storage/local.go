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

// ErrInvalidPath is returned for storage paths that escape the base directory.
var ErrInvalidPath = errors.New("invalid storage path")

// Local stores blobs as files under a base directory.
type Local struct {
	baseDir string
}

// NewLocal creates a local blob store rooted at baseDir.
func NewLocal(baseDir string) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{baseDir: baseDir}, nil
}

// resolve maps a storage path onto the filesystem, rejecting traversal.
func (l *Local) resolve(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", ErrInvalidPath
	}
	return filepath.Join(l.baseDir, cleaned), nil
}

func (l *Local) Upload(_ context.Context, path string, r io.Reader, _ int64, _ string) error {
	target, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	// Write to a temp file in the same directory, then rename, so readers
	// never observe a partial blob.
	tmpFile, err := os.CreateTemp(filepath.Dir(target), "blob_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if _, err := io.Copy(tmpFile, r); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, target)
}

func (l *Local) Download(_ context.Context, path string) (io.ReadCloser, error) {
	target, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(target)
}

func (l *Local) Delete(_ context.Context, path string) error {
	target, err := l.resolve(path)
	if err != nil {
		return err
	}
	err = os.Remove(target)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (l *Local) List(_ context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(l.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), "blob_tmp_") {
			return nil
		}
		rel, err := filepath.Rel(l.baseDir, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// BaseDir returns the storage root.
func (l *Local) BaseDir() string {
	return l.baseDir
}

// Compile-time interface check
var _ BlobStore = (*Local)(nil)
