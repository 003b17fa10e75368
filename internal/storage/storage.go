// Package storage persists attachment binaries. Metadata lives in the
// database; the two are reconciled by a background task so neither side
// outlives the other.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BlobStore is the binary side of attachment storage. Implementations:
// Local (filesystem) and S3 (S3-compatible object store).
type BlobStore interface {
	// Upload persists the blob under path. Size may be -1 when unknown.
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error

	// Download returns the blob's contents. The caller closes the reader.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, path string) error

	// List enumerates every stored path. Used by the reconciliation task.
	List(ctx context.Context) ([]string, error)
}

// NewStorageKey generates an opaque, unique locator for one upload,
// preserving the original extension for content-type inference.
func NewStorageKey(fileName string) string {
	now := time.Now()
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("attachments/%d/%02d/%s%s", now.Year(), int(now.Month()), uuid.New(), ext)
}
