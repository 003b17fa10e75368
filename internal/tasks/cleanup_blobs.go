package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// BlobLister enumerates and deletes blobs in the attachment store.
type BlobLister interface {
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, path string) error
}

// AttachmentIndex exposes the attachment metadata needed for reconciliation.
type AttachmentIndex interface {
	AllStoragePaths() ([]string, error)
	DeleteByStoragePath(path string) (int64, error)
}

// CleanupOrphanBlobsTask reconciles the blob store against attachment metadata.
// Blobs with no metadata row are deleted; metadata rows whose blob is gone are
// removed so listings never reference files that cannot be downloaded.
type CleanupOrphanBlobsTask struct{}

// Config returns the queue configuration for blob cleanup tasks.
func (t CleanupOrphanBlobsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_orphan_blobs",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupOrphanBlobsProcessor creates a processor function for CleanupOrphanBlobsTask.
func CleanupOrphanBlobsProcessor(store BlobLister, index AttachmentIndex) backlite.QueueProcessor[CleanupOrphanBlobsTask] {
	return func(ctx context.Context, task CleanupOrphanBlobsTask) error {
		if store == nil || index == nil {
			return fmt.Errorf("blob cleanup not configured")
		}

		stored, err := store.List(ctx)
		if err != nil {
			return fmt.Errorf("list blobs: %w", err)
		}

		indexed, err := index.AllStoragePaths()
		if err != nil {
			return fmt.Errorf("list attachment paths: %w", err)
		}

		known := make(map[string]struct{}, len(indexed))
		for _, p := range indexed {
			known[p] = struct{}{}
		}
		present := make(map[string]struct{}, len(stored))
		for _, p := range stored {
			present[p] = struct{}{}
		}

		var deletedBlobs int
		for _, p := range stored {
			if _, ok := known[p]; ok {
				continue
			}
			if err := store.Delete(ctx, p); err != nil {
				log.Printf("[TASK] Failed to delete orphan blob %s: %v", p, err)
				continue
			}
			deletedBlobs++
		}

		var deletedRows int64
		for _, p := range indexed {
			if _, ok := present[p]; ok {
				continue
			}
			n, err := index.DeleteByStoragePath(p)
			if err != nil {
				log.Printf("[TASK] Failed to delete stale attachment row %s: %v", p, err)
				continue
			}
			deletedRows += n
		}

		log.Printf("[TASK] Blob cleanup: removed %d orphan blobs, %d stale attachment rows", deletedBlobs, deletedRows)
		return nil
	}
}

// NewCleanupOrphanBlobsQueue creates a backlite queue for blob cleanup tasks.
func NewCleanupOrphanBlobsQueue(store BlobLister, index AttachmentIndex) backlite.Queue {
	return backlite.NewQueue(CleanupOrphanBlobsProcessor(store, index))
}
