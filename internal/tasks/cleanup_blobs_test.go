package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlobStore struct {
	blobs   map[string]bool
	listErr error
}

func (s *fakeBlobStore) List(ctx context.Context) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var paths []string
	for p := range s.blobs {
		paths = append(paths, p)
	}
	return paths, nil
}

func (s *fakeBlobStore) Delete(ctx context.Context, path string) error {
	delete(s.blobs, path)
	return nil
}

type fakeIndex struct {
	paths   map[string]bool
	listErr error
}

func (i *fakeIndex) AllStoragePaths() ([]string, error) {
	if i.listErr != nil {
		return nil, i.listErr
	}
	var paths []string
	for p := range i.paths {
		paths = append(paths, p)
	}
	return paths, nil
}

func (i *fakeIndex) DeleteByStoragePath(path string) (int64, error) {
	if !i.paths[path] {
		return 0, nil
	}
	delete(i.paths, path)
	return 1, nil
}

func TestCleanupOrphanBlobsProcessor(t *testing.T) {
	ctx := context.Background()

	t.Run("removes blobs without metadata and rows without blobs", func(t *testing.T) {
		store := &fakeBlobStore{blobs: map[string]bool{
			"attachments/a/kept.pdf":   true,
			"attachments/b/orphan.pdf": true,
		}}
		index := &fakeIndex{paths: map[string]bool{
			"attachments/a/kept.pdf":   true,
			"attachments/c/stale.docx": true,
		}}

		processor := CleanupOrphanBlobsProcessor(store, index)
		require.NoError(t, processor(ctx, CleanupOrphanBlobsTask{}))

		assert.True(t, store.blobs["attachments/a/kept.pdf"], "matched blob survives")
		assert.False(t, store.blobs["attachments/b/orphan.pdf"], "orphan blob is deleted")
		assert.True(t, index.paths["attachments/a/kept.pdf"], "matched row survives")
		assert.False(t, index.paths["attachments/c/stale.docx"], "stale row is deleted")
	})

	t.Run("nothing to do is fine", func(t *testing.T) {
		store := &fakeBlobStore{blobs: map[string]bool{"attachments/a/kept.pdf": true}}
		index := &fakeIndex{paths: map[string]bool{"attachments/a/kept.pdf": true}}

		processor := CleanupOrphanBlobsProcessor(store, index)
		require.NoError(t, processor(ctx, CleanupOrphanBlobsTask{}))
		assert.Len(t, store.blobs, 1)
		assert.Len(t, index.paths, 1)
	})

	t.Run("propagates listing failures", func(t *testing.T) {
		processor := CleanupOrphanBlobsProcessor(
			&fakeBlobStore{listErr: errors.New("s3 down")},
			&fakeIndex{},
		)
		assert.Error(t, processor(ctx, CleanupOrphanBlobsTask{}))
	})

	t.Run("fails when not wired", func(t *testing.T) {
		processor := CleanupOrphanBlobsProcessor(nil, nil)
		assert.Error(t, processor(ctx, CleanupOrphanBlobsTask{}))
	})
}

func TestCleanupOrphanBlobsTask_Config(t *testing.T) {
	cfg := CleanupOrphanBlobsTask{}.Config()
	assert.Equal(t, "cleanup_orphan_blobs", cfg.Name)
	assert.Equal(t, 1, cfg.MaxAttempts)
}
