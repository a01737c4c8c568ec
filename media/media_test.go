package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), "local", nil)
	require.NoError(t, err)
	return store
}

func textFile(name, content string) *File {
	return &File{
		Name:        name,
		ContentType: "text/plain",
		Size:        int64(len(content)),
		Content:     []byte(content),
	}
}

func TestLocalStoreAddAndGet(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	attachment, err := store.Add(ctx, "user", "1", "documents", textFile("cv.txt", "hello"))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, attachment.ID)
	assert.Equal(t, "documents", attachment.Collection)
	assert.Equal(t, "local", attachment.Disk)
	assert.Equal(t, "text/plain", attachment.MimeType)
	assert.Equal(t, int64(5), attachment.Size)
	assert.Contains(t, attachment.FileName, "cv.txt")

	// File exists on disk under the collection path
	path := filepath.Join(store.root, "user", "1", "documents", attachment.FileName)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	list, err := store.Get(ctx, "user", "1", "documents")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, attachment.ID, list[0].ID)
}

func TestLocalStoreInsertionOrder(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first, err := store.Add(ctx, "user", "1", "gallery", textFile("a.txt", "a"))
	require.NoError(t, err)
	second, err := store.Add(ctx, "user", "1", "gallery", textFile("b.txt", "b"))
	require.NoError(t, err)

	list, err := store.Get(ctx, "user", "1", "gallery")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestLocalStoreCollectionsAreIsolated(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, "user", "1", "documents", textFile("a.txt", "a"))
	require.NoError(t, err)
	_, err = store.Add(ctx, "user", "2", "documents", textFile("b.txt", "b"))
	require.NoError(t, err)

	list, err := store.Get(ctx, "user", "1", "documents")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLocalStoreClear(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	attachment, err := store.Add(ctx, "user", "1", "documents", textFile("a.txt", "a"))
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx, "user", "1", "documents"))

	list, err := store.Get(ctx, "user", "1", "documents")
	require.NoError(t, err)
	assert.Empty(t, list)

	path := filepath.Join(store.root, "user", "1", "documents", attachment.FileName)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	// Removing by the old id now fails
	assert.Error(t, store.Remove(ctx, attachment.ID))
}

func TestLocalStoreRemove(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first, err := store.Add(ctx, "user", "1", "gallery", textFile("a.txt", "a"))
	require.NoError(t, err)
	second, err := store.Add(ctx, "user", "1", "gallery", textFile("b.txt", "b"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, first.ID))

	list, err := store.Get(ctx, "user", "1", "gallery")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
}
