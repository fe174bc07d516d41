package attachments

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ground-x/feedscore/types"
)

func newTestStore(t *testing.T) *Store {
	dir := t.TempDir()
	return NewStore(dir)
}

func TestSaveAndRetrieveRoundTrip(t *testing.T) {
	store := newTestStore(t)
	id := types.AttachmentId{1, 2, 3}

	require.NoError(t, store.Save(id, []byte("original bytes"), []byte("thumb bytes")))

	original, thumbnail, found, err := store.Retrieve(id)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("original bytes"), original)
	assert.Equal(t, []byte("thumb bytes"), thumbnail)
}

func TestRetrieveMissingIsNotFoundNotError(t *testing.T) {
	store := newTestStore(t)
	_, _, found, err := store.Retrieve(types.AttachmentId{9, 9})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	id := types.AttachmentId{4, 5, 6}
	require.NoError(t, store.Save(id, []byte("a"), []byte("b")))

	require.NoError(t, store.Delete(id))
	// deleting again must not error even though the files are already gone.
	require.NoError(t, store.Delete(id))

	_, _, found, err := store.Retrieve(id)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveIsAtomicNoPartialFileLeftOnPath(t *testing.T) {
	store := newTestStore(t)
	id := types.AttachmentId{7, 7, 7}
	require.NoError(t, store.Save(id, []byte("x"), []byte("y")))

	// no leftover .tmp file from the rename-based write.
	entries, err := os.ReadDir(store.dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestCleanupOrphansRemovesOldFilesOnly(t *testing.T) {
	store := newTestStore(t)
	oldID := types.AttachmentId{1}
	freshID := types.AttachmentId{2}

	require.NoError(t, store.Save(oldID, []byte("stale"), nil))
	require.NoError(t, store.Save(freshID, []byte("fresh"), nil))

	oldTime := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(store.originalPath(oldID), oldTime, oldTime))

	removed, err := store.CleanupOrphans(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, _, foundOld, _ := store.Retrieve(oldID)
	_, _, foundFresh, _ := store.Retrieve(freshID)
	assert.False(t, foundOld)
	assert.True(t, foundFresh)
}
