package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiskStore_UploadAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewDiskStore(root, "http://localhost:8080/media/")
	require.NoError(t, err)

	src := writeSource(t, "photo.JPG", "fake image bytes")

	asset, err := store.Upload(context.Background(), src)
	require.NoError(t, err)
	require.NotEmpty(t, asset.ID)
	assert.True(t, strings.HasPrefix(asset.URL, "http://localhost:8080/media/"))
	assert.True(t, strings.HasSuffix(asset.URL, ".jpg"), "extension should be lowercased: %s", asset.URL)

	// The hosted file holds the source bytes.
	rel := strings.TrimPrefix(asset.URL, "http://localhost:8080/media/")
	hosted := filepath.Join(root, filepath.FromSlash(rel))
	b, err := os.ReadFile(hosted)
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(b))

	ok, err := store.Delete(context.Background(), asset.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = os.Stat(hosted)
	assert.True(t, os.IsNotExist(err))
}

func TestDiskStore_DeleteUnknownID(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)

	ok, err := store.Delete(context.Background(), "no-such-asset")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDiskStore_UploadMissingSource(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestDiskStore_IndexSurvivesRestart(t *testing.T) {
	root := t.TempDir()
	store, err := NewDiskStore(root, "http://localhost/media")
	require.NoError(t, err)

	src := writeSource(t, "clip.mp4", "video bytes")
	asset, err := store.Upload(context.Background(), src)
	require.NoError(t, err)

	// A fresh store over the same root can still delete by id.
	reopened, err := NewDiskStore(root, "http://localhost/media")
	require.NoError(t, err)
	ok, err := reopened.Delete(context.Background(), asset.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteAll_CollectsPerItemResults(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)

	src := writeSource(t, "a.png", "a")
	asset, err := store.Upload(context.Background(), src)
	require.NoError(t, err)

	results := DeleteAll(context.Background(), store, []string{asset.ID, "ghost"})
	require.Len(t, results, 2)
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)

	failed := Failures(results)
	require.Len(t, failed, 1)
	assert.Equal(t, "ghost", failed[0].ID)
}

func TestDiskStore_CancelledContext(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Upload(ctx, "whatever.png")
	assert.ErrorIs(t, err, context.Canceled)
}
