package storage

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeepNewestDeletesOldest(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"voice_a.mp3", "voice_b.mp3", "voice_c.mp3"} {
		_, err := store.Save(name, []byte("x"))
		require.NoError(t, err)
		ts := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(store.Path(name), ts, ts))
	}
	_, err = store.Save("other.txt", []byte("keep"))
	require.NoError(t, err)

	deleted, err := store.KeepNewest("voice_", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"voice_a.mp3"}, deleted)

	files, err := store.List("voice_")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "voice_c.mp3", files[0].Name)
	assert.True(t, store.Exists("other.txt"))
}

func TestResolveStaysInsideBaseDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("../../escape.mp3", []byte("x"))
	require.NoError(t, err)
	assert.True(t, store.Exists("escape.mp3"))
}

func TestDeleteMissingFileIsNoop(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Delete("missing.mp3"))
}

func TestOpenReadsStoredFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	_, err = store.Save("voice_en_hi.mp3", []byte("ID3"))
	require.NoError(t, err)

	f, err := store.Open("voice_en_hi.mp3")
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "ID3", string(data))

	_, err = store.Open("voice_en_missing.mp3")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
