package thumb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAt(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestFileIDStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mkv")
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	writeAt(t, path, strings.Repeat("x", 100), mtime)

	a, err := FileID(path, 16, false)
	require.NoError(t, err)
	b, err := FileID(path, 16, false)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
	assert.Equal(t, a+".jpg", ImageName(a))
}

func TestFileIDTracksMtime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mkv")
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	writeAt(t, path, "same", mtime)
	a, err := FileID(path, 16, false)
	require.NoError(t, err)

	require.NoError(t, os.Chtimes(path, mtime, mtime.Add(time.Second)))
	b, err := FileID(path, 16, false)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFileIDSampling(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	head, tail := strings.Repeat("h", 8), strings.Repeat("t", 8)

	// Same size, mtime, head and tail; only the middle differs.
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	writeAt(t, a, head+"middle-1"+tail, mtime)
	writeAt(t, b, head+"middle-2"+tail, mtime)

	ida, err := FileID(a, 8, false)
	require.NoError(t, err)
	idb, err := FileID(b, 8, false)
	require.NoError(t, err)
	assert.Equal(t, ida, idb, "sampled hash ignores the middle")

	ida, err = FileID(a, 8, true)
	require.NoError(t, err)
	idb, err = FileID(b, 8, true)
	require.NoError(t, err)
	assert.NotEqual(t, ida, idb, "entire hash covers the middle")
}

func TestFileIDTailChunk(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	writeAt(t, a, "headheadAAAA", mtime)
	writeAt(t, b, "headheadBBBB", mtime)

	ida, err := FileID(a, 8, false)
	require.NoError(t, err)
	idb, err := FileID(b, 8, false)
	require.NoError(t, err)
	assert.NotEqual(t, ida, idb)
}

func TestFileIDErrors(t *testing.T) {
	_, err := FileID(filepath.Join(t.TempDir(), "missing"), 16, false)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "a")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	_, err = FileID(path, 0, false)
	assert.Error(t, err)

	_, err = FileID(path, 16, false)
	assert.NoError(t, err, "empty files hash fine")
}
