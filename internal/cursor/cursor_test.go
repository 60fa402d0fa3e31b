package cursor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReadsZero(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(filepath.Join(t.TempDir(), "offset.txt"))
	require.NoError(t, err)

	seq, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)
}

func TestAdvanceSurvivesRestart(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "offset.txt")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Advance(5))
	require.NoError(t, store.Advance(7))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	seq, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
}

func TestLoadToleratesSurroundingWhitespace(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "offset.txt")
	require.NoError(t, os.WriteFile(path, []byte(" 42\n"), 0o600))

	store, err := NewFileStore(path)
	require.NoError(t, err)
	seq, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(42), seq)
}

func TestLoadCorruptFileIsAnError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "offset.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a number"), 0o600))

	store, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = store.Load()
	assert.Error(t, err)
}
