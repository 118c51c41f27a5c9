package checkpoint

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSQLiteStore creates a store backed by a temp file.
func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "checkpoints.db"))
	require.NoError(t, err)
	return store
}

// TestSQLiteStore_Contract runs the shared contract suite.
func TestSQLiteStore_Contract(t *testing.T) {
	storeUnderTest(t, newTestSQLiteStore(t))
}

// TestSQLiteStore_PersistsAcrossReopen verifies data survives
// closing and reopening the database file.
func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoints.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save("run-1", 1, []byte("persisted")))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	data, err := reopened.Latest("run-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), data)
}

// TestSQLiteStore_BadPath verifies unusable paths fail at open.
func TestSQLiteStore_BadPath(t *testing.T) {
	_, err := NewSQLiteStore(filepath.Join(t.TempDir(), "missing", "nested", "db.sqlite"))
	assert.Error(t, err)
}

// TestSQLiteStore_CloseIdempotent verifies double close is safe.
func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store := newTestSQLiteStore(t)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
