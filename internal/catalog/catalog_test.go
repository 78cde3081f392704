package catalog

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBeginComplete(t *testing.T) {
	store := openTestStore(t)

	run, err := store.Begin(KindStream)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, StatusRunning, run.Status)
	assert.NotEmpty(t, run.ID)

	require.NoError(t, store.Complete(run, 180, 175))
	assert.Equal(t, StatusCompleted, run.Status)
	require.NotNil(t, run.CompletedAt)

	runs, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, KindStream, runs[0].Kind)
	assert.Equal(t, StatusCompleted, runs[0].Status)
	assert.Equal(t, 180, runs[0].TokenCount)
	assert.Equal(t, 175, runs[0].BookCount)
	assert.NotNil(t, runs[0].CompletedAt)
}

func TestFail(t *testing.T) {
	store := openTestStore(t)

	run, err := store.Begin(KindSnapshot)
	require.NoError(t, err)

	require.NoError(t, store.Fail(run, errors.New("gamma returned 503")))

	runs, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusFailed, runs[0].Status)
	assert.Equal(t, "gamma returned 503", runs[0].Error)
}

func TestRecentOrderAndLimit(t *testing.T) {
	store := openTestStore(t)

	var ids []string
	for i := 0; i < 5; i++ {
		run, err := store.Begin(KindRefine)
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	runs, err := store.Recent(3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
	for _, r := range runs {
		assert.Contains(t, ids, r.ID)
	}
}

func TestNilStoreIsNoop(t *testing.T) {
	var store *Store

	run, err := store.Begin(KindStream)
	assert.NoError(t, err)
	assert.Nil(t, run)
	assert.NoError(t, store.Complete(run, 1, 1))
	assert.NoError(t, store.Fail(run, errors.New("x")))
	assert.NoError(t, store.Close())

	runs, err := store.Recent(5)
	assert.NoError(t, err)
	assert.Nil(t, runs)
}

func TestOpenReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	store, err := Open(path)
	require.NoError(t, err)
	run, err := store.Begin(KindStream)
	require.NoError(t, err)
	require.NoError(t, store.Complete(run, 1, 2))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
}
