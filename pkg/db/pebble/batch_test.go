package pebble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *KVStore {
	store, err := NewKVStore()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestBatchAppliesAllOperations(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put([]byte{0x04}, []byte("custody v1")))

	batch := store.NewBatch()
	defer batch.Close() //nolint:errcheck // committed below

	require.NoError(t, batch.Put([]byte{0x03, 0, 0, 0, 0, 0, 0, 0, 1}, []byte("round 1")))
	require.NoError(t, batch.Put([]byte{0x04}, []byte("custody v2")))
	require.NoError(t, batch.Delete([]byte{0x02}))
	assert.Equal(t, 3, batch.Len())

	// nothing is visible before commit
	v, err := store.Get([]byte{0x04})
	require.NoError(t, err)
	assert.Equal(t, []byte("custody v1"), v)
	_, err = store.Get([]byte{0x03, 0, 0, 0, 0, 0, 0, 0, 1})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, batch.Commit())

	v, err = store.Get([]byte{0x04})
	require.NoError(t, err)
	assert.Equal(t, []byte("custody v2"), v)
	v, err = store.Get([]byte{0x03, 0, 0, 0, 0, 0, 0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, []byte("round 1"), v)
}

func TestBatchIsSingleUse(t *testing.T) {
	store := newTestStore(t)
	batch := store.NewBatch()
	require.NoError(t, batch.Put([]byte("k"), []byte("v")))
	require.NoError(t, batch.Commit())

	assert.ErrorIs(t, batch.Put([]byte("k2"), []byte("v2")), ErrBatchDone)
	assert.ErrorIs(t, batch.Delete([]byte("k")), ErrBatchDone)
	assert.ErrorIs(t, batch.Commit(), ErrBatchDone)
	assert.NoError(t, batch.Close())
	assert.NoError(t, batch.Close())
}

func TestDiscardedBatchWritesNothing(t *testing.T) {
	store := newTestStore(t)
	batch := store.NewBatch()
	require.NoError(t, batch.Put([]byte("k"), []byte("v")))
	require.NoError(t, batch.Close())

	assert.ErrorIs(t, batch.Commit(), ErrBatchDone)
	_, err := store.Get([]byte("k"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBatchCommitAfterStoreClose(t *testing.T) {
	store, err := NewKVStore()
	require.NoError(t, err)
	batch := store.NewBatch()
	require.NoError(t, batch.Put([]byte("k"), []byte("v")))
	require.NoError(t, store.Close())

	assert.ErrorIs(t, batch.Commit(), ErrClosed)
	assert.NoError(t, batch.Close())
}
