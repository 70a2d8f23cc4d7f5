package pebble

import (
	"fmt"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/eigerco/fury/pkg/db"
)

// Batch records writes that Commit applies atomically and synced to disk.
type Batch struct {
	store  *KVStore
	batch  *pebble.Batch
	done   atomic.Bool
	closed atomic.Bool
}

func (p *KVStore) NewBatch() db.Batch {
	return &Batch{
		store: p,
		batch: p.db.NewBatch(),
	}
}

func (b *Batch) Put(key, value []byte) error {
	if b.done.Load() {
		return ErrBatchDone
	}
	return b.batch.Set(key, value, nil)
}

func (b *Batch) Delete(key []byte) error {
	if b.done.Load() {
		return ErrBatchDone
	}
	return b.batch.Delete(key, nil)
}

func (b *Batch) Len() int {
	return int(b.batch.Count())
}

// Commit applies the batch. It fails with ErrClosed instead of writing to a
// store closed after the batch was created.
func (b *Batch) Commit() error {
	if b.done.Load() {
		return ErrBatchDone
	}
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()
	if b.store.closed {
		return ErrClosed
	}
	if err := b.batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("kv-store: commit %d operations: %w", b.Len(), err)
	}
	b.done.Store(true)
	return nil
}

// Close releases the batch, committed or not. Later writes fail with
// ErrBatchDone.
func (b *Batch) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	b.done.Store(true)
	return b.batch.Close()
}
