package store

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/eigerco/fury/pkg/db"
	"github.com/eigerco/fury/pkg/log"
	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	ErrStoreClosed = errors.New("raffle store is closed")
	ErrTxDone      = errors.New("transaction already committed or discarded")
)

// Store keeps the raffle state in a key-value store. All mutations go through
// a Tx so that one operation commits all of its writes or none of them.
type Store struct {
	db     db.KVStore
	cache  *lru.Cache[string, []byte]
	closed atomic.Bool
}

// New creates a raffle store over kv. cacheSize bounds the number of
// committed records kept in memory, zero disables the cache.
func New(kv db.KVStore, cacheSize int) (*Store, error) {
	s := &Store{db: kv}
	if cacheSize > 0 {
		cache, err := lru.New[string, []byte](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create record cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Begin starts a transaction. Reads see committed state overlaid with the
// transaction's own writes.
func (s *Store) Begin() *Tx {
	return &Tx{store: s, writes: make(map[string][]byte)}
}

func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.cache != nil {
		s.cache.Purge()
	}
	return s.db.Close()
}

func (s *Store) get(key []byte) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	if s.cache != nil {
		if v, ok := s.cache.Get(string(key)); ok {
			return v, nil
		}
	}
	v, err := s.db.Get(key)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(string(key), v)
	}
	return v, nil
}

// Tx buffers the writes of one operation.
type Tx struct {
	store  *Store
	writes map[string][]byte
	done   bool
}

func (tx *Tx) get(key []byte) ([]byte, error) {
	if tx.done {
		return nil, ErrTxDone
	}
	if v, ok := tx.writes[string(key)]; ok {
		return v, nil
	}
	return tx.store.get(key)
}

func (tx *Tx) put(key []byte, value []byte) error {
	if tx.done {
		return ErrTxDone
	}
	v := make([]byte, len(value))
	copy(v, value)
	tx.writes[string(key)] = v
	return nil
}

// Dirty reports whether the transaction holds uncommitted writes.
func (tx *Tx) Dirty() bool {
	return len(tx.writes) > 0
}

// Commit writes every buffered record in one batch.
func (tx *Tx) Commit() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	if len(tx.writes) == 0 {
		return nil
	}
	if tx.store.closed.Load() {
		return ErrStoreClosed
	}

	keys := make([]string, 0, len(tx.writes))
	for k := range tx.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	batch := tx.store.db.NewBatch()
	defer func() {
		if err := batch.Close(); err != nil {
			log.Store.Error().Err(err).Msg("error closing batch")
		}
	}()
	for _, k := range keys {
		if err := batch.Put([]byte(k), tx.writes[k]); err != nil {
			return fmt.Errorf("batch put %s: %w", PrefixToString(k[0]), err)
		}
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf(ErrFailedBatchCommit, err)
	}

	if tx.store.cache != nil {
		for _, k := range keys {
			tx.store.cache.Add(k, tx.writes[k])
		}
	}
	log.Store.Debug().Int("records", batch.Len()).Msg("transaction committed")
	return nil
}

// Discard drops the buffered writes. Discarding after Commit is a no-op.
func (tx *Tx) Discard() {
	if tx.done {
		return
	}
	tx.done = true
	if len(tx.writes) > 0 {
		log.Store.Debug().Int("records", len(tx.writes)).Msg("transaction discarded")
	}
	tx.writes = nil
}
