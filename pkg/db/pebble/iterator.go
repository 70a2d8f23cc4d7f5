package pebble

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/eigerco/fury/pkg/db"
)

// Iterator walks the keys in [start, end) in ascending order. It starts
// unpositioned; the first Next moves it to the first key.
type Iterator struct {
	iter    *pebble.Iterator
	started bool
	closed  bool
}

func (p *KVStore) NewIterator(start, end []byte) (db.Iterator, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrClosed
	}
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: start,
		UpperBound: end,
	})
	if err != nil {
		return nil, fmt.Errorf(ErrInIteratorCreation, err)
	}
	return &Iterator{iter: iter}, nil
}

// Next advances the iterator. Once it has returned false it keeps returning
// false.
func (it *Iterator) Next() bool {
	if it.closed {
		return false
	}
	if !it.started {
		it.started = true
		return it.iter.First()
	}
	if !it.iter.Valid() {
		return false
	}
	return it.iter.Next()
}

// Key returns a copy of the current key, or nil when unpositioned.
func (it *Iterator) Key() []byte {
	if !it.Valid() {
		return nil
	}
	return cloneBytes(it.iter.Key())
}

func (it *Iterator) Value() ([]byte, error) {
	if !it.Valid() {
		return nil, ErrIteratorInvalid
	}
	val, err := it.iter.ValueAndErr()
	if err != nil {
		return nil, fmt.Errorf(ErrIteratorValue, err)
	}
	return cloneBytes(val), nil
}

func (it *Iterator) Valid() bool {
	return !it.closed && it.started && it.iter.Valid()
}

func (it *Iterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.iter.Close()
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
