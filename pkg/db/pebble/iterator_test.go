package pebble

import (
	"testing"

	"github.com/eigerco/fury/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	key   []byte
	value string
}

// collect drains iter and returns what it visited.
func collect(t *testing.T, iter db.Iterator) []entry {
	var out []entry
	for iter.Next() {
		v, err := iter.Value()
		require.NoError(t, err)
		out = append(out, entry{key: iter.Key(), value: string(v)})
	}
	return out
}

func TestIteratorRanges(t *testing.T) {
	records := []entry{
		{[]byte{0x01}, "admins"},
		{[]byte{0x02}, "counter"},
		{[]byte{0x03, 0, 1}, "round 1"},
		{[]byte{0x03, 0, 2}, "round 2"},
		{[]byte{0x03, 1, 0}, "round 256"},
		{[]byte{0x04}, "custody"},
	}
	rounds := []byte{0x03}

	tests := []struct {
		name       string
		start, end []byte
		want       []string
	}{
		{"unbounded", nil, nil, []string{"admins", "counter", "round 1", "round 2", "round 256", "custody"}},
		{"prefix", rounds, db.PrefixEnd(rounds), []string{"round 1", "round 2", "round 256"}},
		{"start inside prefix", []byte{0x03, 0, 2}, db.PrefixEnd(rounds), []string{"round 2", "round 256"}},
		{"end is exclusive", []byte{0x01}, []byte{0x03}, []string{"admins", "counter"}},
		{"empty range", []byte{0x05}, nil, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore(t)
			// insert out of order, iteration is by key
			for i := len(records) - 1; i >= 0; i-- {
				require.NoError(t, store.Put(records[i].key, []byte(records[i].value)))
			}

			iter, err := store.NewIterator(tc.start, tc.end)
			require.NoError(t, err)
			defer iter.Close() //nolint:errcheck // read only

			var got []string
			for _, e := range collect(t, iter) {
				got = append(got, e.value)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIteratorPositioning(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put([]byte("a"), []byte("1")))
	require.NoError(t, store.Put([]byte("b"), []byte("2")))

	iter, err := store.NewIterator(nil, nil)
	require.NoError(t, err)

	assert.False(t, iter.Valid(), "unpositioned before the first Next")
	assert.Nil(t, iter.Key())
	_, err = iter.Value()
	assert.ErrorIs(t, err, ErrIteratorInvalid)

	assert.True(t, iter.Next())
	assert.Equal(t, []byte("a"), iter.Key())
	assert.True(t, iter.Next())
	assert.Equal(t, []byte("b"), iter.Key())

	assert.False(t, iter.Next())
	assert.False(t, iter.Valid())
	assert.False(t, iter.Next(), "an exhausted iterator does not restart")

	require.NoError(t, iter.Close())
	assert.NoError(t, iter.Close())
	assert.False(t, iter.Next())
}

func TestIteratorReturnsCopies(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put([]byte("k"), []byte("v")))

	iter, err := store.NewIterator(nil, nil)
	require.NoError(t, err)
	defer iter.Close() //nolint:errcheck // read only

	require.True(t, iter.Next())
	key := iter.Key()
	val, err := iter.Value()
	require.NoError(t, err)
	key[0], val[0] = 'x', 'x'

	assert.Equal(t, []byte("k"), iter.Key())
	again, err := iter.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), again)
}

func TestIteratorOnClosedStore(t *testing.T) {
	store, err := NewKVStore()
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.NewIterator(nil, nil)
	assert.ErrorIs(t, err, ErrClosed)
}
