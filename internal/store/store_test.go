package store

import (
	"math"
	"testing"

	"github.com/eigerco/fury/internal/raffle"
	"github.com/eigerco/fury/pkg/db/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, cacheSize int) *Store {
	kv, err := pebble.NewKVStore()
	require.NoError(t, err)
	s, err := New(kv, cacheSize)
	require.NoError(t, err)
	t.Cleanup(func() {
		err := s.Close()
		require.NoError(t, err, "failed to close store")
	})
	return s
}

func initialize(t *testing.T, s *Store, admins ...raffle.Address) {
	tx := s.Begin()
	require.NoError(t, tx.PutAdminSet(raffle.NewAdminSet(admins)))
	require.NoError(t, tx.PutCounter(0))
	require.NoError(t, tx.Commit())
}

func TestStoreNotInitialized(t *testing.T) {
	s := newStore(t, 0)
	tx := s.Begin()
	defer tx.Discard()

	ok, err := tx.Initialized()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = tx.AdminSet()
	assert.ErrorIs(t, err, raffle.ErrNotInitialized)
	_, err = tx.IsAdmin("alice")
	assert.ErrorIs(t, err, raffle.ErrNotInitialized)
	_, err = tx.NextRoundID()
	assert.ErrorIs(t, err, raffle.ErrNotInitialized)

	c, err := tx.Custody()
	require.NoError(t, err)
	assert.Equal(t, raffle.Custody{}, c)
}

func TestAdminRegistry(t *testing.T) {
	s := newStore(t, 0)
	initialize(t, s, "alice", "bob")

	tx := s.Begin()
	defer tx.Discard()
	ok, err := tx.IsAdmin("bob")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = tx.IsAdmin("mallory")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNextRoundIDIsMonotonic(t *testing.T) {
	s := newStore(t, 16)
	initialize(t, s, "alice")

	var ids []raffle.RoundID
	for range 5 {
		tx := s.Begin()
		id, err := tx.NextRoundID()
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		ids = append(ids, id)
	}
	assert.Equal(t, []raffle.RoundID{0, 1, 2, 3, 4}, ids)

	tx := s.Begin()
	defer tx.Discard()
	next, err := tx.Counter()
	require.NoError(t, err)
	assert.Equal(t, raffle.RoundID(5), next)
}

func TestNextRoundIDWithinOneTransaction(t *testing.T) {
	s := newStore(t, 0)
	initialize(t, s, "alice")

	tx := s.Begin()
	first, err := tx.NextRoundID()
	require.NoError(t, err)
	second, err := tx.NextRoundID()
	require.NoError(t, err)
	assert.Equal(t, first+1, second)
	tx.Discard()

	// discarded allocations are not consumed
	tx = s.Begin()
	defer tx.Discard()
	id, err := tx.NextRoundID()
	require.NoError(t, err)
	assert.Equal(t, first, id)
}

func TestNextRoundIDOverflow(t *testing.T) {
	s := newStore(t, 0)
	tx := s.Begin()
	require.NoError(t, tx.PutCounter(math.MaxUint64))
	_, err := tx.NextRoundID()
	assert.ErrorIs(t, err, raffle.ErrArithmeticOverflow)
	tx.Discard()
}

func TestPutGetRound(t *testing.T) {
	for _, cacheSize := range []int{0, 8} {
		s := newStore(t, cacheSize)
		expected := raffle.Round{
			ID:           3,
			BeginTime:    100,
			EndTime:      200,
			MinimumStake: 10,
			Distribution: []uint32{2, 1},
			Players:      []raffle.Address{"alice", "bob"},
			Stakes:       []uint64{10, 15},
			Deposit:      25,
			Active:       true,
		}

		tx := s.Begin()
		require.NoError(t, tx.PutRound(expected))
		require.NoError(t, tx.Commit())

		tx = s.Begin()
		got, err := tx.Round(3)
		require.NoError(t, err)
		assert.Equal(t, expected, got)

		_, err = tx.Round(4)
		assert.ErrorIs(t, err, raffle.ErrRoundNotFound)
		tx.Discard()
	}
}

func TestTxReadsOwnWrites(t *testing.T) {
	s := newStore(t, 0)
	tx := s.Begin()
	require.NoError(t, tx.PutCustody(raffle.Custody{Total: 50, Rollover: 1}))
	c, err := tx.Custody()
	require.NoError(t, err)
	assert.Equal(t, uint64(50), c.Total)
	assert.True(t, tx.Dirty())

	// other transactions see only committed state
	other := s.Begin()
	c, err = other.Custody()
	require.NoError(t, err)
	assert.Zero(t, c.Total)
	other.Discard()

	require.NoError(t, tx.Commit())
	other = s.Begin()
	defer other.Discard()
	c, err = other.Custody()
	require.NoError(t, err)
	assert.Equal(t, uint64(50), c.Total)
	assert.Equal(t, uint64(1), c.Rollover)
}

func TestDiscardLeavesNoTrace(t *testing.T) {
	s := newStore(t, 8)
	tx := s.Begin()
	require.NoError(t, tx.PutRound(raffle.Round{ID: 1, Active: true}))
	tx.Discard()

	tx = s.Begin()
	defer tx.Discard()
	_, err := tx.Round(1)
	assert.ErrorIs(t, err, raffle.ErrRoundNotFound)
}

func TestTxDone(t *testing.T) {
	s := newStore(t, 0)
	tx := s.Begin()
	require.NoError(t, tx.Commit())

	assert.ErrorIs(t, tx.Commit(), ErrTxDone)
	assert.ErrorIs(t, tx.PutCounter(1), ErrTxDone)
	_, err := tx.Counter()
	assert.ErrorIs(t, err, ErrTxDone)
	tx.Discard()
}

func TestRoundsListing(t *testing.T) {
	s := newStore(t, 0)
	tx := s.Begin()
	// ids that would sort wrongly as little endian or decimal strings
	for _, id := range []raffle.RoundID{1, 2, 10, 256, 300} {
		require.NoError(t, tx.PutRound(raffle.Round{ID: id}))
	}
	require.NoError(t, tx.PutCustody(raffle.Custody{Total: 1}))
	require.NoError(t, tx.Commit())

	ids := func(rs []raffle.Round) []raffle.RoundID {
		out := make([]raffle.RoundID, 0, len(rs))
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	tx = s.Begin()
	defer tx.Discard()
	all, err := tx.Rounds(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []raffle.RoundID{1, 2, 10, 256, 300}, ids(all))

	after := raffle.RoundID(2)
	page, err := tx.Rounds(&after, 2)
	require.NoError(t, err)
	assert.Equal(t, []raffle.RoundID{10, 256}, ids(page))

	last := raffle.RoundID(300)
	page, err = tx.Rounds(&last, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestClosedStore(t *testing.T) {
	kv, err := pebble.NewKVStore()
	require.NoError(t, err)
	s, err := New(kv, 4)
	require.NoError(t, err)

	tx := s.Begin()
	require.NoError(t, tx.PutCounter(1))
	require.NoError(t, s.Close())
	assert.ErrorIs(t, tx.Commit(), ErrStoreClosed)

	tx = s.Begin()
	_, err = tx.Counter()
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.NoError(t, s.Close())
}

func TestPrefixToString(t *testing.T) {
	assert.Equal(t, "round", PrefixToString(prefixRound))
	assert.Equal(t, "unknown", PrefixToString(0xff))
}
