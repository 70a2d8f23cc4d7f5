package testutils

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/eigerco/fury/internal/crypto"
	"github.com/eigerco/fury/internal/raffle"
	"github.com/eigerco/fury/internal/store"
	"github.com/eigerco/fury/pkg/db/pebble"
	"github.com/stretchr/testify/require"
)

const StakingDenom = "ufury"

func RandomHash(t *testing.T) crypto.Hash {
	hash := make([]byte, crypto.HashSize)
	_, err := rand.Read(hash)
	require.NoError(t, err)
	return crypto.Hash(hash)
}

// NewStore returns a raffle store over a fresh in-memory pebble database,
// closed when the test ends.
func NewStore(t *testing.T) *store.Store {
	kv, err := pebble.NewKVStore()
	require.NoError(t, err)
	s, err := store.New(kv, 32)
	require.NoError(t, err)
	t.Cleanup(func() {
		err := s.Close()
		require.NoError(t, err, "failed to close store")
	})
	return s
}

// Initialize writes the admin set and a zero counter.
func Initialize(t *testing.T, s *store.Store, admins ...raffle.Address) {
	tx := s.Begin()
	require.NoError(t, tx.PutAdminSet(raffle.NewAdminSet(admins)))
	require.NoError(t, tx.PutCounter(0))
	require.NoError(t, tx.Commit())
}

// PutRound commits r as is.
func PutRound(t *testing.T, s *store.Store, r raffle.Round) {
	tx := s.Begin()
	require.NoError(t, tx.PutRound(r))
	require.NoError(t, tx.Commit())
}

// GetRound reads the committed round id.
func GetRound(t *testing.T, s *store.Store, id raffle.RoundID) raffle.Round {
	tx := s.Begin()
	defer tx.Discard()
	r, err := tx.Round(id)
	require.NoError(t, err)
	return r
}

// GetCustody reads the committed custody record.
func GetCustody(t *testing.T, s *store.Store) raffle.Custody {
	tx := s.Begin()
	defer tx.Discard()
	c, err := tx.Custody()
	require.NoError(t, err)
	return c
}

// Players returns n distinct addresses.
func Players(n int) []raffle.Address {
	out := make([]raffle.Address, n)
	for i := range out {
		out[i] = raffle.Address(fmt.Sprintf("player-%d", i))
	}
	return out
}

func Stake(amount uint64) []raffle.Coin {
	return []raffle.Coin{raffle.NewCoin(StakingDenom, amount)}
}
