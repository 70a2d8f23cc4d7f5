package store

import (
	"encoding/binary"

	"github.com/eigerco/fury/internal/raffle"
)

const (
	ErrFailedBatchCommit = "failed to commit batch: %w"
)

// Prefix constants for all record types
const (
	prefixAdminSet byte = iota + 1
	prefixCounter
	prefixRound
	prefixCustody
)

// PrefixToString converts a prefix byte to a string
func PrefixToString(p byte) string {
	switch p {
	case prefixAdminSet:
		return "adminSet"
	case prefixCounter:
		return "counter"
	case prefixRound:
		return "round"
	case prefixCustody:
		return "custody"
	default:
		return "unknown"
	}
}

// makeKey creates a key from a prefix and an optional suffix
func makeKey(prefix byte, suffix []byte) []byte {
	key := make([]byte, 1+len(suffix))
	key[0] = prefix
	copy(key[1:], suffix)
	return key
}

// roundKey is [prefix(1 byte)][id(8 bytes, big endian)], so a prefix scan
// yields rounds in id order.
func roundKey(id raffle.RoundID) []byte {
	var suffix [8]byte
	binary.BigEndian.PutUint64(suffix[:], uint64(id))
	return makeKey(prefixRound, suffix[:])
}
