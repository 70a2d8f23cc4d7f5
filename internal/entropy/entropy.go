// Package entropy derives the reproducible randomness used to draw winners.
// Every input comes from the block being executed, so all replicas compute
// the same stream without communicating.
package entropy

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/eigerco/fury/internal/crypto"
	"github.com/eigerco/fury/internal/raffle"
	"github.com/zeebo/blake3"
)

// Domain separates winner selection seeds from any other use of the same inputs.
const Domain = "fury/winner-selection/v1"

// DeriveSeed hashes the block height, the requesting identity, the round
// being drawn and the extra entropy bytes of the block into a seed.
func DeriveSeed(height uint64, caller raffle.Address, round raffle.RoundID, extra []byte) crypto.Hash {
	return crypto.NewHasher(Domain).
		WriteUint64(height).
		WriteString(string(caller)).
		WriteUint64(uint64(round)).
		WriteBytes(extra).
		Sum()
}

// Stream is an unbounded pseudo-random byte stream expanded from a seed with
// the blake3 extendable output function.
type Stream struct {
	digest *blake3.Digest
}

func NewStream(seed crypto.Hash) *Stream {
	h := blake3.New()
	_, _ = h.Write(seed[:])
	return &Stream{digest: h.Digest()}
}

// NextUint32 reads the next four bytes of the stream as a little endian integer.
func (s *Stream) NextUint32() uint32 {
	var b [4]byte
	if _, err := io.ReadFull(s.digest, b[:]); err != nil {
		panic(fmt.Sprintf("entropy: blake3 digest read failed: %v", err))
	}
	return binary.LittleEndian.Uint32(b[:])
}

// Source hands out the stream for one draw.
type Source interface {
	Stream(caller raffle.Address, round raffle.RoundID) *Stream
}

// BlockSource derives streams from the context of the block being executed.
type BlockSource struct {
	Height uint64
	Extra  []byte
}

func (b BlockSource) Stream(caller raffle.Address, round raffle.RoundID) *Stream {
	return NewStream(DeriveSeed(b.Height, caller, round, b.Extra))
}

// FixedSource ignores its inputs and always expands the same seed.
type FixedSource struct {
	Seed crypto.Hash
}

func (f FixedSource) Stream(raffle.Address, raffle.RoundID) *Stream {
	return NewStream(f.Seed)
}
