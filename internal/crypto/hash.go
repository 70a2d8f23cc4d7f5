package crypto

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

type Hash [HashSize]byte

func HashData(data []byte) Hash {
	hash := blake2b.Sum256(data)
	return hash
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Hasher accumulates length-prefixed fields into a blake2b-256 digest, so that
// distinct field sequences can never produce the same input bytes.
type Hasher struct {
	buf []byte
}

func NewHasher(domain string) *Hasher {
	h := &Hasher{}
	return h.WriteBytes([]byte(domain))
}

func (h *Hasher) WriteUint64(v uint64) *Hasher {
	h.buf = binary.LittleEndian.AppendUint64(h.buf, v)
	return h
}

func (h *Hasher) WriteBytes(b []byte) *Hasher {
	h.buf = binary.LittleEndian.AppendUint32(h.buf, uint32(len(b)))
	h.buf = append(h.buf, b...)
	return h
}

func (h *Hasher) WriteString(s string) *Hasher {
	return h.WriteBytes([]byte(s))
}

func (h *Hasher) Sum() Hash {
	return HashData(h.buf)
}
