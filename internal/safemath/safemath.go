package safemath

import (
	"errors"
	"math/bits"
)

var ErrOverflow = errors.New("number overflow")

func Add64(a, b uint64) (uint64, bool) {
	v, carry := bits.Add64(a, b, 0)
	return v, carry == 0
}

func Sub64(a, b uint64) (uint64, bool) {
	v, borrow := bits.Sub64(a, b, 0)
	return v, borrow == 0
}

func Mul64(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// Sum64 adds up xs, reporting ErrOverflow if the total does not fit in 64 bits.
func Sum64[T ~uint32 | ~uint64](xs []T) (uint64, error) {
	var total uint64
	for _, x := range xs {
		var ok bool
		if total, ok = Add64(total, uint64(x)); !ok {
			return 0, ErrOverflow
		}
	}
	return total, nil
}
