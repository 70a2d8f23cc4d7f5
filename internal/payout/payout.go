package payout

import (
	"fmt"

	"github.com/eigerco/fury/internal/raffle"
	"github.com/eigerco/fury/internal/safemath"
)

// RemainderPolicy decides where the integer division remainder of a payout goes.
type RemainderPolicy uint8

const (
	// Rollover keeps the remainder custodied and adds it to the next
	// finalized round's deposit.
	Rollover RemainderPolicy = iota
	// ToAdmin transfers the remainder to the finalizing admin.
	ToAdmin
	// ToLargestShare adds the remainder to the first slot with the largest share.
	ToLargestShare
)

func (p RemainderPolicy) String() string {
	switch p {
	case Rollover:
		return "rollover"
	case ToAdmin:
		return "admin"
	case ToLargestShare:
		return "largest_share"
	default:
		return "unknown"
	}
}

func ParseRemainderPolicy(s string) (RemainderPolicy, error) {
	switch s {
	case "", "rollover":
		return Rollover, nil
	case "admin":
		return ToAdmin, nil
	case "largest_share":
		return ToLargestShare, nil
	default:
		return 0, fmt.Errorf("unknown remainder policy %q", s)
	}
}

// Compute splits totalDeposit across the distribution shares:
// payout_i = (totalDeposit / sum(shares)) * share_i. The returned remainder is
// what floor division left over, so sum(payouts) + remainder == totalDeposit.
func Compute(distribution []uint32, totalDeposit uint64) ([]uint64, uint64, error) {
	totalShares, err := totalShares(distribution)
	if err != nil {
		return nil, 0, err
	}
	if totalShares == 0 {
		return nil, 0, raffle.ErrZeroShares
	}
	rewardPerShare := totalDeposit / totalShares

	payouts := make([]uint64, len(distribution))
	var paid uint64
	for i, share := range distribution {
		p, ok := safemath.Mul64(rewardPerShare, uint64(share))
		if !ok {
			return nil, 0, raffle.ErrArithmeticOverflow
		}
		if paid, ok = safemath.Add64(paid, p); !ok {
			return nil, 0, raffle.ErrArithmeticOverflow
		}
		payouts[i] = p
	}
	remainder, ok := safemath.Sub64(totalDeposit, paid)
	if !ok {
		return nil, 0, raffle.ErrArithmeticOverflow
	}
	return payouts, remainder, nil
}

func totalShares(distribution []uint32) (uint64, error) {
	total, err := safemath.Sum64(distribution)
	if err != nil {
		return 0, raffle.ErrArithmeticOverflow
	}
	return total, nil
}

// LargestShare returns the index of the first slot holding the largest share,
// -1 for an empty distribution.
func LargestShare(distribution []uint32) int {
	best := -1
	for i, s := range distribution {
		if best < 0 || s > distribution[best] {
			best = i
		}
	}
	return best
}

// Allocation is the outcome of applying a remainder policy.
type Allocation struct {
	Payouts []uint64
	// Rollover stays custodied for the next finalization.
	Rollover uint64
	// Admin is owed to the finalizing admin.
	Admin uint64
}

// ApplyRemainder routes remainder according to policy. payouts is not modified.
func ApplyRemainder(policy RemainderPolicy, distribution []uint32, payouts []uint64, remainder uint64) (Allocation, error) {
	a := Allocation{Payouts: append([]uint64(nil), payouts...)}
	if remainder == 0 {
		return a, nil
	}
	switch policy {
	case Rollover:
		a.Rollover = remainder
	case ToAdmin:
		a.Admin = remainder
	case ToLargestShare:
		i := LargestShare(distribution)
		if i < 0 || i >= len(a.Payouts) {
			return Allocation{}, raffle.ErrZeroShares
		}
		p, ok := safemath.Add64(a.Payouts[i], remainder)
		if !ok {
			return Allocation{}, raffle.ErrArithmeticOverflow
		}
		a.Payouts[i] = p
	default:
		return Allocation{}, fmt.Errorf("unknown remainder policy %d", policy)
	}
	return a, nil
}
