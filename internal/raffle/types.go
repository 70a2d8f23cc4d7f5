package raffle

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/eigerco/fury/internal/safemath"
)

// Address identifies a participant or an admin. Addresses are opaque to the
// engine, validating them belongs to the transport layer.
type Address string

// RoundID is assigned once by the counter and never reused.
type RoundID uint64

// Timestamp is block time in seconds.
type Timestamp uint64

// Coin is an amount of a single denomination.
type Coin struct {
	_      struct{} `cbor:",toarray"`
	Denom  string   `json:"denom"`
	Amount uint64   `json:"amount"`
}

func NewCoin(denom string, amount uint64) Coin {
	return Coin{Denom: denom, Amount: amount}
}

func (c Coin) String() string {
	return fmt.Sprintf("%d%s", c.Amount, c.Denom)
}

type SettlementStatus uint8

const (
	SettlementPending SettlementStatus = iota
	SettlementSettled
	SettlementFailed
)

func (s SettlementStatus) String() string {
	switch s {
	case SettlementPending:
		return "pending"
	case SettlementSettled:
		return "settled"
	case SettlementFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s SettlementStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SettlementStatus) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "pending":
		*s = SettlementPending
	case "settled":
		*s = SettlementSettled
	case "failed":
		*s = SettlementFailed
	default:
		return fmt.Errorf("unknown settlement status %q", text)
	}
	return nil
}

// Transfer memos.
const (
	MemoWinner    = "winner"
	MemoRemainder = "remainder"
	MemoRefund    = "refund"
)

// Transfer is one entry of a round's settlement outbox.
type Transfer struct {
	_         struct{}         `cbor:",toarray"`
	Recipient Address          `json:"recipient"`
	Amount    uint64           `json:"amount"`
	Denom     string           `json:"denom"`
	Memo      string           `json:"memo"`
	Status    SettlementStatus `json:"status"`
}

// TransferInstruction is the one-way payment order handed to the external
// settlement collaborator. Index points into Round.Transfers.
type TransferInstruction struct {
	RoundID   RoundID `json:"round_id"`
	Index     int     `json:"index"`
	Recipient Address `json:"recipient"`
	Coin      Coin    `json:"coin"`
	Memo      string  `json:"memo"`
}

// Round is one raffle instance from opening to finalization.
type Round struct {
	_            struct{}   `cbor:",toarray"`
	ID           RoundID    `json:"id"`
	BeginTime    Timestamp  `json:"begin_time"`
	EndTime      Timestamp  `json:"end_time"`
	MinimumStake uint64     `json:"minimum_stake"`
	Distribution []uint32   `json:"distribution"`
	Players      []Address  `json:"players"`
	Stakes       []uint64   `json:"stakes"`
	Deposit      uint64     `json:"deposit"`
	Winners      []Address  `json:"winners"`
	Payouts      []uint64   `json:"payouts"`
	Remainder    uint64     `json:"remainder"`
	Active       bool       `json:"active"`
	Cancelled    bool       `json:"cancelled"`
	Transfers    []Transfer `json:"transfers"`
}

// MarshalJSON renders list fields a fresh round has not filled yet as empty
// arrays rather than null.
func (r Round) MarshalJSON() ([]byte, error) {
	type plain Round
	p := plain(r)
	p.Distribution = OrEmpty(p.Distribution)
	p.Players = OrEmpty(p.Players)
	p.Stakes = OrEmpty(p.Stakes)
	p.Winners = OrEmpty(p.Winners)
	p.Payouts = OrEmpty(p.Payouts)
	p.Transfers = OrEmpty(p.Transfers)
	return json.Marshal(p)
}

// OrEmpty returns s, or an empty slice when s is nil.
func OrEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// HasPlayer reports whether addr already joined the round.
func (r *Round) HasPlayer(addr Address) bool {
	return slices.Contains(r.Players, addr)
}

// Finalized reports whether the round went through finalization, as opposed
// to being open or cancelled.
func (r *Round) Finalized() bool {
	return !r.Active && !r.Cancelled
}

// Instructions turns the round's outbox entries that are not yet settled
// into transfer instructions.
func (r *Round) Instructions() []TransferInstruction {
	out := []TransferInstruction{}
	for i, t := range r.Transfers {
		if t.Status == SettlementSettled {
			continue
		}
		out = append(out, TransferInstruction{
			RoundID:   r.ID,
			Index:     i,
			Recipient: t.Recipient,
			Coin:      NewCoin(t.Denom, t.Amount),
			Memo:      t.Memo,
		})
	}
	return out
}

// ValidateDistribution checks that d is non-empty and every share is
// positive. It returns the total number of shares.
func ValidateDistribution(d []uint32) (uint64, error) {
	if len(d) == 0 {
		return 0, fmt.Errorf("%w: no winner slots", ErrInvalidDistribution)
	}
	if i := slices.Index(d, 0); i >= 0 {
		return 0, fmt.Errorf("%w: share %d is zero", ErrInvalidDistribution, i)
	}
	total, err := safemath.Sum64(d)
	if err != nil {
		return 0, ErrArithmeticOverflow
	}
	return total, nil
}

// AdminSet is the fixed set of principals allowed to open and finalize rounds.
type AdminSet struct {
	_       struct{}  `cbor:",toarray"`
	Members []Address `json:"members"`
}

// NewAdminSet drops empty and duplicate entries, keeping first occurrence order.
func NewAdminSet(members []Address) AdminSet {
	set := AdminSet{Members: make([]Address, 0, len(members))}
	for _, m := range members {
		if m == "" || set.Contains(m) {
			continue
		}
		set.Members = append(set.Members, m)
	}
	return set
}

func (s AdminSet) Contains(addr Address) bool {
	return slices.Contains(s.Members, addr)
}

// Custody tracks the funds held by the engine across all rounds. Total is
// every custodied amount not yet paid out or refunded, Rollover the payout
// remainder carried into the next finalization.
type Custody struct {
	_        struct{} `cbor:",toarray"`
	Total    uint64   `json:"total"`
	Rollover uint64   `json:"rollover"`
}
