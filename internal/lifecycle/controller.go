package lifecycle

import (
	"fmt"

	"github.com/eigerco/fury/internal/entropy"
	"github.com/eigerco/fury/internal/payout"
	"github.com/eigerco/fury/internal/raffle"
	"github.com/eigerco/fury/internal/safemath"
	"github.com/eigerco/fury/internal/selection"
)

// State is the slice of the raffle store the controller works on. A
// *store.Tx satisfies it.
type State interface {
	IsAdmin(addr raffle.Address) (bool, error)
	NextRoundID() (raffle.RoundID, error)
	Round(id raffle.RoundID) (raffle.Round, error)
	PutRound(r raffle.Round) error
	Custody() (raffle.Custody, error)
	PutCustody(c raffle.Custody) error
}

type Config struct {
	StakingDenom string
	Sampling     selection.Mode
	Remainder    payout.RemainderPolicy
}

// Controller drives rounds from opening to finalization or cancellation.
type Controller struct {
	state    State
	cfg      Config
	selector *selection.Selector
}

func New(state State, cfg Config) *Controller {
	return &Controller{
		state:    state,
		cfg:      cfg,
		selector: selection.New(cfg.Sampling),
	}
}

// Outcome is what a finalization decided.
type Outcome struct {
	Winners   []raffle.Address
	Payouts   []uint64
	Remainder uint64
	Transfers []raffle.TransferInstruction
}

func (c *Controller) authorize(addr raffle.Address) error {
	ok, err := c.state.IsAdmin(addr)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%q: %w", addr, raffle.ErrUnauthorized)
	}
	return nil
}

// Open allocates the next round id and stores an active round registering
// until endTime.
func (c *Controller) Open(admin raffle.Address, endTime raffle.Timestamp, minimumStake uint64, distribution []uint32, now raffle.Timestamp) (raffle.RoundID, error) {
	if err := c.authorize(admin); err != nil {
		return 0, err
	}
	if _, err := raffle.ValidateDistribution(distribution); err != nil {
		return 0, err
	}
	if endTime <= now {
		return 0, fmt.Errorf("%w: end %d is not after %d", raffle.ErrInvalidEndTime, endTime, now)
	}
	id, err := c.state.NextRoundID()
	if err != nil {
		return 0, err
	}
	round := raffle.Round{
		ID:           id,
		BeginTime:    now,
		EndTime:      endTime,
		MinimumStake: minimumStake,
		Distribution: append([]uint32(nil), distribution...),
		Active:       true,
	}
	if err := c.state.PutRound(round); err != nil {
		return 0, err
	}
	return id, nil
}

// inactive explains why a round that is no longer active was rejected.
func inactive(r raffle.Round) error {
	if r.Finalized() {
		return fmt.Errorf("round %d: %w", r.ID, raffle.ErrDoubleFinalization)
	}
	return fmt.Errorf("round %d was cancelled: %w", r.ID, raffle.ErrRoundNotActive)
}

// Finalize draws the winners of round id, splits the round deposit plus any
// rolled over remainder between them and closes the round. Finalizing before
// the round's end time is allowed.
func (c *Controller) Finalize(admin raffle.Address, id raffle.RoundID, source entropy.Source) (Outcome, error) {
	if err := c.authorize(admin); err != nil {
		return Outcome{}, err
	}
	round, err := c.state.Round(id)
	if err != nil {
		return Outcome{}, err
	}
	if !round.Active {
		return Outcome{}, inactive(round)
	}
	if len(round.Players) == 0 {
		return Outcome{}, fmt.Errorf("round %d: %w", id, raffle.ErrNoPlayers)
	}

	custody, err := c.state.Custody()
	if err != nil {
		return Outcome{}, err
	}
	total, ok := safemath.Add64(round.Deposit, custody.Rollover)
	if !ok {
		return Outcome{}, raffle.ErrArithmeticOverflow
	}

	winners, err := c.selector.Select(round, source.Stream(admin, id))
	if err != nil {
		return Outcome{}, err
	}
	payouts, remainder, err := payout.Compute(round.Distribution, total)
	if err != nil {
		return Outcome{}, err
	}
	alloc, err := payout.ApplyRemainder(c.cfg.Remainder, round.Distribution, payouts, remainder)
	if err != nil {
		return Outcome{}, err
	}

	var transfers []raffle.Transfer
	for i, w := range winners {
		if alloc.Payouts[i] == 0 {
			continue
		}
		transfers = append(transfers, c.transfer(w, alloc.Payouts[i], raffle.MemoWinner))
	}
	if alloc.Admin > 0 {
		transfers = append(transfers, c.transfer(admin, alloc.Admin, raffle.MemoRemainder))
	}

	paid, ok := safemath.Sub64(total, alloc.Rollover)
	if !ok {
		return Outcome{}, raffle.ErrArithmeticOverflow
	}
	if custody.Total, ok = safemath.Sub64(custody.Total, paid); !ok {
		return Outcome{}, fmt.Errorf("custody %d below payout %d: %w", custody.Total, paid, raffle.ErrArithmeticOverflow)
	}
	custody.Rollover = alloc.Rollover

	round.Winners = winners
	round.Payouts = alloc.Payouts
	round.Remainder = remainder
	round.Transfers = transfers
	round.Active = false
	if err := c.state.PutRound(round); err != nil {
		return Outcome{}, err
	}
	if err := c.state.PutCustody(custody); err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Winners:   round.Winners,
		Payouts:   round.Payouts,
		Remainder: remainder,
		Transfers: round.Instructions(),
	}, nil
}

// Cancel closes an active round without drawing and refunds every player
// their stake.
func (c *Controller) Cancel(admin raffle.Address, id raffle.RoundID) ([]raffle.TransferInstruction, error) {
	if err := c.authorize(admin); err != nil {
		return nil, err
	}
	round, err := c.state.Round(id)
	if err != nil {
		return nil, err
	}
	if !round.Active {
		return nil, fmt.Errorf("round %d: %w", id, raffle.ErrRoundNotActive)
	}

	custody, err := c.state.Custody()
	if err != nil {
		return nil, err
	}
	var ok bool
	if custody.Total, ok = safemath.Sub64(custody.Total, round.Deposit); !ok {
		return nil, fmt.Errorf("custody %d below deposit %d: %w", custody.Total, round.Deposit, raffle.ErrArithmeticOverflow)
	}

	var transfers []raffle.Transfer
	for i, stake := range round.Stakes {
		if stake == 0 {
			continue
		}
		transfers = append(transfers, c.transfer(round.Players[i], stake, raffle.MemoRefund))
	}
	round.Transfers = transfers
	round.Active = false
	round.Cancelled = true
	if err := c.state.PutRound(round); err != nil {
		return nil, err
	}
	if err := c.state.PutCustody(custody); err != nil {
		return nil, err
	}
	return round.Instructions(), nil
}

// ReportSettlement records whether the transfer at index of round id went
// through. Settled entries are final, failed ones may be reported again.
func (c *Controller) ReportSettlement(admin raffle.Address, id raffle.RoundID, index int, settled bool) error {
	if err := c.authorize(admin); err != nil {
		return err
	}
	round, err := c.state.Round(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(round.Transfers) {
		return fmt.Errorf("%w: round %d has no transfer %d", raffle.ErrInvalidSettlement, id, index)
	}
	if round.Transfers[index].Status == raffle.SettlementSettled {
		return fmt.Errorf("%w: transfer %d of round %d already settled", raffle.ErrInvalidSettlement, index, id)
	}
	round.Transfers[index].Status = raffle.SettlementFailed
	if settled {
		round.Transfers[index].Status = raffle.SettlementSettled
	}
	return c.state.PutRound(round)
}

func (c *Controller) transfer(to raffle.Address, amount uint64, memo string) raffle.Transfer {
	return raffle.Transfer{
		Recipient: to,
		Amount:    amount,
		Denom:     c.cfg.StakingDenom,
		Memo:      memo,
		Status:    raffle.SettlementPending,
	}
}
