package registration

import (
	"fmt"

	"github.com/eigerco/fury/internal/raffle"
	"github.com/eigerco/fury/internal/safemath"
)

type RoundStore interface {
	Round(id raffle.RoundID) (raffle.Round, error)
	PutRound(r raffle.Round) error
}

type CustodyStore interface {
	Custody() (raffle.Custody, error)
	PutCustody(c raffle.Custody) error
}

type State interface {
	RoundStore
	CustodyStore
}

// Ledger admits participants into open rounds. It never moves funds, the
// transport settles the payment before or atomically with the join.
type Ledger struct {
	state        State
	stakingDenom string
}

func NewLedger(state State, stakingDenom string) *Ledger {
	return &Ledger{state: state, stakingDenom: stakingDenom}
}

// Join appends participant to the round after checking, in order: the round
// exists, is active, has not expired, does not know the participant yet, and
// the payment is a single coin of the staking denom covering the minimum stake.
func (l *Ledger) Join(id raffle.RoundID, participant raffle.Address, funds []raffle.Coin, now raffle.Timestamp) error {
	round, err := l.state.Round(id)
	if err != nil {
		return err
	}
	if !round.Active {
		return fmt.Errorf("round %d: %w", id, raffle.ErrRegistrationClosed)
	}
	if now > round.EndTime {
		return fmt.Errorf("round %d ended at %d, now %d: %w", id, round.EndTime, now, raffle.ErrRoundExpired)
	}
	if round.HasPlayer(participant) {
		return fmt.Errorf("%s in round %d: %w", participant, id, raffle.ErrAlreadyRegistered)
	}
	if len(funds) != 1 || funds[0].Denom != l.stakingDenom {
		return fmt.Errorf("%w: expected a single %s coin", raffle.ErrWrongPaymentDenom, l.stakingDenom)
	}
	stake := funds[0].Amount
	if stake < round.MinimumStake {
		return fmt.Errorf("%w: paid %d, minimum %d", raffle.ErrInsufficientFunds, stake, round.MinimumStake)
	}

	deposit, ok := safemath.Add64(round.Deposit, stake)
	if !ok {
		return raffle.ErrArithmeticOverflow
	}
	custody, err := l.state.Custody()
	if err != nil {
		return err
	}
	if custody.Total, ok = safemath.Add64(custody.Total, stake); !ok {
		return raffle.ErrArithmeticOverflow
	}

	round.Players = append(round.Players, participant)
	round.Stakes = append(round.Stakes, stake)
	round.Deposit = deposit
	if err := l.state.PutRound(round); err != nil {
		return err
	}
	return l.state.PutCustody(custody)
}
