package store

import (
	"errors"
	"fmt"

	"github.com/eigerco/fury/internal/raffle"
	"github.com/eigerco/fury/internal/safemath"
	"github.com/eigerco/fury/pkg/db"
)

func (tx *Tx) load(key []byte, v any) error {
	b, err := tx.get(key)
	if err != nil {
		return err
	}
	if err := unmarshal(b, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", PrefixToString(key[0]), err)
	}
	return nil
}

func (tx *Tx) save(key []byte, v any) error {
	b, err := marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", PrefixToString(key[0]), err)
	}
	return tx.put(key, b)
}

// Initialized reports whether the admin set has been written.
func (tx *Tx) Initialized() (bool, error) {
	_, err := tx.get(makeKey(prefixAdminSet, nil))
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get admin set: %w", err)
	}
	return true, nil
}

// AdminSet returns the configured admins, ErrNotInitialized before init.
func (tx *Tx) AdminSet() (raffle.AdminSet, error) {
	var set raffle.AdminSet
	err := tx.load(makeKey(prefixAdminSet, nil), &set)
	if errors.Is(err, db.ErrNotFound) {
		return raffle.AdminSet{}, raffle.ErrNotInitialized
	}
	if err != nil {
		return raffle.AdminSet{}, fmt.Errorf("get admin set: %w", err)
	}
	return set, nil
}

func (tx *Tx) PutAdminSet(set raffle.AdminSet) error {
	return tx.save(makeKey(prefixAdminSet, nil), set)
}

func (tx *Tx) IsAdmin(addr raffle.Address) (bool, error) {
	set, err := tx.AdminSet()
	if err != nil {
		return false, err
	}
	return set.Contains(addr), nil
}

// Counter returns the id the next opened round will get.
func (tx *Tx) Counter() (raffle.RoundID, error) {
	var next uint64
	err := tx.load(makeKey(prefixCounter, nil), &next)
	if errors.Is(err, db.ErrNotFound) {
		return 0, raffle.ErrNotInitialized
	}
	if err != nil {
		return 0, fmt.Errorf("get counter: %w", err)
	}
	return raffle.RoundID(next), nil
}

func (tx *Tx) PutCounter(next raffle.RoundID) error {
	return tx.save(makeKey(prefixCounter, nil), uint64(next))
}

// NextRoundID hands out the current counter value and stores its successor.
func (tx *Tx) NextRoundID() (raffle.RoundID, error) {
	id, err := tx.Counter()
	if err != nil {
		return 0, err
	}
	next, ok := safemath.Add64(uint64(id), 1)
	if !ok {
		return 0, raffle.ErrArithmeticOverflow
	}
	if err := tx.PutCounter(raffle.RoundID(next)); err != nil {
		return 0, err
	}
	return id, nil
}

func (tx *Tx) Round(id raffle.RoundID) (raffle.Round, error) {
	var r raffle.Round
	err := tx.load(roundKey(id), &r)
	if errors.Is(err, db.ErrNotFound) {
		return raffle.Round{}, fmt.Errorf("round %d: %w", id, raffle.ErrRoundNotFound)
	}
	if err != nil {
		return raffle.Round{}, fmt.Errorf("get round %d: %w", id, err)
	}
	return r, nil
}

func (tx *Tx) PutRound(r raffle.Round) error {
	return tx.save(roundKey(r.ID), r)
}

// Custody returns the custody record, zero valued before the first deposit.
func (tx *Tx) Custody() (raffle.Custody, error) {
	var c raffle.Custody
	err := tx.load(makeKey(prefixCustody, nil), &c)
	if errors.Is(err, db.ErrNotFound) {
		return raffle.Custody{}, nil
	}
	if err != nil {
		return raffle.Custody{}, fmt.Errorf("get custody: %w", err)
	}
	return c, nil
}

func (tx *Tx) PutCustody(c raffle.Custody) error {
	return tx.save(makeKey(prefixCustody, nil), c)
}

// Rounds lists committed rounds in id order, starting after startAfter when
// set. Writes buffered in tx are not visible to the scan.
func (tx *Tx) Rounds(startAfter *raffle.RoundID, limit int) ([]raffle.Round, error) {
	if tx.done {
		return nil, ErrTxDone
	}
	if tx.store.closed.Load() {
		return nil, ErrStoreClosed
	}
	prefix := []byte{prefixRound}
	start := prefix
	if startAfter != nil {
		if *startAfter == raffle.RoundID(^uint64(0)) {
			return nil, nil
		}
		start = roundKey(*startAfter + 1)
	}

	iter, err := tx.store.db.NewIterator(start, db.PrefixEnd(prefix))
	if err != nil {
		return nil, fmt.Errorf("create iterator: %w", err)
	}
	defer iter.Close() //nolint:errcheck // read only iterator

	var rounds []raffle.Round
	for iter.Next() {
		if limit > 0 && len(rounds) >= limit {
			break
		}
		value, err := iter.Value()
		if err != nil {
			return nil, fmt.Errorf("get iterator value: %w", err)
		}
		var r raffle.Round
		if err := unmarshal(value, &r); err != nil {
			return nil, fmt.Errorf("unmarshal round: %w", err)
		}
		rounds = append(rounds, r)
	}
	return rounds, nil
}
