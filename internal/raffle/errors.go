package raffle

import "errors"

var (
	// ErrUnauthorized is returned when a non-admin calls an admin operation.
	ErrUnauthorized = errors.New("unauthorized")

	ErrRoundNotFound      = errors.New("round not found")
	ErrRegistrationClosed = errors.New("registration closed")
	ErrRoundExpired       = errors.New("round expired")
	ErrAlreadyRegistered  = errors.New("already registered")

	// ErrWrongPaymentDenom is returned when a join does not carry exactly one
	// coin of the staking denomination.
	ErrWrongPaymentDenom = errors.New("wrong payment denom")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidDistribution is returned for an empty distribution or one
	// containing a zero share.
	ErrInvalidDistribution = errors.New("invalid distribution")
	ErrInvalidEndTime      = errors.New("end time must be after begin time")
	ErrZeroShares          = errors.New("zero total shares")
	ErrNoPlayers           = errors.New("no players")

	// ErrNotEnoughPlayers is returned when drawing without replacement and the
	// round has fewer players than winner slots.
	ErrNotEnoughPlayers = errors.New("not enough players")

	ErrRoundNotActive     = errors.New("round not active")
	ErrDoubleFinalization = errors.New("round already finalized")
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("not initialized")
	ErrInvalidSettlement  = errors.New("invalid settlement report")
	ErrInvalidRequest     = errors.New("invalid request")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrUnauthorized, "Unauthorized"},
	{ErrRoundNotFound, "RoundNotFound"},
	{ErrRegistrationClosed, "RegistrationClosed"},
	{ErrRoundExpired, "RoundExpired"},
	{ErrAlreadyRegistered, "AlreadyRegistered"},
	{ErrWrongPaymentDenom, "WrongPaymentDenom"},
	{ErrInsufficientFunds, "InsufficientFunds"},
	{ErrInvalidDistribution, "InvalidDistribution"},
	{ErrInvalidEndTime, "InvalidEndTime"},
	{ErrZeroShares, "ZeroShares"},
	{ErrNoPlayers, "NoPlayers"},
	{ErrNotEnoughPlayers, "NotEnoughPlayers"},
	{ErrRoundNotActive, "RoundNotActive"},
	{ErrDoubleFinalization, "DoubleFinalization"},
	{ErrArithmeticOverflow, "ArithmeticOverflow"},
	{ErrAlreadyInitialized, "AlreadyInitialized"},
	{ErrNotInitialized, "NotInitialized"},
	{ErrInvalidSettlement, "InvalidSettlement"},
	{ErrInvalidRequest, "InvalidRequest"},
}

// Kind names the error category of err, "Internal" for errors outside the
// raffle taxonomy (storage failures and the like).
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}
