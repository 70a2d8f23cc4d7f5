package engine

import "github.com/eigerco/fury/internal/raffle"

// Request is one engine operation. The concrete types below are the only
// implementations.
type Request interface {
	Operation() string
}

const (
	OpInit              = "init"
	OpOpenRound         = "open_round"
	OpJoinRound         = "join_round"
	OpFinalizeRound     = "finalize_round"
	OpCancelRound       = "cancel_round"
	OpReportSettlement  = "report_settlement"
	OpGetRound          = "get_round"
	OpGetWinners        = "get_winners"
	OpGetCounter        = "get_counter"
	OpGetTotalCustodied = "get_total_custodied"
	OpListRounds        = "list_rounds"
	OpPendingTransfers  = "pending_transfers"
)

// Init stores the admin set and the first round id. It is accepted once.
type Init struct {
	Admins  []raffle.Address `json:"admins"`
	Counter *raffle.RoundID  `json:"counter,omitempty"`
}

type OpenRound struct {
	EndTime      raffle.Timestamp `json:"end_time"`
	MinimumStake uint64           `json:"minimum_stake"`
	Distribution []uint32         `json:"distribution"`
}

// JoinRound registers the sender, paying with the message funds.
type JoinRound struct {
	RoundID raffle.RoundID `json:"round_id"`
}

type FinalizeRound struct {
	RoundID raffle.RoundID `json:"round_id"`
}

type CancelRound struct {
	RoundID raffle.RoundID `json:"round_id"`
}

// ReportSettlement records the outcome of transfer Index of a round.
type ReportSettlement struct {
	RoundID raffle.RoundID `json:"round_id"`
	Index   int            `json:"index"`
	Settled bool           `json:"settled"`
}

type GetRound struct {
	RoundID raffle.RoundID `json:"round_id"`
}

type GetWinners struct {
	RoundID raffle.RoundID `json:"round_id"`
}

type GetCounter struct{}

type GetTotalCustodied struct{}

// ListRounds pages through rounds in id order.
type ListRounds struct {
	StartAfter *raffle.RoundID `json:"start_after,omitempty"`
	Limit      int             `json:"limit,omitempty"`
}

type PendingTransfers struct {
	RoundID raffle.RoundID `json:"round_id"`
}

func (Init) Operation() string              { return OpInit }
func (OpenRound) Operation() string         { return OpOpenRound }
func (JoinRound) Operation() string         { return OpJoinRound }
func (FinalizeRound) Operation() string     { return OpFinalizeRound }
func (CancelRound) Operation() string       { return OpCancelRound }
func (ReportSettlement) Operation() string  { return OpReportSettlement }
func (GetRound) Operation() string          { return OpGetRound }
func (GetWinners) Operation() string        { return OpGetWinners }
func (GetCounter) Operation() string        { return OpGetCounter }
func (GetTotalCustodied) Operation() string { return OpGetTotalCustodied }
func (ListRounds) Operation() string        { return OpListRounds }
func (PendingTransfers) Operation() string  { return OpPendingTransfers }

// Message is a request together with who sent it and what they paid.
type Message struct {
	Sender  raffle.Address
	Funds   []raffle.Coin
	Request Request
}

// Env is the context of the block executing a message.
type Env struct {
	Height  uint64           `json:"height"`
	Time    raffle.Timestamp `json:"time"`
	Entropy []byte           `json:"entropy,omitempty"`
}
