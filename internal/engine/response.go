package engine

import (
	"strconv"

	"github.com/eigerco/fury/internal/raffle"
)

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response is the outcome of a successful operation. Transfers are the
// instructions emitted by this operation, to be handed to the settlement
// relay.
type Response struct {
	Attributes []Attribute                  `json:"attributes"`
	Transfers  []raffle.TransferInstruction `json:"transfers,omitempty"`
	Data       any                          `json:"data,omitempty"`
}

func (r *Response) attr(key, value string) {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
}

func (r *Response) roundAttr(id raffle.RoundID) {
	r.attr("round_id", strconv.FormatUint(uint64(id), 10))
}

// Attribute returns the value of the first attribute named key.
func (r Response) Attribute(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

type OpenRoundResult struct {
	RoundID raffle.RoundID `json:"round_id"`
}

type FinalizeResult struct {
	Winners   []raffle.Address `json:"winners"`
	Payouts   []uint64         `json:"payouts"`
	Remainder uint64           `json:"remainder"`
}

type WinnersResult struct {
	Winners []raffle.Address `json:"winners"`
	Payouts []uint64         `json:"payouts"`
}

type CounterResult struct {
	Counter raffle.RoundID `json:"counter"`
}

type CustodyResult struct {
	Total    uint64 `json:"total"`
	Rollover uint64 `json:"rollover"`
}

type RoundsResult struct {
	Rounds []raffle.Round `json:"rounds"`
}

type TransfersResult struct {
	Transfers []raffle.TransferInstruction `json:"transfers"`
}
