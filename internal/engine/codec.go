package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/eigerco/fury/internal/raffle"
)

var requestDecoders = map[string]func(json.RawMessage) (Request, error){
	OpInit:              decodeRequest[Init],
	OpOpenRound:         decodeRequest[OpenRound],
	OpJoinRound:         decodeRequest[JoinRound],
	OpFinalizeRound:     decodeRequest[FinalizeRound],
	OpCancelRound:       decodeRequest[CancelRound],
	OpReportSettlement:  decodeRequest[ReportSettlement],
	OpGetRound:          decodeRequest[GetRound],
	OpGetWinners:        decodeRequest[GetWinners],
	OpGetCounter:        decodeRequest[GetCounter],
	OpGetTotalCustodied: decodeRequest[GetTotalCustodied],
	OpListRounds:        decodeRequest[ListRounds],
	OpPendingTransfers:  decodeRequest[PendingTransfers],
}

// Operations lists the names of every supported operation, sorted.
func Operations() []string {
	ops := make([]string, 0, len(requestDecoders))
	for op := range requestDecoders {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func decodeRequest[T Request](raw json.RawMessage) (Request, error) {
	var req T
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return req, nil
	}
	if err := strictUnmarshal(raw, &req); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeRequest reads a request in its single key form, e.g.
// {"join_round":{"round_id":3}}.
func DecodeRequest(data []byte) (Request, error) {
	var variants map[string]json.RawMessage
	if err := json.Unmarshal(data, &variants); err != nil {
		return nil, fmt.Errorf("%w: %w", raffle.ErrInvalidRequest, err)
	}
	if len(variants) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one operation, got %d", raffle.ErrInvalidRequest, len(variants))
	}
	for op, raw := range variants {
		decode, ok := requestDecoders[op]
		if !ok {
			return nil, fmt.Errorf("%w: unknown operation %q", raffle.ErrInvalidRequest, op)
		}
		req, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", raffle.ErrInvalidRequest, op, err)
		}
		return req, nil
	}
	return nil, raffle.ErrInvalidRequest
}

// EncodeRequest writes req in its single key form.
func EncodeRequest(req Request) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", raffle.ErrInvalidRequest)
	}
	return json.Marshal(map[string]Request{req.Operation(): req})
}

// Envelope is the transport form of a message executed in a block.
type Envelope struct {
	Env     Env
	Message Message
}

type envelopeJSON struct {
	Env    Env             `json:"env"`
	Sender raffle.Address  `json:"sender"`
	Funds  []raffle.Coin   `json:"funds,omitempty"`
	Msg    json.RawMessage `json:"msg"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	msg, err := EncodeRequest(e.Message.Request)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelopeJSON{
		Env:    e.Env,
		Sender: e.Message.Sender,
		Funds:  e.Message.Funds,
		Msg:    msg,
	})
}

// DecodeEnvelope reads one envelope. Any malformed input, including input
// that is not JSON at all, fails with raffle.ErrInvalidRequest.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		if errors.Is(err, raffle.ErrInvalidRequest) {
			return Envelope{}, err
		}
		return Envelope{}, fmt.Errorf("%w: %w", raffle.ErrInvalidRequest, err)
	}
	return e, nil
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw envelopeJSON
	if err := strictUnmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", raffle.ErrInvalidRequest, err)
	}
	if len(raw.Msg) == 0 {
		return fmt.Errorf("%w: missing msg", raffle.ErrInvalidRequest)
	}
	req, err := DecodeRequest(raw.Msg)
	if err != nil {
		return err
	}
	*e = Envelope{
		Env: raw.Env,
		Message: Message{
			Sender:  raw.Sender,
			Funds:   raw.Funds,
			Request: req,
		},
	}
	return nil
}

// ErrorBody is the transport form of a rejected operation.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Result is either a response or an error, as written back to the caller.
type Result struct {
	OK    *Response  `json:"ok,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

func NewResult(resp Response, err error) Result {
	if err != nil {
		return Result{Error: &ErrorBody{Kind: raffle.Kind(err), Message: err.Error()}}
	}
	return Result{OK: &resp}
}
