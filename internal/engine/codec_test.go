package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/eigerco/fury/internal/raffle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequest(t *testing.T) {
	after := raffle.RoundID(3)
	first := raffle.RoundID(5)
	tests := []struct {
		input string
		want  Request
	}{
		{`{"init":{"admins":["alice","bob"],"counter":5}}`, Init{Admins: []raffle.Address{"alice", "bob"}, Counter: &first}},
		{`{"open_round":{"end_time":200,"minimum_stake":10,"distribution":[1,2,3]}}`, OpenRound{EndTime: 200, MinimumStake: 10, Distribution: []uint32{1, 2, 3}}},
		{`{"join_round":{"round_id":1}}`, JoinRound{RoundID: 1}},
		{`{"finalize_round":{"round_id":1}}`, FinalizeRound{RoundID: 1}},
		{`{"cancel_round":{"round_id":2}}`, CancelRound{RoundID: 2}},
		{`{"report_settlement":{"round_id":2,"index":1,"settled":true}}`, ReportSettlement{RoundID: 2, Index: 1, Settled: true}},
		{`{"get_round":{"round_id":4}}`, GetRound{RoundID: 4}},
		{`{"get_winners":{"round_id":4}}`, GetWinners{RoundID: 4}},
		{`{"get_counter":{}}`, GetCounter{}},
		{`{"get_total_custodied":null}`, GetTotalCustodied{}},
		{`{"list_rounds":{"start_after":3,"limit":2}}`, ListRounds{StartAfter: &after, Limit: 2}},
		{`{"pending_transfers":{"round_id":9}}`, PendingTransfers{RoundID: 9}},
	}
	for _, tc := range tests {
		t.Run(tc.want.Operation(), func(t *testing.T) {
			got, err := DecodeRequest([]byte(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			encoded, err := EncodeRequest(got)
			require.NoError(t, err)
			again, err := DecodeRequest(encoded)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
	assert.Len(t, Operations(), len(tests))
}

func TestDecodeRequestRejects(t *testing.T) {
	inputs := []string{
		`[]`,
		`{}`,
		`{"join_round":{"round_id":1},"get_counter":{}}`,
		`{"delete_round":{"round_id":1}}`,
		`{"join_round":{"round_id":1,"amount":5}}`,
		`{"join_round":{"round_id":-1}}`,
		`{"open_round":{"distribution":"1,2"}}`,
	}
	for _, input := range inputs {
		_, err := DecodeRequest([]byte(input))
		assert.ErrorIs(t, err, raffle.ErrInvalidRequest, input)
	}
}

func TestEnvelopeJSON(t *testing.T) {
	input := `{
		"env": {"height": 12, "time": 1700, "entropy": "AQID"},
		"sender": "alice",
		"funds": [{"denom": "ufury", "amount": 25}],
		"msg": {"join_round": {"round_id": 3}}
	}`
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(input), &env))
	assert.Equal(t, Envelope{
		Env: Env{Height: 12, Time: 1700, Entropy: []byte{1, 2, 3}},
		Message: Message{
			Sender:  "alice",
			Funds:   []raffle.Coin{raffle.NewCoin("ufury", 25)},
			Request: JoinRound{RoundID: 3},
		},
	}, env)

	b, err := json.Marshal(env)
	require.NoError(t, err)
	var again Envelope
	require.NoError(t, json.Unmarshal(b, &again))
	assert.Equal(t, env, again)

	err = json.Unmarshal([]byte(`{"sender":"alice"}`), &again)
	assert.ErrorIs(t, err, raffle.ErrInvalidRequest)
	err = json.Unmarshal([]byte(`{"sender":"alice","msg":{"get_counter":{}},"extra":1}`), &again)
	assert.ErrorIs(t, err, raffle.ErrInvalidRequest)
}

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"env":{"height":3,"time":30},"sender":"bob","msg":{"get_counter":{}}}`))
	require.NoError(t, err)
	assert.Equal(t, Envelope{Env: Env{Height: 3, Time: 30}, Message: Message{Sender: "bob", Request: GetCounter{}}}, env)

	inputs := []string{
		`not json`,
		`{"env":`,
		``,
		`{"env":{"height":"one"},"sender":"bob","msg":{"get_counter":{}}}`,
		`{"sender":"bob","msg":{"delete_round":{}}}`,
	}
	for _, input := range inputs {
		_, err := DecodeEnvelope([]byte(input))
		require.ErrorIs(t, err, raffle.ErrInvalidRequest, input)
		assert.Equal(t, "InvalidRequest", raffle.Kind(err), input)
	}
}

func TestNewResult(t *testing.T) {
	ok := NewResult(Response{Data: CounterResult{Counter: 2}}, nil)
	b, err := json.Marshal(ok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":{"attributes":null,"data":{"counter":2}}}`, string(b))

	rejected := NewResult(Response{}, errors.Join(errors.New("round 3"), raffle.ErrRoundExpired))
	b, err = json.Marshal(rejected)
	require.NoError(t, err)
	var decoded map[string]ErrorBody
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "RoundExpired", decoded["error"].Kind)
	assert.Contains(t, decoded["error"].Message, "round 3")
}
