package engine

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/eigerco/fury/internal/entropy"
	"github.com/eigerco/fury/internal/lifecycle"
	"github.com/eigerco/fury/internal/payout"
	"github.com/eigerco/fury/internal/raffle"
	"github.com/eigerco/fury/internal/registration"
	"github.com/eigerco/fury/internal/selection"
	"github.com/eigerco/fury/internal/store"
	"github.com/eigerco/fury/pkg/log"
	"github.com/eigerco/fury/pkg/metrics"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

type Config struct {
	StakingDenom string
	Sampling     selection.Mode
	Remainder    payout.RemainderPolicy
}

// Engine executes raffle operations one at a time, each in its own store
// transaction.
type Engine struct {
	mu      sync.Mutex
	store   *store.Store
	cfg     Config
	metrics metrics.Collector
}

// New returns an engine over s. A nil collector disables metrics.
func New(s *store.Store, cfg Config, collector metrics.Collector) *Engine {
	if collector == nil {
		collector = metrics.NewNoopCollector()
	}
	return &Engine{store: s, cfg: cfg, metrics: collector}
}

// Execute runs msg in the context of env. Either every write of the
// operation is committed or, when an error is returned, none is.
func (e *Engine) Execute(env Env, msg Message) (Response, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	op := "unknown"
	if msg.Request != nil {
		op = msg.Request.Operation()
	}

	tx := e.store.Begin()
	defer tx.Discard()

	resp, err := e.execute(tx, env, msg)
	if err == nil && tx.Dirty() {
		err = e.commit(tx)
	}
	if err != nil {
		kind := raffle.Kind(err)
		e.metrics.OperationRejected(op, kind)
		event := log.Engine.Debug()
		if kind == "Internal" {
			event = log.Engine.Error()
		}
		event.Err(err).Str("operation", op).Str("sender", string(msg.Sender)).Str("kind", kind).Msg("operation rejected")
		return Response{}, err
	}

	e.metrics.OperationHandled(op)
	for _, t := range resp.Transfers {
		e.metrics.TransferEmitted(t.Memo, t.Coin.Amount)
	}
	log.Engine.Debug().Str("operation", op).Str("sender", string(msg.Sender)).Int("transfers", len(resp.Transfers)).Msg("operation executed")
	return resp, nil
}

func (e *Engine) commit(tx *store.Tx) error {
	custody, err := tx.Custody()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	e.metrics.Custodied(custody.Total)
	return nil
}

func (e *Engine) execute(tx *store.Tx, env Env, msg Message) (Response, error) {
	if msg.Request == nil {
		return Response{}, fmt.Errorf("%w: empty request", raffle.ErrInvalidRequest)
	}
	if _, ok := msg.Request.(JoinRound); !ok && len(msg.Funds) > 0 {
		return Response{}, fmt.Errorf("%w: %s does not accept funds", raffle.ErrInvalidRequest, msg.Request.Operation())
	}

	resp := Response{}
	resp.attr("method", msg.Request.Operation())

	if req, ok := msg.Request.(Init); ok {
		return resp, e.init(tx, &resp, msg.Sender, req)
	}
	initialized, err := tx.Initialized()
	if err != nil {
		return Response{}, err
	}
	if !initialized {
		return Response{}, raffle.ErrNotInitialized
	}

	controller := lifecycle.New(tx, lifecycle.Config{
		StakingDenom: e.cfg.StakingDenom,
		Sampling:     e.cfg.Sampling,
		Remainder:    e.cfg.Remainder,
	})

	switch req := msg.Request.(type) {
	case OpenRound:
		id, err := controller.Open(msg.Sender, req.EndTime, req.MinimumStake, req.Distribution, env.Time)
		if err != nil {
			return Response{}, err
		}
		resp.roundAttr(id)
		resp.Data = OpenRoundResult{RoundID: id}

	case JoinRound:
		ledger := registration.NewLedger(tx, e.cfg.StakingDenom)
		if err := ledger.Join(req.RoundID, msg.Sender, msg.Funds, env.Time); err != nil {
			return Response{}, err
		}
		resp.roundAttr(req.RoundID)
		resp.attr("player", string(msg.Sender))

	case FinalizeRound:
		source := entropy.BlockSource{Height: env.Height, Extra: env.Entropy}
		out, err := controller.Finalize(msg.Sender, req.RoundID, source)
		if err != nil {
			return Response{}, err
		}
		resp.roundAttr(req.RoundID)
		resp.attr("winners", strconv.Itoa(len(out.Winners)))
		resp.attr("remainder", strconv.FormatUint(out.Remainder, 10))
		resp.Transfers = out.Transfers
		resp.Data = FinalizeResult{Winners: raffle.OrEmpty(out.Winners), Payouts: raffle.OrEmpty(out.Payouts), Remainder: out.Remainder}
		log.Engine.Info().Uint64("round", uint64(req.RoundID)).Int("winners", len(out.Winners)).Uint64("remainder", out.Remainder).Msg("round finalized")

	case CancelRound:
		refunds, err := controller.Cancel(msg.Sender, req.RoundID)
		if err != nil {
			return Response{}, err
		}
		resp.roundAttr(req.RoundID)
		resp.Transfers = refunds
		log.Engine.Info().Uint64("round", uint64(req.RoundID)).Int("refunds", len(refunds)).Msg("round cancelled")

	case ReportSettlement:
		if err := controller.ReportSettlement(msg.Sender, req.RoundID, req.Index, req.Settled); err != nil {
			return Response{}, err
		}
		resp.roundAttr(req.RoundID)
		resp.attr("index", strconv.Itoa(req.Index))
		resp.attr("settled", strconv.FormatBool(req.Settled))

	case GetRound:
		round, err := tx.Round(req.RoundID)
		if err != nil {
			return Response{}, err
		}
		resp.Data = round

	case GetWinners:
		round, err := tx.Round(req.RoundID)
		if err != nil {
			return Response{}, err
		}
		resp.Data = WinnersResult{Winners: raffle.OrEmpty(round.Winners), Payouts: raffle.OrEmpty(round.Payouts)}

	case GetCounter:
		next, err := tx.Counter()
		if err != nil {
			return Response{}, err
		}
		resp.Data = CounterResult{Counter: next}

	case GetTotalCustodied:
		custody, err := tx.Custody()
		if err != nil {
			return Response{}, err
		}
		resp.Data = CustodyResult{Total: custody.Total, Rollover: custody.Rollover}

	case ListRounds:
		limit := req.Limit
		if limit <= 0 {
			limit = defaultListLimit
		}
		limit = min(limit, maxListLimit)
		rounds, err := tx.Rounds(req.StartAfter, limit)
		if err != nil {
			return Response{}, err
		}
		resp.Data = RoundsResult{Rounds: raffle.OrEmpty(rounds)}

	case PendingTransfers:
		round, err := tx.Round(req.RoundID)
		if err != nil {
			return Response{}, err
		}
		resp.Data = TransfersResult{Transfers: round.Instructions()}

	default:
		return Response{}, fmt.Errorf("%w: unsupported operation %s", raffle.ErrInvalidRequest, msg.Request.Operation())
	}
	return resp, nil
}

func (e *Engine) init(tx *store.Tx, resp *Response, sender raffle.Address, req Init) error {
	initialized, err := tx.Initialized()
	if err != nil {
		return err
	}
	if initialized {
		return raffle.ErrAlreadyInitialized
	}
	admins := raffle.NewAdminSet(req.Admins)
	if len(admins.Members) == 0 {
		return fmt.Errorf("%w: at least one admin is required", raffle.ErrInvalidRequest)
	}
	var counter raffle.RoundID
	if req.Counter != nil {
		counter = *req.Counter
	}
	if err := tx.PutAdminSet(admins); err != nil {
		return err
	}
	if err := tx.PutCounter(counter); err != nil {
		return err
	}
	resp.attr("owner", string(sender))
	resp.attr("count", strconv.FormatUint(uint64(counter), 10))
	log.Engine.Info().Int("admins", len(admins.Members)).Uint64("counter", uint64(counter)).Msg("engine initialized")
	return nil
}
