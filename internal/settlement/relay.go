package settlement

import (
	"context"
	"fmt"

	"github.com/eigerco/fury/internal/raffle"
	"github.com/eigerco/fury/pkg/log"
	"github.com/hashicorp/go-multierror"
)

// Reporter records the outcome of a transfer back into the engine.
type Reporter interface {
	ReportSettlement(instr raffle.TransferInstruction, settled bool) error
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(instr raffle.TransferInstruction, settled bool) error

func (f ReporterFunc) ReportSettlement(instr raffle.TransferInstruction, settled bool) error {
	return f(instr, settled)
}

// Relay hands transfer instructions to a Settler and reports each outcome.
// A failed transfer does not stop the remaining ones.
type Relay struct {
	settler  Settler
	reporter Reporter
}

func NewRelay(settler Settler, reporter Reporter) *Relay {
	return &Relay{settler: settler, reporter: reporter}
}

// Deliver settles instrs in order. The returned error aggregates every failed
// transfer and every report the engine rejected.
func (r *Relay) Deliver(ctx context.Context, instrs []raffle.TransferInstruction) error {
	var result *multierror.Error
	for _, instr := range instrs {
		if err := ctx.Err(); err != nil {
			return multierror.Append(result, err).ErrorOrNil()
		}
		settled := true
		if err := r.settler.Transfer(ctx, instr); err != nil {
			settled = false
			log.Settlement.Warn().Err(err).
				Uint64("round", uint64(instr.RoundID)).
				Int("index", instr.Index).
				Str("recipient", string(instr.Recipient)).
				Msg("transfer failed")
			result = multierror.Append(result, fmt.Errorf("transfer %d of round %d: %w", instr.Index, instr.RoundID, err))
		}
		if err := r.reporter.ReportSettlement(instr, settled); err != nil {
			result = multierror.Append(result, fmt.Errorf("report transfer %d of round %d: %w", instr.Index, instr.RoundID, err))
			continue
		}
		log.Settlement.Debug().
			Uint64("round", uint64(instr.RoundID)).
			Int("index", instr.Index).
			Bool("settled", settled).
			Msg("settlement reported")
	}
	return result.ErrorOrNil()
}
