package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/eigerco/fury/internal/raffle"
)

// Settler moves native funds on behalf of the engine. A nil error means the
// transfer went through.
type Settler interface {
	Transfer(ctx context.Context, instr raffle.TransferInstruction) error
}

// LogSettler writes every instruction as one JSON line to w and reports it as
// settled. It stands in for a real bank module when running the engine from
// the command line.
type LogSettler struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewLogSettler(w io.Writer) *LogSettler {
	return &LogSettler{enc: json.NewEncoder(w)}
}

func (l *LogSettler) Transfer(ctx context.Context, instr raffle.TransferInstruction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(instr); err != nil {
		return fmt.Errorf("write transfer instruction: %w", err)
	}
	return nil
}
