package selection

import (
	"fmt"

	"github.com/eigerco/fury/internal/entropy"
	"github.com/eigerco/fury/internal/raffle"
)

// Mode controls whether one player may win more than one slot.
type Mode uint8

const (
	// WithReplacement draws every slot from the full player list.
	WithReplacement Mode = iota
	// WithoutReplacement removes each winner from the pool before the next draw.
	WithoutReplacement
)

func (m Mode) String() string {
	switch m {
	case WithReplacement:
		return "with_replacement"
	case WithoutReplacement:
		return "without_replacement"
	default:
		return "unknown"
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "with_replacement":
		return WithReplacement, nil
	case "without_replacement":
		return WithoutReplacement, nil
	default:
		return 0, fmt.Errorf("unknown sampling mode %q", s)
	}
}

type Selector struct {
	mode Mode
}

func New(mode Mode) *Selector {
	return &Selector{mode: mode}
}

// Select draws one winner per distribution slot, in slot order. Slot i uses
// players[next_u32 % len(pool)] where the pool is the player list, shrunk by
// the previous winners when drawing without replacement.
func (s *Selector) Select(round raffle.Round, stream *entropy.Stream) ([]raffle.Address, error) {
	players := round.Players
	slots := len(round.Distribution)
	if len(players) == 0 {
		return nil, raffle.ErrNoPlayers
	}

	winners := make([]raffle.Address, 0, slots)
	switch s.mode {
	case WithReplacement:
		n := uint32(len(players))
		for range slots {
			winners = append(winners, players[stream.NextUint32()%n])
		}
	case WithoutReplacement:
		if slots > len(players) {
			return nil, fmt.Errorf("%w: %d slots, %d players", raffle.ErrNotEnoughPlayers, slots, len(players))
		}
		pool := make([]int, len(players))
		for i := range pool {
			pool[i] = i
		}
		for range slots {
			l := len(pool)
			index := stream.NextUint32() % uint32(l)
			winners = append(winners, players[pool[index]])
			pool[index] = pool[l-1]
			pool = pool[:l-1]
		}
	default:
		return nil, fmt.Errorf("unknown sampling mode %d", s.mode)
	}
	return winners, nil
}
