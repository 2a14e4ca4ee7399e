package aggregate

import (
	"fmt"

	"github.com/holiman/uint256"

	"liquidityPool/internal/model"
)

// Accumulator holds aggregate values for a pool window.
type Accumulator struct {
	PoolAddress   string
	WindowStart   uint64
	WindowEnd     uint64
	SwapCount     uint64
	DepositCount  uint64
	WithdrawCount uint64
	VolumeX       *uint256.Int
	VolumeY       *uint256.Int
	FeeX          *uint256.Int
	FeeY          *uint256.Int
	ReserveX      uint64
	ReserveY      uint64
	LPSupply      uint64
	LastTS        uint64
}

func NewAccumulator(event model.PoolEvent, windowStart, windowEnd uint64) *Accumulator {
	return &Accumulator{
		PoolAddress: event.Pool,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		VolumeX:     new(uint256.Int),
		VolumeY:     new(uint256.Int),
		FeeX:        new(uint256.Int),
		FeeY:        new(uint256.Int),
		ReserveX:    event.ReserveX,
		ReserveY:    event.ReserveY,
		LPSupply:    event.LPSupply,
		LastTS:      event.Timestamp,
	}
}

// AddEvent folds one journal event into the window. The closing reserves
// follow the latest event seen.
func (a *Accumulator) AddEvent(event model.PoolEvent) error {
	if event.Timestamp < a.WindowStart || event.Timestamp >= a.WindowEnd {
		return fmt.Errorf("event at %d outside window [%d, %d)", event.Timestamp, a.WindowStart, a.WindowEnd)
	}
	if event.Timestamp >= a.LastTS {
		a.LastTS = event.Timestamp
		a.ReserveX = event.ReserveX
		a.ReserveY = event.ReserveY
		a.LPSupply = event.LPSupply
	}

	switch event.Kind {
	case model.EventSwap:
		swap, _ := event.Swap()
		a.applySwap(swap)
	case model.EventDeposit:
		a.DepositCount++
	case model.EventWithdraw:
		a.WithdrawCount++
	case model.EventInitialize, model.EventLock, model.EventUnlock:
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}
	return nil
}

// applySwap books the input on its own asset side, the fee with it, and the
// output on the other side.
func (a *Accumulator) applySwap(swap model.SwapEventData) {
	in, out := a.VolumeX, a.VolumeY
	fee := a.FeeX
	if !swap.XToY {
		in, out = a.VolumeY, a.VolumeX
		fee = a.FeeY
	}
	in.Add(in, uint256.NewInt(swap.AmountIn))
	out.Add(out, uint256.NewInt(swap.AmountOut))
	fee.Add(fee, uint256.NewInt(swap.Fee))
	a.SwapCount++
}
