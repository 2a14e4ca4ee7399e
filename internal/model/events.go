package model

// EventKind names a committed pool transition.
type EventKind string

const (
	EventInitialize EventKind = "initialize"
	EventDeposit    EventKind = "deposit"
	EventWithdraw   EventKind = "withdraw"
	EventSwap       EventKind = "swap"
	EventLock       EventKind = "lock"
	EventUnlock     EventKind = "unlock"
)

// PoolEvent is the journal record emitted after a committed transition.
// Reserve fields carry the post-transition state.
type PoolEvent struct {
	Pool      string    `json:"pool"`
	Kind      EventKind `json:"kind"`
	Actor     string    `json:"actor"`
	Timestamp uint64    `json:"timestamp"`
	AmountX   uint64    `json:"amount_x,omitempty"`
	AmountY   uint64    `json:"amount_y,omitempty"`
	LPAmount  uint64    `json:"lp_amount,omitempty"`
	XToY      bool      `json:"x_to_y,omitempty"`
	AmountIn  uint64    `json:"amount_in,omitempty"`
	AmountOut uint64    `json:"amount_out,omitempty"`
	Fee       uint64    `json:"fee,omitempty"`
	ReserveX  uint64    `json:"reserve_x"`
	ReserveY  uint64    `json:"reserve_y"`
	LPSupply  uint64    `json:"lp_supply"`
}

// SwapEventData is the swap-specific view of a PoolEvent.
type SwapEventData struct {
	XToY      bool
	AmountIn  uint64
	AmountOut uint64
	Fee       uint64
}

// Swap extracts the swap fields; ok is false for other kinds.
func (e PoolEvent) Swap() (SwapEventData, bool) {
	if e.Kind != EventSwap {
		return SwapEventData{}, false
	}
	return SwapEventData{XToY: e.XToY, AmountIn: e.AmountIn, AmountOut: e.AmountOut, Fee: e.Fee}, true
}
