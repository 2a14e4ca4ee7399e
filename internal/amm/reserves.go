package amm

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"liquidityPool/internal/curve"
	"liquidityPool/internal/model"
)

// Reserves returns a consistent read of the pool's vault balances and LP supply.
func (e *Engine) Reserves(pool common.Address) (model.ReserveState, error) {
	entry, err := e.entry(pool)
	if err != nil {
		return model.ReserveState{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return e.readReserves(entry.cfg)
}

// QuoteSwap prices a swap against the current reserves without executing it.
// The lock flag and deadline are not consulted.
func (e *Engine) QuoteSwap(ctx context.Context, pool common.Address, xToY bool, amountIn uint64) (curve.SwapQuote, error) {
	if err := ctx.Err(); err != nil {
		return curve.SwapQuote{}, err
	}
	entry, err := e.entry(pool)
	if err != nil {
		return curve.SwapQuote{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	state, err := e.readReserves(entry.cfg)
	if err != nil {
		return curve.SwapQuote{}, err
	}
	if state.Empty() {
		return curve.SwapQuote{}, model.ErrPoolEmpty.Wrapf("pool %s", pool.Hex())
	}
	reserveIn, reserveOut := state.Oriented(xToY)
	return curve.SwapOutput(reserveIn, reserveOut, amountIn, entry.cfg.FeeBps)
}

// readReserves must be called with the pool entry locked.
func (e *Engine) readReserves(cfg model.PoolConfig) (model.ReserveState, error) {
	state := model.ReserveState{
		ReserveX: e.ledger.Balance(cfg.AssetX, cfg.Vault),
		ReserveY: e.ledger.Balance(cfg.AssetY, cfg.Vault),
		LPSupply: e.ledger.Supply(cfg.LPMint),
	}
	if err := state.Validate(); err != nil {
		return model.ReserveState{}, err
	}
	return state, nil
}
