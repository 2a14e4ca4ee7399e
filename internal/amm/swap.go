package amm

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"liquidityPool/internal/curve"
	"liquidityPool/internal/ledger"
	"liquidityPool/internal/model"
)

// SwapRequest sells AmountIn of one pooled asset for at least MinOut of the other.
type SwapRequest struct {
	Pool       common.Address
	Trader     common.Address
	XToY       bool
	AmountIn   uint64
	MinOut     uint64
	Expiration int64
}

// SwapResult reports the executed trade and the post-swap reserves.
type SwapResult struct {
	AmountIn  uint64
	Fee       uint64
	AmountOut uint64
	Reserves  model.ReserveState
}

// Swap trades against the constant-product curve. The post-trade reserves are
// computed and checked before any transfer is staged.
func (e *Engine) Swap(ctx context.Context, req SwapRequest) (res SwapResult, err error) {
	start := time.Now()
	defer func() { e.observe(opSwap, req.Pool, start, err) }()

	entry, err := e.entry(req.Pool)
	if err != nil {
		return SwapResult{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	cfg := entry.cfg

	now, err := e.checkTradable(ctx, cfg, req.Expiration)
	if err != nil {
		return SwapResult{}, err
	}
	if req.AmountIn == 0 {
		return SwapResult{}, model.ErrInvalidAmount.Wrap("amount in must be positive")
	}

	state, err := e.readReserves(cfg)
	if err != nil {
		return SwapResult{}, err
	}
	if state.Empty() {
		return SwapResult{}, model.ErrPoolEmpty.Wrapf("pool %s", cfg.Address.Hex())
	}

	reserveIn, reserveOut := state.Oriented(req.XToY)
	quote, err := curve.SwapOutput(reserveIn, reserveOut, req.AmountIn, cfg.FeeBps)
	if err != nil {
		return SwapResult{}, err
	}
	if quote.AmountOut < req.MinOut {
		return SwapResult{}, model.ErrSlippageExceeded.Wrapf("swap pays %d, minimum is %d", quote.AmountOut, req.MinOut)
	}
	if quote.AmountOut == 0 {
		return SwapResult{}, model.ErrInvalidAmount.Wrapf("input %d buys nothing", req.AmountIn)
	}

	newIn, err := curve.Add(reserveIn, req.AmountIn)
	if err != nil {
		return SwapResult{}, err
	}
	newOut, err := curve.Sub(reserveOut, quote.AmountOut)
	if err != nil {
		return SwapResult{}, err
	}
	if curve.Product(newIn, newOut).Lt(curve.Product(reserveIn, reserveOut)) {
		return SwapResult{}, model.ErrInvariantViolation.Wrapf("product decreased: (%d, %d) -> (%d, %d)",
			reserveIn, reserveOut, newIn, newOut)
	}

	post := model.ReserveState{ReserveX: newIn, ReserveY: newOut, LPSupply: state.LPSupply}
	if !req.XToY {
		post.ReserveX, post.ReserveY = newOut, newIn
	}

	assetIn, assetOut := cfg.Assets(req.XToY)
	err = e.commit(func(tx ledger.Transaction) error {
		if err := tx.Transfer(assetIn, req.Trader, cfg.Vault, req.AmountIn); err != nil {
			return err
		}
		return tx.Transfer(assetOut, cfg.Vault, req.Trader, quote.AmountOut)
	})
	if err != nil {
		return SwapResult{}, err
	}

	e.metrics.observeSwap(cfg, req.XToY, req.AmountIn, quote.Fee)
	e.metrics.observeReserves(cfg, post)

	event := newEvent(model.EventSwap, cfg, req.Trader, unixSeconds(now), post)
	event.XToY, event.AmountIn, event.AmountOut, event.Fee = req.XToY, req.AmountIn, quote.AmountOut, quote.Fee
	e.publish(ctx, event)

	return SwapResult{
		AmountIn:  req.AmountIn,
		Fee:       quote.Fee,
		AmountOut: quote.AmountOut,
		Reserves:  post,
	}, nil
}
