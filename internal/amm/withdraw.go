package amm

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"liquidityPool/internal/curve"
	"liquidityPool/internal/ledger"
	"liquidityPool/internal/model"
)

// WithdrawRequest burns LPAmount ownership tokens for at least MinX and MinY.
type WithdrawRequest struct {
	Pool       common.Address
	Withdrawer common.Address
	LPAmount   uint64
	MinX       uint64
	MinY       uint64
	Expiration int64
}

// WithdrawResult reports the amounts paid out and the post-withdrawal reserves.
type WithdrawResult struct {
	AmountX  uint64
	AmountY  uint64
	LPBurned uint64
	Reserves model.ReserveState
}

// Withdraw redeems a proportional share of both reserves. The LP balance of
// the withdrawer is checked by the ledger when the burn is staged.
func (e *Engine) Withdraw(ctx context.Context, req WithdrawRequest) (res WithdrawResult, err error) {
	start := time.Now()
	defer func() { e.observe(opWithdraw, req.Pool, start, err) }()

	entry, err := e.entry(req.Pool)
	if err != nil {
		return WithdrawResult{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	cfg := entry.cfg

	now, err := e.checkTradable(ctx, cfg, req.Expiration)
	if err != nil {
		return WithdrawResult{}, err
	}
	if req.LPAmount == 0 {
		return WithdrawResult{}, model.ErrInvalidAmount.Wrap("lp amount must be positive")
	}

	state, err := e.readReserves(cfg)
	if err != nil {
		return WithdrawResult{}, err
	}
	if state.Empty() {
		return WithdrawResult{}, model.ErrPoolEmpty.Wrapf("pool %s", cfg.Address.Hex())
	}
	if req.LPAmount > state.LPSupply {
		return WithdrawResult{}, model.ErrInsufficientFunds.Wrapf("burn %d exceeds lp supply %d", req.LPAmount, state.LPSupply)
	}

	quote, err := curve.WithdrawAmounts(state.ReserveX, state.ReserveY, state.LPSupply, req.LPAmount)
	if err != nil {
		return WithdrawResult{}, err
	}
	if quote.AmountX < req.MinX || quote.AmountY < req.MinY {
		return WithdrawResult{}, model.ErrSlippageExceeded.Wrapf("withdraw pays (%d, %d), minimums are (%d, %d)",
			quote.AmountX, quote.AmountY, req.MinX, req.MinY)
	}

	var post model.ReserveState
	if post.ReserveX, err = curve.Sub(state.ReserveX, quote.AmountX); err != nil {
		return WithdrawResult{}, err
	}
	if post.ReserveY, err = curve.Sub(state.ReserveY, quote.AmountY); err != nil {
		return WithdrawResult{}, err
	}
	if post.LPSupply, err = curve.Sub(state.LPSupply, req.LPAmount); err != nil {
		return WithdrawResult{}, err
	}
	if post.LPSupply == 0 && (post.ReserveX != 0 || post.ReserveY != 0) {
		return WithdrawResult{}, model.ErrInvariantViolation.Wrapf("full withdrawal leaves reserves (%d, %d)",
			post.ReserveX, post.ReserveY)
	}
	if err := post.Validate(); err != nil {
		return WithdrawResult{}, err
	}

	err = e.commit(func(tx ledger.Transaction) error {
		if err := tx.Burn(cfg.LPMint, cfg.Address, req.Withdrawer, req.LPAmount); err != nil {
			return err
		}
		if err := tx.Transfer(cfg.AssetX, cfg.Vault, req.Withdrawer, quote.AmountX); err != nil {
			return err
		}
		return tx.Transfer(cfg.AssetY, cfg.Vault, req.Withdrawer, quote.AmountY)
	})
	if err != nil {
		return WithdrawResult{}, err
	}

	e.metrics.observeLiquidity(cfg, false, quote.AmountX, quote.AmountY)
	e.metrics.observeReserves(cfg, post)

	event := newEvent(model.EventWithdraw, cfg, req.Withdrawer, unixSeconds(now), post)
	event.AmountX, event.AmountY, event.LPAmount = quote.AmountX, quote.AmountY, req.LPAmount
	e.publish(ctx, event)

	return WithdrawResult{
		AmountX:  quote.AmountX,
		AmountY:  quote.AmountY,
		LPBurned: req.LPAmount,
		Reserves: post,
	}, nil
}
