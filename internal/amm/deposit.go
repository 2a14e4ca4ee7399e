package amm

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"liquidityPool/internal/curve"
	"liquidityPool/internal/ledger"
	"liquidityPool/internal/model"
)

// DepositRequest mints LPAmount ownership tokens in exchange for at most
// MaxX and MaxY of the pooled assets.
type DepositRequest struct {
	Pool       common.Address
	Depositor  common.Address
	LPAmount   uint64
	MaxX       uint64
	MaxY       uint64
	Expiration int64
}

// DepositResult reports the amounts taken and the post-deposit reserves.
type DepositResult struct {
	AmountX  uint64
	AmountY  uint64
	LPMinted uint64
	Reserves model.ReserveState
}

// Deposit adds liquidity. Into an empty pool the depositor contributes MaxX
// and MaxY exactly and receives LPAmount, which fixes the initial rate; any
// unowned vault balance goes to that depositor's share.
func (e *Engine) Deposit(ctx context.Context, req DepositRequest) (res DepositResult, err error) {
	start := time.Now()
	defer func() { e.observe(opDeposit, req.Pool, start, err) }()

	entry, err := e.entry(req.Pool)
	if err != nil {
		return DepositResult{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	cfg := entry.cfg

	now, err := e.checkTradable(ctx, cfg, req.Expiration)
	if err != nil {
		return DepositResult{}, err
	}
	if req.LPAmount == 0 {
		return DepositResult{}, model.ErrInvalidAmount.Wrap("lp amount must be positive")
	}

	state, err := e.readReserves(cfg)
	if err != nil {
		return DepositResult{}, err
	}
	quote, err := curve.DepositAmounts(state.ReserveX, state.ReserveY, state.LPSupply, req.LPAmount, req.MaxX, req.MaxY)
	if err != nil {
		return DepositResult{}, err
	}
	if state.LPSupply == 0 && (quote.AmountX == 0 || quote.AmountY == 0) {
		return DepositResult{}, model.ErrInvalidAmount.Wrap("first deposit must fund both assets")
	}
	if state.LPSupply > 0 {
		worth, err := curve.LiquidityForAmounts(state.ReserveX, state.ReserveY, state.LPSupply, quote.AmountX, quote.AmountY)
		if err != nil {
			return DepositResult{}, err
		}
		if worth < quote.LPMinted {
			return DepositResult{}, model.ErrInvariantViolation.Wrapf("contribution (%d, %d) is worth %d lp, not %d",
				quote.AmountX, quote.AmountY, worth, quote.LPMinted)
		}
	}
	if quote.AmountX > req.MaxX || quote.AmountY > req.MaxY {
		return DepositResult{}, model.ErrSlippageExceeded.Wrapf("deposit needs (%d, %d), limits are (%d, %d)",
			quote.AmountX, quote.AmountY, req.MaxX, req.MaxY)
	}

	var post model.ReserveState
	if post.ReserveX, err = curve.Add(state.ReserveX, quote.AmountX); err != nil {
		return DepositResult{}, err
	}
	if post.ReserveY, err = curve.Add(state.ReserveY, quote.AmountY); err != nil {
		return DepositResult{}, err
	}
	if post.LPSupply, err = curve.Add(state.LPSupply, quote.LPMinted); err != nil {
		return DepositResult{}, err
	}
	if err := post.Validate(); err != nil {
		return DepositResult{}, err
	}

	err = e.commit(func(tx ledger.Transaction) error {
		if err := tx.Transfer(cfg.AssetX, req.Depositor, cfg.Vault, quote.AmountX); err != nil {
			return err
		}
		if err := tx.Transfer(cfg.AssetY, req.Depositor, cfg.Vault, quote.AmountY); err != nil {
			return err
		}
		return tx.Mint(cfg.LPMint, cfg.Address, req.Depositor, quote.LPMinted)
	})
	if err != nil {
		return DepositResult{}, err
	}

	e.metrics.observeLiquidity(cfg, true, quote.AmountX, quote.AmountY)
	e.metrics.observeReserves(cfg, post)

	event := newEvent(model.EventDeposit, cfg, req.Depositor, unixSeconds(now), post)
	event.AmountX, event.AmountY, event.LPAmount = quote.AmountX, quote.AmountY, quote.LPMinted
	e.publish(ctx, event)

	return DepositResult{
		AmountX:  quote.AmountX,
		AmountY:  quote.AmountY,
		LPMinted: quote.LPMinted,
		Reserves: post,
	}, nil
}
