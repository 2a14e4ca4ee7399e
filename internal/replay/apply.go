package replay

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"liquidityPool/internal/amm"
	"liquidityPool/internal/model"
)

// Engine is the pool engine surface a replay drives.
type Engine interface {
	Initialize(ctx context.Context, req amm.InitializeRequest) (model.PoolConfig, error)
	Deposit(ctx context.Context, req amm.DepositRequest) (amm.DepositResult, error)
	Withdraw(ctx context.Context, req amm.WithdrawRequest) (amm.WithdrawResult, error)
	Swap(ctx context.Context, req amm.SwapRequest) (amm.SwapResult, error)
	SetLocked(ctx context.Context, pool, caller common.Address, locked bool) (model.PoolConfig, error)
}

// Funder issues external assets to accounts.
type Funder interface {
	Fund(asset, to common.Address, amount uint64) error
}

// Apply executes one operation against the engine.
func Apply(ctx context.Context, engine Engine, funder Funder, op model.Operation) error {
	actor, err := model.ParseAddress(op.Actor)
	if err != nil {
		return fmt.Errorf("actor: %w", err)
	}

	switch op.Kind {
	case model.OpInitialize:
		assetX, assetY, err := parsePair(op)
		if err != nil {
			return err
		}
		authority, err := model.ParseOptionalAddress(op.Authority)
		if err != nil {
			return fmt.Errorf("authority: %w", err)
		}
		_, err = engine.Initialize(ctx, amm.InitializeRequest{
			Initializer: actor,
			AssetX:      assetX,
			AssetY:      assetY,
			Seed:        op.Seed,
			FeeBps:      op.FeeBps,
			Authority:   authority,
		})
		return err

	case model.OpFund:
		if funder == nil {
			return fmt.Errorf("fund operations need a ledger")
		}
		asset, err := model.ParseAddress(op.Asset)
		if err != nil {
			return fmt.Errorf("asset: %w", err)
		}
		return funder.Fund(asset, actor, op.Amount)
	}

	pool, err := resolvePool(op)
	if err != nil {
		return err
	}

	switch op.Kind {
	case model.OpDeposit:
		_, err = engine.Deposit(ctx, amm.DepositRequest{
			Pool: pool, Depositor: actor, LPAmount: op.Amount,
			MaxX: op.LimitX, MaxY: op.LimitY, Expiration: op.Expiration,
		})
	case model.OpWithdraw:
		_, err = engine.Withdraw(ctx, amm.WithdrawRequest{
			Pool: pool, Withdrawer: actor, LPAmount: op.Amount,
			MinX: op.LimitX, MinY: op.LimitY, Expiration: op.Expiration,
		})
	case model.OpSwap:
		_, err = engine.Swap(ctx, amm.SwapRequest{
			Pool: pool, Trader: actor, XToY: op.XToY, AmountIn: op.Amount,
			MinOut: op.MinOut, Expiration: op.Expiration,
		})
	case model.OpLock, model.OpUnlock:
		_, err = engine.SetLocked(ctx, pool, actor, op.Kind == model.OpLock)
	default:
		err = fmt.Errorf("unknown operation kind %q", op.Kind)
	}
	return err
}

// resolvePool takes the explicit pool address, or derives it from the pair and seed.
func resolvePool(op model.Operation) (common.Address, error) {
	if op.Pool != "" {
		pool, err := model.ParseAddress(op.Pool)
		if err != nil {
			return common.Address{}, fmt.Errorf("pool: %w", err)
		}
		return pool, nil
	}
	assetX, assetY, err := parsePair(op)
	if err != nil {
		return common.Address{}, fmt.Errorf("pool or asset pair required: %w", err)
	}
	return model.DerivePoolAddress(assetX, assetY, op.Seed), nil
}

func parsePair(op model.Operation) (common.Address, common.Address, error) {
	assetX, err := model.ParseAddress(op.AssetX)
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("asset_x: %w", err)
	}
	assetY, err := model.ParseAddress(op.AssetY)
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("asset_y: %w", err)
	}
	return assetX, assetY, nil
}
