package amm

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"liquidityPool/internal/model"
)

// InitializeRequest creates a pool for an asset pair.
type InitializeRequest struct {
	Initializer common.Address
	AssetX      common.Address
	AssetY      common.Address
	Seed        uint64
	FeeBps      uint16
	// Authority may toggle the lock flag. Nil means nobody can.
	Authority *common.Address
}

// Initialize registers a new pool with zero reserves and creates its LP mint
// with the pool address as mint authority.
func (e *Engine) Initialize(ctx context.Context, req InitializeRequest) (cfg model.PoolConfig, err error) {
	start := time.Now()
	defer func() { e.observe(opInitialize, cfg.Address, start, err) }()

	if err := ctx.Err(); err != nil {
		return model.PoolConfig{}, err
	}

	cfg, err = model.NewPoolConfig(req.AssetX, req.AssetY, req.Seed, req.FeeBps, req.Authority)
	if err != nil {
		return model.PoolConfig{}, err
	}

	e.mu.Lock()
	if _, ok := e.pools[cfg.Address]; ok {
		e.mu.Unlock()
		return model.PoolConfig{}, model.ErrAlreadyExists.Wrapf("pool %s for seed %d", cfg.Address.Hex(), cfg.Seed)
	}
	if err := e.ledger.CreateMint(cfg.LPMint, cfg.Address); err != nil {
		e.mu.Unlock()
		return model.PoolConfig{}, err
	}
	e.pools[cfg.Address] = &poolEntry{cfg: cfg}
	count := len(e.pools)
	e.mu.Unlock()

	e.metrics.setPools(count)
	e.metrics.observeReserves(cfg, model.ReserveState{})
	e.publish(ctx, newEvent(model.EventInitialize, cfg, req.Initializer, e.timestamp(ctx), model.ReserveState{}))
	return cfg, nil
}
