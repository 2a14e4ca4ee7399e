package amm

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityPool/internal/model"
)

// SetLocked sets the pool's lock flag on behalf of caller, who must be the
// pool authority. Setting the flag to its current value succeeds.
func (e *Engine) SetLocked(ctx context.Context, pool, caller common.Address, locked bool) (cfg model.PoolConfig, err error) {
	start := time.Now()
	defer func() { e.observe(opSetLocked, pool, start, err) }()

	if err := ctx.Err(); err != nil {
		return model.PoolConfig{}, err
	}
	entry, err := e.entry(pool)
	if err != nil {
		return model.PoolConfig{}, err
	}

	entry.mu.Lock()
	if !entry.cfg.CanAdminister(caller) {
		entry.mu.Unlock()
		return model.PoolConfig{}, model.ErrUnauthorized.Wrapf("%s cannot administer pool %s", caller.Hex(), pool.Hex())
	}
	entry.cfg.Locked = locked
	cfg = entry.cfg
	state, readErr := e.readReserves(cfg)
	entry.mu.Unlock()

	kind := model.EventUnlock
	if locked {
		kind = model.EventLock
	}
	if readErr != nil {
		e.logger.Warn("read reserves for lock event failed", zap.Error(readErr), zap.String("pool", pool.Hex()))
	}
	e.publish(ctx, newEvent(kind, cfg, caller, e.timestamp(ctx), state))
	return cfg, nil
}
