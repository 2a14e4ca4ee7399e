// Package amm is the constant-product pool state-transition engine.
//
// The engine keeps a registry of pool configurations keyed by pool address.
// Operations on one pool are serialized by that pool's mutex; operations on
// different pools run in parallel and meet only in the ledger, whose
// transactions re-validate at commit. Every operation either commits all of
// its ledger mutations or none of them.
package amm

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityPool/internal/ledger"
	"liquidityPool/internal/model"
)

const (
	opInitialize = "initialize"
	opDeposit    = "deposit"
	opWithdraw   = "withdraw"
	opSwap       = "swap"
	opSetLocked  = "set_locked"
)

// Ledger is the balance store the engine reads reserves from and stages
// transfers, mints and burns against.
type Ledger interface {
	Balance(asset, owner common.Address) uint64
	Supply(asset common.Address) uint64
	CreateMint(asset, authority common.Address) error
	Begin() ledger.Transaction
}

// EventSink receives committed pool events.
type EventSink interface {
	PutEvents(ctx context.Context, events []model.PoolEvent) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock deadlines are checked against.
func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics sets the Prometheus collectors to update.
func WithMetrics(metrics *Metrics) Option {
	return func(e *Engine) { e.metrics = metrics }
}

// WithEventSink sets where committed pool events are published.
func WithEventSink(sink EventSink) Option {
	return func(e *Engine) { e.sink = sink }
}

type poolEntry struct {
	mu  sync.Mutex
	cfg model.PoolConfig
}

// Engine executes pool operations against a Ledger.
type Engine struct {
	ledger  Ledger
	clock   Clock
	sink    EventSink
	logger  *zap.Logger
	metrics *Metrics

	mu    sync.RWMutex
	pools map[common.Address]*poolEntry
}

// New builds an Engine. The clock defaults to SystemClock.
func New(l Ledger, opts ...Option) *Engine {
	e := &Engine{
		ledger: l,
		clock:  SystemClock{},
		pools:  make(map[common.Address]*poolEntry),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Pool returns the configuration of a registered pool.
func (e *Engine) Pool(pool common.Address) (model.PoolConfig, error) {
	entry, err := e.entry(pool)
	if err != nil {
		return model.PoolConfig{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.cfg, nil
}

// Pools returns every registered configuration ordered by address.
func (e *Engine) Pools() []model.PoolConfig {
	e.mu.RLock()
	entries := make([]*poolEntry, 0, len(e.pools))
	for _, entry := range e.pools {
		entries = append(entries, entry)
	}
	e.mu.RUnlock()

	out := make([]model.PoolConfig, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		out = append(out, entry.cfg)
		entry.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Address.Hex() < out[j].Address.Hex()
	})
	return out
}

// Export returns the pool records for persistence.
func (e *Engine) Export() []model.PoolConfig {
	return e.Pools()
}

// Restore registers previously exported pools. The LP mints are expected to
// exist in the ledger already. Nothing is registered if any record is invalid
// or already present.
func (e *Engine) Restore(pools []model.PoolConfig) error {
	seen := make(map[common.Address]struct{}, len(pools))
	for _, cfg := range pools {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("restore pool %s: %w", cfg.Address.Hex(), err)
		}
		if _, ok := seen[cfg.Address]; ok {
			return model.ErrAlreadyExists.Wrapf("pool %s listed twice", cfg.Address.Hex())
		}
		seen[cfg.Address] = struct{}{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, cfg := range pools {
		if _, ok := e.pools[cfg.Address]; ok {
			return model.ErrAlreadyExists.Wrapf("pool %s", cfg.Address.Hex())
		}
	}
	for _, cfg := range pools {
		e.pools[cfg.Address] = &poolEntry{cfg: cfg}
	}
	e.metrics.setPools(len(e.pools))
	return nil
}

func (e *Engine) entry(pool common.Address) (*poolEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.pools[pool]
	if !ok {
		return nil, model.ErrPoolNotFound.Wrapf("pool %s", pool.Hex())
	}
	return entry, nil
}

// checkTradable enforces the lock flag and the deadline, returning the
// execution time it checked against.
func (e *Engine) checkTradable(ctx context.Context, cfg model.PoolConfig, expiration int64) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if cfg.Locked {
		return time.Time{}, model.ErrPoolLocked.Wrapf("pool %s", cfg.Address.Hex())
	}
	now, err := e.clock.Now(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("read clock: %w", err)
	}
	if now.Unix() > expiration {
		return time.Time{}, model.ErrDeadlineExpired.Wrapf("now %d is past expiration %d", now.Unix(), expiration)
	}
	return now, nil
}

// commit stages mutations in one ledger transaction and commits them.
func (e *Engine) commit(stage func(tx ledger.Transaction) error) error {
	tx := e.ledger.Begin()
	if err := stage(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// publish hands a committed event to the sink. Failures cannot undo the
// transition and are only logged.
func (e *Engine) publish(ctx context.Context, event model.PoolEvent) {
	if e.sink == nil {
		return
	}
	if err := e.sink.PutEvents(ctx, []model.PoolEvent{event}); err != nil {
		e.logger.Warn("publish pool event failed",
			zap.Error(err),
			zap.String("pool", event.Pool),
			zap.String("kind", string(event.Kind)),
		)
	}
}

func (e *Engine) observe(op string, pool common.Address, start time.Time, err error) {
	e.metrics.observeOperation(op, start, err)
	if err != nil {
		e.logger.Debug("operation rejected",
			zap.String("operation", op),
			zap.String("pool", pool.Hex()),
			zap.String("category", string(model.CategoryOf(err))),
			zap.Error(err),
		)
	}
}

// timestamp reads the clock for events that carry no deadline.
func (e *Engine) timestamp(ctx context.Context) uint64 {
	now, err := e.clock.Now(ctx)
	if err != nil {
		e.logger.Warn("read clock failed", zap.Error(err))
		return 0
	}
	return unixSeconds(now)
}

func unixSeconds(t time.Time) uint64 {
	if t.Unix() < 0 {
		return 0
	}
	return uint64(t.Unix())
}

func newEvent(kind model.EventKind, cfg model.PoolConfig, actor common.Address, ts uint64, post model.ReserveState) model.PoolEvent {
	return model.PoolEvent{
		Pool:      cfg.Address.Hex(),
		Kind:      kind,
		Actor:     actor.Hex(),
		Timestamp: ts,
		ReserveX:  post.ReserveX,
		ReserveY:  post.ReserveY,
		LPSupply:  post.LPSupply,
	}
}
