package amm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"liquidityPool/internal/curve"
	"liquidityPool/internal/ledger"
	"liquidityPool/internal/model"
)

var (
	assetX = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	assetY = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	assetZ = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	admin  = common.HexToAddress("0x000000000000000000000000000000000000ad31")
	alice  = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	bob    = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

var now = time.Unix(1_700_000_000, 0).UTC()

const deadline = int64(1_700_000_060)

type captureSink struct {
	mu     sync.Mutex
	events []model.PoolEvent
	err    error
}

func (s *captureSink) PutEvents(_ context.Context, events []model.PoolEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, events...)
	return nil
}

func (s *captureSink) kinds() []model.EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.EventKind, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Kind)
	}
	return out
}

type fixture struct {
	ledger *ledger.Ledger
	engine *Engine
	sink   *captureSink
	pool   model.PoolConfig
}

func newFixture(t *testing.T, feeBps uint16, opts ...Option) *fixture {
	t.Helper()
	l := ledger.New()
	sink := &captureSink{}
	opts = append([]Option{WithClock(FixedClock(now)), WithEventSink(sink)}, opts...)
	e := New(l, opts...)

	for _, owner := range []common.Address{alice, bob} {
		require.NoError(t, l.Fund(assetX, owner, 10_000))
		require.NoError(t, l.Fund(assetY, owner, 10_000))
	}

	auth := admin
	pool, err := e.Initialize(context.Background(), InitializeRequest{
		Initializer: admin,
		AssetX:      assetX,
		AssetY:      assetY,
		Seed:        7,
		FeeBps:      feeBps,
		Authority:   &auth,
	})
	require.NoError(t, err)
	return &fixture{ledger: l, engine: e, sink: sink, pool: pool}
}

func (f *fixture) deposit(t *testing.T, who common.Address, lp, maxX, maxY uint64) DepositResult {
	t.Helper()
	res, err := f.engine.Deposit(context.Background(), DepositRequest{
		Pool: f.pool.Address, Depositor: who, LPAmount: lp, MaxX: maxX, MaxY: maxY, Expiration: deadline,
	})
	require.NoError(t, err)
	return res
}

func TestInitializeRegistersPoolAndMint(t *testing.T) {
	f := newFixture(t, 30)

	require.False(t, f.pool.Locked)
	require.Equal(t, uint16(30), f.pool.FeeBps)
	auth, ok := f.ledger.MintAuthority(f.pool.LPMint)
	require.True(t, ok)
	require.Equal(t, f.pool.Address, auth)

	state, err := f.engine.Reserves(f.pool.Address)
	require.NoError(t, err)
	require.True(t, state.Empty())
	require.Equal(t, []model.EventKind{model.EventInitialize}, f.sink.kinds())
}

func TestInitializeRejectsDuplicate(t *testing.T) {
	f := newFixture(t, 30)
	_, err := f.engine.Initialize(context.Background(), InitializeRequest{AssetX: assetX, AssetY: assetY, Seed: 7, FeeBps: 5})
	require.ErrorIs(t, err, model.ErrAlreadyExists)
	require.Equal(t, model.CategoryConfig, model.CategoryOf(err))

	other, err := f.engine.Initialize(context.Background(), InitializeRequest{AssetX: assetX, AssetY: assetY, Seed: 8, FeeBps: 5})
	require.NoError(t, err)
	require.NotEqual(t, f.pool.Address, other.Address)
	require.Len(t, f.engine.Pools(), 2)
}

func TestInitializeRejectsFeeOutOfRange(t *testing.T) {
	e := New(ledger.New())
	_, err := e.Initialize(context.Background(), InitializeRequest{AssetX: assetX, AssetY: assetY, FeeBps: 10_001})
	require.ErrorIs(t, err, model.ErrFeeOutOfRange)
	require.Empty(t, e.Pools())

	_, err = e.Initialize(context.Background(), InitializeRequest{AssetX: assetX, AssetY: assetX, FeeBps: 30})
	require.ErrorIs(t, err, model.ErrSameAsset)
	require.Empty(t, e.Pools())
}

func TestFirstDepositSetsRate(t *testing.T) {
	f := newFixture(t, 30)
	res := f.deposit(t, alice, 1000, 500, 500)

	require.Equal(t, DepositResult{AmountX: 500, AmountY: 500, LPMinted: 1000,
		Reserves: model.ReserveState{ReserveX: 500, ReserveY: 500, LPSupply: 1000}}, res)
	require.Equal(t, uint64(1000), f.ledger.Balance(f.pool.LPMint, alice))
	require.Equal(t, uint64(9_500), f.ledger.Balance(assetX, alice))

	state, err := f.engine.Reserves(f.pool.Address)
	require.NoError(t, err)
	require.Equal(t, res.Reserves, state)
}

func TestFirstDepositMustFundBothAssets(t *testing.T) {
	f := newFixture(t, 30)
	_, err := f.engine.Deposit(context.Background(), DepositRequest{
		Pool: f.pool.Address, Depositor: alice, LPAmount: 10, MaxX: 10, MaxY: 0, Expiration: deadline,
	})
	require.ErrorIs(t, err, model.ErrInvalidAmount)
}

func TestSwapReferenceScenario(t *testing.T) {
	f := newFixture(t, 30)
	f.deposit(t, alice, 1000, 1000, 1000)

	req := SwapRequest{Pool: f.pool.Address, Trader: bob, XToY: true, AmountIn: 100, MinOut: 91, Expiration: deadline}
	_, err := f.engine.Swap(context.Background(), req)
	require.ErrorIs(t, err, model.ErrSlippageExceeded)
	require.Equal(t, model.CategorySlippage, model.CategoryOf(err))
	require.Equal(t, uint64(10_000), f.ledger.Balance(assetX, bob))

	req.MinOut = 90
	res, err := f.engine.Swap(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, uint64(90), res.AmountOut)
	require.Equal(t, uint64(1), res.Fee)
	require.Equal(t, model.ReserveState{ReserveX: 1100, ReserveY: 910, LPSupply: 1000}, res.Reserves)
	require.Equal(t, uint64(9_900), f.ledger.Balance(assetX, bob))
	require.Equal(t, uint64(10_090), f.ledger.Balance(assetY, bob))

	require.False(t, curve.Product(1100, 910).Lt(curve.Product(1000, 1000)))
}

func TestSwapYToX(t *testing.T) {
	f := newFixture(t, 0)
	f.deposit(t, alice, 1000, 1000, 2000)

	res, err := f.engine.Swap(context.Background(), SwapRequest{
		Pool: f.pool.Address, Trader: bob, XToY: false, AmountIn: 200, Expiration: deadline,
	})
	require.NoError(t, err)
	// 1000 * 200 / 2200
	require.Equal(t, uint64(90), res.AmountOut)
	require.Equal(t, model.ReserveState{ReserveX: 910, ReserveY: 2200, LPSupply: 1000}, res.Reserves)
}

func TestSwapAfterDeadline(t *testing.T) {
	f := newFixture(t, 30)
	f.deposit(t, alice, 1000, 1000, 1000)

	_, err := f.engine.Swap(context.Background(), SwapRequest{
		Pool: f.pool.Address, Trader: bob, XToY: true, AmountIn: 100, Expiration: now.Unix() - 1,
	})
	require.ErrorIs(t, err, model.ErrDeadlineExpired)
	require.Equal(t, model.CategoryState, model.CategoryOf(err))
	require.Equal(t, uint64(10_000), f.ledger.Balance(assetX, bob))
	require.Equal(t, uint64(10_000), f.ledger.Balance(assetY, bob))

	_, err = f.engine.Swap(context.Background(), SwapRequest{
		Pool: f.pool.Address, Trader: bob, XToY: true, AmountIn: 100, Expiration: now.Unix(),
	})
	require.NoError(t, err, "expiration equal to now is still valid")
}

func TestSwapRejections(t *testing.T) {
	f := newFixture(t, 30)

	_, err := f.engine.Swap(context.Background(), SwapRequest{Pool: f.pool.Address, Trader: bob, XToY: true, AmountIn: 10, Expiration: deadline})
	require.ErrorIs(t, err, model.ErrPoolEmpty)

	f.deposit(t, alice, 1000, 1000, 1000)
	_, err = f.engine.Swap(context.Background(), SwapRequest{Pool: f.pool.Address, Trader: bob, XToY: true, AmountIn: 0, Expiration: deadline})
	require.ErrorIs(t, err, model.ErrInvalidAmount)

	_, err = f.engine.Swap(context.Background(), SwapRequest{Pool: f.pool.Address, Trader: bob, XToY: true, AmountIn: 1, Expiration: deadline})
	require.ErrorIs(t, err, model.ErrInvalidAmount, "output rounds to zero")

	_, err = f.engine.Swap(context.Background(), SwapRequest{Pool: common.Address{}, Trader: bob, AmountIn: 1, Expiration: deadline})
	require.ErrorIs(t, err, model.ErrPoolNotFound)
	require.Equal(t, model.CategoryInput, model.CategoryOf(err))
}

func TestSwapInsufficientFundsLeavesNothing(t *testing.T) {
	f := newFixture(t, 30)
	f.deposit(t, alice, 1000, 1000, 1000)

	_, err := f.engine.Swap(context.Background(), SwapRequest{
		Pool: f.pool.Address, Trader: bob, XToY: true, AmountIn: 10_001, Expiration: deadline,
	})
	require.ErrorIs(t, err, model.ErrInsufficientFunds)
	require.Equal(t, model.CategoryTransfer, model.CategoryOf(err))

	state, err := f.engine.Reserves(f.pool.Address)
	require.NoError(t, err)
	require.Equal(t, model.ReserveState{ReserveX: 1000, ReserveY: 1000, LPSupply: 1000}, state)
	require.Equal(t, uint64(10_000), f.ledger.Balance(assetY, bob))
}

func TestDepositProportional(t *testing.T) {
	f := newFixture(t, 30)
	f.deposit(t, alice, 1000, 1000, 1000)
	_, err := f.engine.Swap(context.Background(), SwapRequest{
		Pool: f.pool.Address, Trader: bob, XToY: true, AmountIn: 100, Expiration: deadline,
	})
	require.NoError(t, err)

	// reserves (1100, 910): ceil(1100*100/1000) = 110, ceil(910*100/1000) = 91
	_, err = f.engine.Deposit(context.Background(), DepositRequest{
		Pool: f.pool.Address, Depositor: bob, LPAmount: 100, MaxX: 110, MaxY: 90, Expiration: deadline,
	})
	require.ErrorIs(t, err, model.ErrSlippageExceeded)

	res := f.deposit(t, bob, 100, 110, 91)
	require.Equal(t, uint64(110), res.AmountX)
	require.Equal(t, uint64(91), res.AmountY)
	require.Equal(t, model.ReserveState{ReserveX: 1210, ReserveY: 1001, LPSupply: 1100}, res.Reserves)
	require.Equal(t, uint64(100), f.ledger.Balance(f.pool.LPMint, bob))
}

func TestDepositTransferFailureIsAtomic(t *testing.T) {
	f := newFixture(t, 30)
	poor := common.HexToAddress("0x0000000000000000000000000000000000000bad")
	require.NoError(t, f.ledger.Fund(assetX, poor, 500))

	_, err := f.engine.Deposit(context.Background(), DepositRequest{
		Pool: f.pool.Address, Depositor: poor, LPAmount: 1000, MaxX: 500, MaxY: 500, Expiration: deadline,
	})
	require.ErrorIs(t, err, model.ErrInsufficientFunds)
	require.Equal(t, uint64(500), f.ledger.Balance(assetX, poor))
	require.Zero(t, f.ledger.Supply(f.pool.LPMint))
	require.Equal(t, []model.EventKind{model.EventInitialize}, f.sink.kinds())
}

func TestWithdrawFullDrainsPool(t *testing.T) {
	f := newFixture(t, 30)
	f.deposit(t, alice, 1000, 1000, 1000)
	_, err := f.engine.Swap(context.Background(), SwapRequest{
		Pool: f.pool.Address, Trader: bob, XToY: true, AmountIn: 100, Expiration: deadline,
	})
	require.NoError(t, err)

	res, err := f.engine.Withdraw(context.Background(), WithdrawRequest{
		Pool: f.pool.Address, Withdrawer: alice, LPAmount: 1000, MinX: 1100, MinY: 910, Expiration: deadline,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1100), res.AmountX)
	require.Equal(t, uint64(910), res.AmountY)
	require.True(t, res.Reserves.Empty())

	state, err := f.engine.Reserves(f.pool.Address)
	require.NoError(t, err)
	require.True(t, state.Empty())
	require.Equal(t, uint64(10_100), f.ledger.Balance(assetX, alice))
	require.Equal(t, uint64(9_910), f.ledger.Balance(assetY, alice))
}

func TestWithdrawPartialAndSlippage(t *testing.T) {
	f := newFixture(t, 30)
	f.deposit(t, alice, 300, 1000, 2001)

	_, err := f.engine.Withdraw(context.Background(), WithdrawRequest{
		Pool: f.pool.Address, Withdrawer: alice, LPAmount: 100, MinX: 334, Expiration: deadline,
	})
	require.ErrorIs(t, err, model.ErrSlippageExceeded)

	res, err := f.engine.Withdraw(context.Background(), WithdrawRequest{
		Pool: f.pool.Address, Withdrawer: alice, LPAmount: 100, MinX: 333, MinY: 667, Expiration: deadline,
	})
	require.NoError(t, err)
	require.Equal(t, model.ReserveState{ReserveX: 667, ReserveY: 1334, LPSupply: 200}, res.Reserves)
	require.Equal(t, uint64(200), f.ledger.Balance(f.pool.LPMint, alice))
}

func TestWithdrawRequiresHeldLP(t *testing.T) {
	f := newFixture(t, 30)
	f.deposit(t, alice, 1000, 1000, 1000)

	_, err := f.engine.Withdraw(context.Background(), WithdrawRequest{
		Pool: f.pool.Address, Withdrawer: bob, LPAmount: 10, Expiration: deadline,
	})
	require.ErrorIs(t, err, model.ErrInsufficientFunds)
	require.Equal(t, uint64(10_000), f.ledger.Balance(assetX, bob))

	_, err = f.engine.Withdraw(context.Background(), WithdrawRequest{
		Pool: f.pool.Address, Withdrawer: alice, LPAmount: 0, Expiration: deadline,
	})
	require.ErrorIs(t, err, model.ErrInvalidAmount)
}

func TestLockGatesOperations(t *testing.T) {
	f := newFixture(t, 30)
	f.deposit(t, alice, 1000, 1000, 1000)
	ctx := context.Background()

	_, err := f.engine.SetLocked(ctx, f.pool.Address, bob, true)
	require.ErrorIs(t, err, model.ErrUnauthorized)

	cfg, err := f.engine.SetLocked(ctx, f.pool.Address, admin, true)
	require.NoError(t, err)
	require.True(t, cfg.Locked)

	_, err = f.engine.Swap(ctx, SwapRequest{Pool: f.pool.Address, Trader: bob, XToY: true, AmountIn: 100, Expiration: deadline})
	require.ErrorIs(t, err, model.ErrPoolLocked)
	_, err = f.engine.Deposit(ctx, DepositRequest{Pool: f.pool.Address, Depositor: bob, LPAmount: 1, MaxX: 10, MaxY: 10, Expiration: deadline})
	require.ErrorIs(t, err, model.ErrPoolLocked)
	_, err = f.engine.Withdraw(ctx, WithdrawRequest{Pool: f.pool.Address, Withdrawer: alice, LPAmount: 1, Expiration: deadline})
	require.ErrorIs(t, err, model.ErrPoolLocked)

	_, err = f.engine.SetLocked(ctx, f.pool.Address, admin, false)
	require.NoError(t, err)
	_, err = f.engine.Swap(ctx, SwapRequest{Pool: f.pool.Address, Trader: bob, XToY: true, AmountIn: 100, Expiration: deadline})
	require.NoError(t, err)

	require.Equal(t, []model.EventKind{
		model.EventInitialize, model.EventDeposit, model.EventLock, model.EventUnlock, model.EventSwap,
	}, f.sink.kinds())
}

func TestPoolWithoutAuthorityCannotBeLocked(t *testing.T) {
	e := New(ledger.New(), WithClock(FixedClock(now)))
	cfg, err := e.Initialize(context.Background(), InitializeRequest{AssetX: assetX, AssetY: assetZ, FeeBps: 30})
	require.NoError(t, err)
	require.Nil(t, cfg.Authority)

	_, err = e.SetLocked(context.Background(), cfg.Address, admin, true)
	require.ErrorIs(t, err, model.ErrUnauthorized)
	_, err = e.SetLocked(context.Background(), cfg.Address, common.Address{}, true)
	require.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestEventsCarryPostState(t *testing.T) {
	f := newFixture(t, 30)
	f.deposit(t, alice, 1000, 1000, 1000)
	_, err := f.engine.Swap(context.Background(), SwapRequest{
		Pool: f.pool.Address, Trader: bob, XToY: true, AmountIn: 100, Expiration: deadline,
	})
	require.NoError(t, err)

	f.sink.mu.Lock()
	last := f.sink.events[len(f.sink.events)-1]
	f.sink.mu.Unlock()

	swap, ok := last.Swap()
	require.True(t, ok)
	require.Equal(t, model.SwapEventData{XToY: true, AmountIn: 100, AmountOut: 90, Fee: 1}, swap)
	require.Equal(t, uint64(1100), last.ReserveX)
	require.Equal(t, uint64(910), last.ReserveY)
	require.Equal(t, uint64(now.Unix()), last.Timestamp)
	require.Equal(t, bob.Hex(), last.Actor)
}

func TestSinkFailureDoesNotUndoCommit(t *testing.T) {
	f := newFixture(t, 30)
	f.sink.err = errors.New("disk full")

	res := f.deposit(t, alice, 1000, 1000, 1000)
	require.Equal(t, uint64(1000), res.LPMinted)
	require.Equal(t, uint64(1000), f.ledger.Balance(f.pool.LPMint, alice))
}

func TestQuoteSwapMatchesExecution(t *testing.T) {
	f := newFixture(t, 30)
	f.deposit(t, alice, 1000, 1000, 1000)

	quote, err := f.engine.QuoteSwap(context.Background(), f.pool.Address, true, 100)
	require.NoError(t, err)
	res, err := f.engine.Swap(context.Background(), SwapRequest{
		Pool: f.pool.Address, Trader: bob, XToY: true, AmountIn: 100, Expiration: deadline,
	})
	require.NoError(t, err)
	require.Equal(t, quote.AmountOut, res.AmountOut)
	require.Equal(t, quote.Fee, res.Fee)
}

func TestClockFailureRejectsOperation(t *testing.T) {
	broken := ClockFunc(func(context.Context) (time.Time, error) { return time.Time{}, errors.New("rpc down") })
	f := newFixture(t, 30, WithClock(broken))

	_, err := f.engine.Deposit(context.Background(), DepositRequest{
		Pool: f.pool.Address, Depositor: alice, LPAmount: 10, MaxX: 10, MaxY: 10, Expiration: deadline,
	})
	require.Error(t, err)
	require.Equal(t, model.CategoryUnknown, model.CategoryOf(err))
	require.Zero(t, f.ledger.Supply(f.pool.LPMint))
}

func TestMetricsRecordOutcomes(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	f := newFixture(t, 30, WithMetrics(metrics))
	f.deposit(t, alice, 1000, 1000, 1000)

	_, err := f.engine.Swap(context.Background(), SwapRequest{
		Pool: f.pool.Address, Trader: bob, XToY: true, AmountIn: 100, MinOut: 91, Expiration: deadline,
	})
	require.Error(t, err)
	_, err = f.engine.Swap(context.Background(), SwapRequest{
		Pool: f.pool.Address, Trader: bob, XToY: true, AmountIn: 100, Expiration: deadline,
	})
	require.NoError(t, err)

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.OperationsTotal.WithLabelValues(opSwap, "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.OperationsTotal.WithLabelValues(opSwap, string(model.CategorySlippage))))
	require.Equal(t, 100.0, testutil.ToFloat64(metrics.SwapVolume.WithLabelValues(f.pool.Address.Hex(), assetX.Hex())))
	require.Equal(t, 910.0, testutil.ToFloat64(metrics.PoolReserves.WithLabelValues(f.pool.Address.Hex(), assetY.Hex())))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.PoolsTotal))
}

func TestExportRestore(t *testing.T) {
	f := newFixture(t, 30)
	f.deposit(t, alice, 1000, 1000, 1000)
	_, err := f.engine.SetLocked(context.Background(), f.pool.Address, admin, true)
	require.NoError(t, err)

	restored := New(f.ledger, WithClock(FixedClock(now)))
	require.NoError(t, restored.Restore(f.engine.Export()))

	cfg, err := restored.Pool(f.pool.Address)
	require.NoError(t, err)
	require.True(t, cfg.Locked)
	state, err := restored.Reserves(f.pool.Address)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), state.LPSupply)

	require.ErrorIs(t, restored.Restore(f.engine.Export()), model.ErrAlreadyExists)

	tampered := f.engine.Export()
	tampered[0].Seed++
	require.ErrorIs(t, New(f.ledger).Restore(tampered), model.ErrInvariantViolation)
}

func TestConcurrentPoolsShareTraderSafely(t *testing.T) {
	l := ledger.New()
	e := New(l, WithClock(FixedClock(now)))
	ctx := context.Background()

	require.NoError(t, l.Fund(assetX, alice, 1_000_000))
	require.NoError(t, l.Fund(assetY, alice, 1_000_000))
	require.NoError(t, l.Fund(assetZ, alice, 1_000_000))
	require.NoError(t, l.Fund(assetX, bob, 5_000))

	var pools []model.PoolConfig
	for _, other := range []common.Address{assetY, assetZ} {
		cfg, err := e.Initialize(ctx, InitializeRequest{AssetX: assetX, AssetY: other, FeeBps: 30})
		require.NoError(t, err)
		_, err = e.Deposit(ctx, DepositRequest{Pool: cfg.Address, Depositor: alice, LPAmount: 100_000, MaxX: 100_000, MaxY: 100_000, Expiration: deadline})
		require.NoError(t, err)
		pools = append(pools, cfg)
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg := pools[i%len(pools)]
			_, err := e.Swap(ctx, SwapRequest{Pool: cfg.Address, Trader: bob, XToY: true, AmountIn: 200, Expiration: deadline})
			if err != nil && !errors.Is(err, model.ErrInsufficientFunds) && !errors.Is(err, model.ErrConflict) {
				t.Errorf("unexpected swap error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	spent := 5_000 - l.Balance(assetX, bob)
	require.Zero(t, spent%200)
	var deposited uint64
	for _, cfg := range pools {
		state, err := e.Reserves(cfg.Address)
		require.NoError(t, err)
		deposited += state.ReserveX - 100_000
	}
	require.Equal(t, spent, deposited)

	_, err := ledger.Restore(l.Snapshot())
	require.NoError(t, err, "supplies must still equal balance sums")
}

func TestUnownedVaultBalanceGoesToFirstDepositor(t *testing.T) {
	f := newFixture(t, 30)
	require.NoError(t, f.ledger.Fund(assetX, f.pool.Vault, 1))

	state, err := f.engine.Reserves(f.pool.Address)
	require.NoError(t, err)
	require.Equal(t, model.ReserveState{ReserveX: 1}, state)
	require.True(t, state.Empty())

	_, err = f.engine.Swap(context.Background(), SwapRequest{
		Pool: f.pool.Address, Trader: bob, XToY: false, AmountIn: 100, Expiration: deadline,
	})
	require.ErrorIs(t, err, model.ErrPoolEmpty)
	_, err = f.engine.QuoteSwap(context.Background(), f.pool.Address, true, 100)
	require.ErrorIs(t, err, model.ErrPoolEmpty)

	res := f.deposit(t, alice, 1000, 500, 500)
	require.Equal(t, uint64(500), res.AmountX)
	require.Equal(t, uint64(500), res.AmountY)
	require.Equal(t, model.ReserveState{ReserveX: 501, ReserveY: 500, LPSupply: 1000}, res.Reserves)

	out, err := f.engine.Withdraw(context.Background(), WithdrawRequest{
		Pool: f.pool.Address, Withdrawer: alice, LPAmount: 1000, Expiration: deadline,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(501), out.AmountX)
	require.Equal(t, uint64(10_001), f.ledger.Balance(assetX, alice))
}

func TestDrainedPoolAcceptsDonationAndReseed(t *testing.T) {
	f := newFixture(t, 30)
	f.deposit(t, alice, 1000, 500, 500)
	_, err := f.engine.Withdraw(context.Background(), WithdrawRequest{
		Pool: f.pool.Address, Withdrawer: alice, LPAmount: 1000, Expiration: deadline,
	})
	require.NoError(t, err)

	require.NoError(t, f.ledger.Fund(assetY, f.pool.Vault, 1))
	state, err := f.engine.Reserves(f.pool.Address)
	require.NoError(t, err)
	require.Equal(t, model.ReserveState{ReserveY: 1}, state)

	res := f.deposit(t, bob, 100, 200, 300)
	require.Equal(t, model.ReserveState{ReserveX: 200, ReserveY: 301, LPSupply: 100}, res.Reserves)

	_, err = f.engine.Swap(context.Background(), SwapRequest{
		Pool: f.pool.Address, Trader: alice, XToY: true, AmountIn: 50, Expiration: deadline,
	})
	require.NoError(t, err)
}

func TestDonationToSeededPoolAccruesToHolders(t *testing.T) {
	f := newFixture(t, 30)
	f.deposit(t, alice, 1000, 1000, 1000)
	require.NoError(t, f.ledger.Fund(assetX, f.pool.Vault, 10))

	// 100 LP needs ceil(1010*100/1000) X and that contribution must be worth the 100 LP.
	res := f.deposit(t, bob, 100, 101, 100)
	require.Equal(t, uint64(101), res.AmountX)
	require.Equal(t, uint64(100), res.AmountY)
	worth, err := curve.LiquidityForAmounts(1010, 1000, 1000, res.AmountX, res.AmountY)
	require.NoError(t, err)
	require.GreaterOrEqual(t, worth, res.LPMinted)
}
