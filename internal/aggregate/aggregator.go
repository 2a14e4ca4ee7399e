package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"liquidityPool/internal/model"
	"liquidityPool/internal/storage"
)

// Config controls aggregation behavior.
type Config struct {
	WindowSeconds uint64
	BatchSize     int
	RecomputeFrom uint64
	StateStore    StateStore
}

// Aggregator aggregates journal events into pool window metrics.
type Aggregator struct {
	cfg          Config
	sink         storage.MetricsSink
	logger       *zap.Logger
	accumulators map[string]*Accumulator
}

func NewAggregator(cfg Config, sink storage.MetricsSink, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Aggregator{
		cfg:          cfg,
		sink:         sink,
		logger:       logger,
		accumulators: make(map[string]*Accumulator),
	}
}

// Run executes aggregation over a pool event journal.
func (a *Aggregator) Run(ctx context.Context, inputPath string) error {
	if a.sink == nil {
		return fmt.Errorf("metrics sink is nil")
	}
	if a.cfg.WindowSeconds == 0 {
		return fmt.Errorf("window seconds must be > 0")
	}
	if a.cfg.BatchSize <= 0 {
		a.cfg.BatchSize = 1000
	}

	startTs, err := a.loadStartTimestamp(ctx)
	if err != nil {
		return err
	}

	batch := make([]model.PoolWindowMetrics, 0, a.cfg.BatchSize)
	maxTs := startTs
	var total, windows, skipped, failed int

	err = storage.ScanJSONL(ctx, inputPath, func(lineNo int, line []byte) error {
		total++

		var event model.PoolEvent
		if err := json.Unmarshal(line, &event); err != nil {
			failed++
			a.logger.Warn("decode pool event", zap.Error(err), zap.Int("line", lineNo))
			return nil
		}

		if event.Timestamp <= startTs {
			skipped++
			return nil
		}

		windowStart := windowStart(event.Timestamp, a.cfg.WindowSeconds)
		windowEnd := windowStart + a.cfg.WindowSeconds

		accKey := poolKey(event.Pool)
		acc := a.accumulators[accKey]
		if acc == nil {
			acc = NewAccumulator(event, windowStart, windowEnd)
			a.accumulators[accKey] = acc
		} else if acc.WindowStart != windowStart {
			if windowStart < acc.WindowStart {
				failed++
				a.logger.Warn("out of order event", zap.String("pool", event.Pool), zap.Uint64("ts", event.Timestamp), zap.Int("line", lineNo))
				return nil
			}
			batch = append(batch, a.buildMetrics(acc))
			windows++
			acc = NewAccumulator(event, windowStart, windowEnd)
			a.accumulators[accKey] = acc
		}

		if err := acc.AddEvent(event); err != nil {
			failed++
			a.logger.Warn("aggregate event", zap.Error(err), zap.String("pool", event.Pool), zap.String("kind", string(event.Kind)))
			return nil
		}

		if event.Timestamp > maxTs {
			maxTs = event.Timestamp
		}

		if len(batch) >= a.cfg.BatchSize {
			if err := a.sink.UpsertWindowMetrics(ctx, batch); err != nil {
				return fmt.Errorf("write window metrics: %w", err)
			}
			batch = batch[:0]

			if err := a.saveState(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	open := make([]*Accumulator, 0, len(a.accumulators))
	for _, acc := range a.accumulators {
		open = append(open, acc)
	}
	sort.Slice(open, func(i, j int) bool { return poolKey(open[i].PoolAddress) < poolKey(open[j].PoolAddress) })
	for _, acc := range open {
		batch = append(batch, a.buildMetrics(acc))
		windows++
	}
	a.accumulators = make(map[string]*Accumulator)

	if len(batch) > 0 {
		if err := a.sink.UpsertWindowMetrics(ctx, batch); err != nil {
			return fmt.Errorf("write window metrics: %w", err)
		}
	}

	a.cfg.RecomputeFrom = maxTs
	if err := a.saveState(ctx); err != nil {
		return err
	}

	a.logger.Info("aggregate complete",
		zap.Int("total", total),
		zap.Int("windows", windows),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)

	return nil
}

func (a *Aggregator) loadStartTimestamp(ctx context.Context) (uint64, error) {
	if a.cfg.RecomputeFrom > 0 {
		return a.cfg.RecomputeFrom - 1, nil
	}
	if a.cfg.StateStore == nil {
		return 0, nil
	}
	last, ok, err := a.cfg.StateStore.Load(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return last, nil
}

// saveState records the newest timestamp below every still-open window, so
// a resumed run recomputes open windows from their first event.
func (a *Aggregator) saveState(ctx context.Context) error {
	if a.cfg.StateStore == nil {
		return nil
	}

	if len(a.accumulators) == 0 {
		return a.cfg.StateStore.Save(ctx, a.cfg.RecomputeFrom)
	}

	safeTs := minOpenWindowStart(a.accumulators)
	if safeTs > 0 {
		safeTs = safeTs - 1
	}
	if safeTs == 0 {
		safeTs = a.cfg.RecomputeFrom
	}
	return a.cfg.StateStore.Save(ctx, safeTs)
}

func (a *Aggregator) buildMetrics(acc *Accumulator) model.PoolWindowMetrics {
	rateX := computeFeeRate(acc.FeeX, acc.ReserveX)
	rateY := computeFeeRate(acc.FeeY, acc.ReserveY)

	return model.PoolWindowMetrics{
		PoolAddress:    acc.PoolAddress,
		WindowSizeSecs: int64(a.cfg.WindowSeconds),
		WindowStart:    time.Unix(int64(acc.WindowStart), 0).UTC(),
		WindowEnd:      time.Unix(int64(acc.WindowEnd), 0).UTC(),
		SwapCount:      acc.SwapCount,
		DepositCount:   acc.DepositCount,
		WithdrawCount:  acc.WithdrawCount,
		VolumeX:        formatAmount(acc.VolumeX),
		VolumeY:        formatAmount(acc.VolumeY),
		FeeX:           formatAmount(acc.FeeX),
		FeeY:           formatAmount(acc.FeeY),
		ReserveX:       acc.ReserveX,
		ReserveY:       acc.ReserveY,
		LPSupply:       acc.LPSupply,
		FeeRateX:       formatRate(rateX),
		FeeRateY:       formatRate(rateY),
		APR:            computeAPR(rateX, rateY, a.cfg.WindowSeconds),
	}
}

func windowStart(ts uint64, windowSec uint64) uint64 {
	return ts - (ts % windowSec)
}

func poolKey(address string) string {
	return strings.ToLower(address)
}

func minOpenWindowStart(acc map[string]*Accumulator) uint64 {
	var min uint64
	for _, entry := range acc {
		if entry == nil {
			continue
		}
		if min == 0 || entry.WindowStart < min {
			min = entry.WindowStart
		}
	}
	return min
}
