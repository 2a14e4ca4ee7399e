package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityPool/internal/amm"
	"liquidityPool/internal/chain"
	"liquidityPool/internal/config"
	"liquidityPool/internal/ledger"
	"liquidityPool/internal/model"
	"liquidityPool/internal/storage"
	"liquidityPool/internal/storage/postgres"
)

// runtime is the engine wired to its snapshot, journal, mirror and clock.
type runtime struct {
	cfg      config.Config
	logger   *zap.Logger
	ledger   *ledger.Ledger
	engine   *amm.Engine
	clock    amm.Clock
	registry *prometheus.Registry
	snapshot *storage.SnapshotStore
	store    *postgres.Store
	chain    *chain.Client

	replaySeq uint64
}

// withRuntime loads the common config, opens the runtime, runs fn and
// persists the engine when mutate is set.
func withRuntime(cmd *cobra.Command, mutate bool, fn func(ctx context.Context, rt *runtime) error) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	return runWith(cmd, cfg, mutate, fn)
}

func runWith(cmd *cobra.Command, cfg config.Config, mutate bool, fn func(ctx context.Context, rt *runtime) error) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	rt, err := openRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.close()

	runErr := fn(ctx, rt)
	if mutate {
		if err := rt.persist(context.WithoutCancel(ctx)); err != nil {
			if runErr != nil {
				logger.Error("persist after failure", zap.Error(err))
				return runErr
			}
			return err
		}
	}
	if err := rt.writeMetrics(); err != nil {
		logger.Warn("write metrics file", zap.Error(err), zap.String("path", cfg.MetricsFile))
	}
	return runErr
}

func openRuntime(ctx context.Context, cfg config.Config, logger *zap.Logger) (*runtime, error) {
	rt := &runtime{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		snapshot: &storage.SnapshotStore{Path: cfg.StatePath},
		clock:    amm.SystemClock{},
	}

	state, ok, err := rt.snapshot.Load()
	if err != nil {
		return nil, err
	}
	rt.ledger = ledger.New()
	if ok {
		rt.ledger, err = ledger.Restore(state.Ledger)
		if err != nil {
			return nil, fmt.Errorf("restore ledger: %w", err)
		}
		rt.replaySeq = state.ReplaySeq
	}

	var sinks storage.MultiSink
	if cfg.Journal != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Journal))
	}
	if cfg.PGDSN != "" {
		rt.store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := rt.store.EnsureSchema(ctx); err != nil {
			rt.close()
			return nil, err
		}
		sinks = append(sinks, rt.store)
	}

	if cfg.RPCURL != "" {
		rt.chain, err = chain.Dial(ctx, cfg.RPCURL)
		if err != nil {
			rt.close()
			return nil, err
		}
		logger.Info("chain clock enabled", zap.String("chain_id", rt.chain.ChainID().String()))
		rt.clock = chain.NewBlockClock(rt.chain, cfg.MaxRetries, cfg.RetryBackoff, logger)
	}

	rt.engine = amm.New(rt.ledger,
		amm.WithClock(rt.clock),
		amm.WithLogger(logger),
		amm.WithMetrics(amm.NewMetrics(rt.registry)),
		amm.WithEventSink(sinks),
	)
	if ok {
		if err := rt.engine.Restore(state.Pools); err != nil {
			rt.close()
			return nil, fmt.Errorf("restore pools: %w", err)
		}
	}

	logger.Debug("engine loaded",
		zap.String("state", cfg.StatePath),
		zap.Bool("restored", ok),
		zap.Int("pools", len(state.Pools)),
		zap.String("journal", cfg.Journal),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Bool("chain_clock", rt.chain != nil),
	)
	return rt, nil
}

func (rt *runtime) exportState() model.EngineState {
	return model.EngineState{
		Pools:     rt.engine.Export(),
		Ledger:    rt.ledger.Snapshot(),
		ReplaySeq: rt.replaySeq,
	}
}

// persist saves the snapshot and mirrors pool records to Postgres.
func (rt *runtime) persist(ctx context.Context) error {
	if err := rt.snapshot.Save(rt.exportState()); err != nil {
		return err
	}
	if rt.store != nil {
		if err := rt.store.UpsertPools(ctx, rt.engine.Pools()); err != nil {
			return fmt.Errorf("mirror pools: %w", err)
		}
	}
	return nil
}

func (rt *runtime) writeMetrics() error {
	if rt.cfg.MetricsFile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(rt.cfg.MetricsFile, rt.registry)
}

// expiration resolves a user supplied expiration, defaulting to now plus the TTL.
func (rt *runtime) expiration(ctx context.Context, raw string) (int64, error) {
	if raw != "" {
		ts, err := config.ParseTimestamp(raw)
		if err != nil {
			return 0, fmt.Errorf("parse expiration: %w", err)
		}
		return int64(ts), nil
	}
	now, err := rt.clock.Now(ctx)
	if err != nil {
		return 0, fmt.Errorf("read clock: %w", err)
	}
	return now.Add(rt.cfg.DeadlineTTL).Truncate(time.Second).Unix(), nil
}

func (rt *runtime) close() {
	if rt.chain != nil {
		rt.chain.Close()
	}
	if rt.store != nil {
		rt.store.Close()
	}
}
