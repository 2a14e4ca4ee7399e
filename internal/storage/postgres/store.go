package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityPool/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS pools (
	pool_address TEXT PRIMARY KEY,
	seed NUMERIC(20,0) NOT NULL,
	authority TEXT,
	asset_x TEXT NOT NULL,
	asset_y TEXT NOT NULL,
	fee_bps INTEGER NOT NULL,
	locked BOOLEAN NOT NULL,
	lp_mint TEXT NOT NULL,
	vault TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS pool_events (
	id BIGSERIAL PRIMARY KEY,
	pool_address TEXT NOT NULL,
	kind TEXT NOT NULL,
	actor TEXT NOT NULL,
	event_ts NUMERIC(20,0) NOT NULL,
	amount_x NUMERIC(20,0) NOT NULL,
	amount_y NUMERIC(20,0) NOT NULL,
	lp_amount NUMERIC(20,0) NOT NULL,
	x_to_y BOOLEAN NOT NULL,
	amount_in NUMERIC(20,0) NOT NULL,
	amount_out NUMERIC(20,0) NOT NULL,
	fee NUMERIC(20,0) NOT NULL,
	reserve_x NUMERIC(20,0) NOT NULL,
	reserve_y NUMERIC(20,0) NOT NULL,
	lp_supply NUMERIC(20,0) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS pool_events_pool_ts ON pool_events (pool_address, event_ts);
CREATE TABLE IF NOT EXISTS pool_window_metrics (
	pool_address TEXT NOT NULL,
	window_size_seconds BIGINT NOT NULL,
	window_start_ts TIMESTAMPTZ NOT NULL,
	window_end_ts TIMESTAMPTZ NOT NULL,
	swap_count BIGINT NOT NULL,
	deposit_count BIGINT NOT NULL,
	withdraw_count BIGINT NOT NULL,
	volume_x NUMERIC NOT NULL,
	volume_y NUMERIC NOT NULL,
	fee_x NUMERIC NOT NULL,
	fee_y NUMERIC NOT NULL,
	reserve_x NUMERIC(20,0) NOT NULL,
	reserve_y NUMERIC(20,0) NOT NULL,
	lp_supply NUMERIC(20,0) NOT NULL,
	fee_rate_x NUMERIC,
	fee_rate_y NUMERIC,
	apr NUMERIC,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (pool_address, window_size_seconds, window_start_ts)
);
CREATE TABLE IF NOT EXISTS checkpoint_state (
	name TEXT PRIMARY KEY,
	last_processed_ts BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

// Store provides Postgres persistence for pools, events and metrics.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertPools inserts or updates pool records.
func (s *Store) UpsertPools(ctx context.Context, pools []model.PoolConfig) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range pools {
		var authority *string
		if pool.Authority != nil {
			hex := pool.Authority.Hex()
			authority = &hex
		}
		batch.Queue(`
			INSERT INTO pools (
				pool_address, seed, authority, asset_x, asset_y, fee_bps, locked, lp_mint, vault, created_at, updated_at
			) VALUES ($1, $2::numeric, $3, $4, $5, $6, $7, $8, $9, now(), now())
			ON CONFLICT (pool_address)
			DO UPDATE SET
				locked = EXCLUDED.locked,
				updated_at = now()
		`,
			pool.Address.Hex(),
			u64(pool.Seed),
			authority,
			pool.AssetX.Hex(),
			pool.AssetY.Hex(),
			int32(pool.FeeBps),
			pool.Locked,
			pool.LPMint.Hex(),
			pool.Vault.Hex(),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pools {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutEvents appends pool events to the journal table.
func (s *Store) PutEvents(ctx context.Context, events []model.PoolEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(`
			INSERT INTO pool_events (
				pool_address, kind, actor, event_ts, amount_x, amount_y, lp_amount,
				x_to_y, amount_in, amount_out, fee, reserve_x, reserve_y, lp_supply, created_at
			) VALUES ($1,$2,$3,$4::numeric,$5::numeric,$6::numeric,$7::numeric,$8,$9::numeric,$10::numeric,$11::numeric,$12::numeric,$13::numeric,$14::numeric,now())
		`,
			ev.Pool,
			string(ev.Kind),
			ev.Actor,
			u64(ev.Timestamp),
			u64(ev.AmountX),
			u64(ev.AmountY),
			u64(ev.LPAmount),
			ev.XToY,
			u64(ev.AmountIn),
			u64(ev.AmountOut),
			u64(ev.Fee),
			u64(ev.ReserveX),
			u64(ev.ReserveY),
			u64(ev.LPSupply),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertWindowMetrics inserts or updates window metrics.
func (s *Store) UpsertWindowMetrics(ctx context.Context, metrics []model.PoolWindowMetrics) error {
	if len(metrics) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range metrics {
		batch.Queue(`
			INSERT INTO pool_window_metrics (
				pool_address, window_size_seconds, window_start_ts, window_end_ts,
				swap_count, deposit_count, withdraw_count, volume_x, volume_y, fee_x, fee_y,
				reserve_x, reserve_y, lp_supply, fee_rate_x, fee_rate_y, apr, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8::numeric,$9::numeric,$10::numeric,$11::numeric,
				$12::numeric,$13::numeric,$14::numeric,$15::numeric,$16::numeric,$17::numeric,now(),now())
			ON CONFLICT (pool_address, window_size_seconds, window_start_ts)
			DO UPDATE SET
				window_end_ts = EXCLUDED.window_end_ts,
				swap_count = EXCLUDED.swap_count,
				deposit_count = EXCLUDED.deposit_count,
				withdraw_count = EXCLUDED.withdraw_count,
				volume_x = EXCLUDED.volume_x,
				volume_y = EXCLUDED.volume_y,
				fee_x = EXCLUDED.fee_x,
				fee_y = EXCLUDED.fee_y,
				reserve_x = EXCLUDED.reserve_x,
				reserve_y = EXCLUDED.reserve_y,
				lp_supply = EXCLUDED.lp_supply,
				fee_rate_x = EXCLUDED.fee_rate_x,
				fee_rate_y = EXCLUDED.fee_rate_y,
				apr = EXCLUDED.apr,
				updated_at = now()
		`,
			m.PoolAddress,
			m.WindowSizeSecs,
			m.WindowStart,
			m.WindowEnd,
			int64(m.SwapCount),
			int64(m.DepositCount),
			int64(m.WithdrawCount),
			m.VolumeX,
			m.VolumeY,
			m.FeeX,
			m.FeeY,
			u64(m.ReserveX),
			u64(m.ReserveY),
			u64(m.LPSupply),
			m.FeeRateX,
			m.FeeRateY,
			m.APR,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range metrics {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns last_processed_ts for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var ts int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_ts FROM checkpoint_state WHERE name=$1`, name)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if ts < 0 {
		return 0, false, fmt.Errorf("negative state for %s", name)
	}
	return uint64(ts), true, nil
}

// SaveState upserts last_processed_ts for a name.
func (s *Store) SaveState(ctx context.Context, name string, ts uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO checkpoint_state (name, last_processed_ts, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_ts = EXCLUDED.last_processed_ts, updated_at = now()
	`, name, int64(ts))
	return err
}

func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}
