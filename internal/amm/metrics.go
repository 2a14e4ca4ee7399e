package amm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"liquidityPool/internal/model"
)

// Metrics holds the Prometheus collectors updated by the engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	OperationsTotal  *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec
	SwapVolume       *prometheus.CounterVec
	SwapFees         *prometheus.CounterVec
	LiquidityAdded   *prometheus.CounterVec
	LiquidityRemoved *prometheus.CounterVec
	PoolReserves     *prometheus.GaugeVec
	LPTokenSupply    *prometheus.GaugeVec
	PoolsTotal       prometheus.Gauge
}

// NewMetrics registers the engine collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "amm",
				Subsystem: "pool",
				Name:      "operations_total",
				Help:      "Pool operations by outcome category",
			},
			[]string{"operation", "status"},
		),
		OperationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "amm",
				Subsystem: "pool",
				Name:      "operation_latency_seconds",
				Help:      "Pool operation latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		SwapVolume: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "amm",
				Subsystem: "pool",
				Name:      "swap_volume_total",
				Help:      "Swap input volume in base units",
			},
			[]string{"pool", "asset"},
		),
		SwapFees: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "amm",
				Subsystem: "pool",
				Name:      "swap_fees_total",
				Help:      "Swap fees retained by the pool in base units",
			},
			[]string{"pool", "asset"},
		),
		LiquidityAdded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "amm",
				Subsystem: "pool",
				Name:      "liquidity_added_total",
				Help:      "Reserves deposited in base units",
			},
			[]string{"pool", "asset"},
		),
		LiquidityRemoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "amm",
				Subsystem: "pool",
				Name:      "liquidity_removed_total",
				Help:      "Reserves withdrawn in base units",
			},
			[]string{"pool", "asset"},
		),
		PoolReserves: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "amm",
				Subsystem: "pool",
				Name:      "reserves",
				Help:      "Current pool reserves",
			},
			[]string{"pool", "asset"},
		),
		LPTokenSupply: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "amm",
				Subsystem: "pool",
				Name:      "lp_token_supply",
				Help:      "Outstanding LP tokens per pool",
			},
			[]string{"pool"},
		),
		PoolsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "amm",
				Subsystem: "pool",
				Name:      "pools_total",
				Help:      "Number of registered pools",
			},
		),
	}
}

func (m *Metrics) observeOperation(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = string(model.CategoryOf(err))
	}
	m.OperationsTotal.WithLabelValues(op, status).Inc()
	m.OperationLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeReserves(cfg model.PoolConfig, state model.ReserveState) {
	if m == nil {
		return
	}
	pool := cfg.Address.Hex()
	m.PoolReserves.WithLabelValues(pool, cfg.AssetX.Hex()).Set(float64(state.ReserveX))
	m.PoolReserves.WithLabelValues(pool, cfg.AssetY.Hex()).Set(float64(state.ReserveY))
	m.LPTokenSupply.WithLabelValues(pool).Set(float64(state.LPSupply))
}

func (m *Metrics) observeSwap(cfg model.PoolConfig, xToY bool, amountIn, fee uint64) {
	if m == nil {
		return
	}
	assetIn, _ := cfg.Assets(xToY)
	pool := cfg.Address.Hex()
	m.SwapVolume.WithLabelValues(pool, assetIn.Hex()).Add(float64(amountIn))
	m.SwapFees.WithLabelValues(pool, assetIn.Hex()).Add(float64(fee))
}

func (m *Metrics) observeLiquidity(cfg model.PoolConfig, added bool, amountX, amountY uint64) {
	if m == nil {
		return
	}
	vec := m.LiquidityRemoved
	if added {
		vec = m.LiquidityAdded
	}
	pool := cfg.Address.Hex()
	vec.WithLabelValues(pool, cfg.AssetX.Hex()).Add(float64(amountX))
	vec.WithLabelValues(pool, cfg.AssetY.Hex()).Add(float64(amountY))
}

func (m *Metrics) setPools(n int) {
	if m == nil {
		return
	}
	m.PoolsTotal.Set(float64(n))
}
