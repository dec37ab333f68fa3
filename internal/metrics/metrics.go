// Package metrics exposes pool operation counters to Prometheus.
package metrics

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/fleshka4/ammpool/internal/apperrors"
)

const namespace = "ammpool"

// Metrics holds the collectors of the service.
type Metrics struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	reserves   *prometheus.GaugeVec
	supply     prometheus.Gauge
}

func New(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Number of pool operations by name and result kind",
		}, []string{"op", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of pool operations",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"op"}),
		reserves: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reserve",
			Help:      "Tracked reserve per asset, as a float approximation",
		}, []string{"asset"}),
		supply: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "claim_supply",
			Help:      "Outstanding claim tokens, as a float approximation",
		}),
	}

	err := multierr.Combine(
		registerer.Register(m.operations),
		registerer.Register(m.latency),
		registerer.Register(m.reserves),
		registerer.Register(m.supply),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Observe records one call of op that started at start and ended with err.
func (m *Metrics) Observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = apperrors.Kind(err)
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// SetReserves publishes the current reserves and claim supply.
func (m *Metrics) SetReserves(reserves map[common.Address]*big.Int, supply *big.Int) {
	for id, v := range reserves {
		f, _ := new(big.Float).SetInt(v).Float64()
		m.reserves.WithLabelValues(id.Hex()).Set(f)
	}
	if supply != nil {
		f, _ := new(big.Float).SetInt(supply).Float64()
		m.supply.Set(f)
	}
}
