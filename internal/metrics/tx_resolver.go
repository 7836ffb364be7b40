package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	txResolverLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "tx_resolver",
		Name:      "lookups_total",
		Help:      "Count of previous-transaction lookups by source (cache, store, fetch).",
	}, []string{"source", "coin", "network", "status"})

	txResolverLookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "tx_resolver",
		Name:      "lookup_duration_seconds",
		Help:      "Duration of previous-transaction lookups by source.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source", "coin", "network", "status"})
)

// TxResolver tracks cache effectiveness and fetch latency of the transaction resolver.
type TxResolver struct {
	coin    model.Coin
	network model.Network
}

// NewTxResolver constructs a metrics collector for the transaction resolver.
func NewTxResolver(coin model.Coin, network model.Network) *TxResolver {
	coin, network = labels(coin, network)
	return &TxResolver{coin: coin, network: network}
}

// ObserveResolve records one lookup answered by source.
func (m TxResolver) ObserveResolve(source string, err error, started time.Time) {
	status := statusOf(err)
	txResolverLookupsTotal.WithLabelValues(source, string(m.coin), string(m.network), status).Inc()
	txResolverLookupDuration.WithLabelValues(source, string(m.coin), string(m.network), status).Observe(time.Since(started).Seconds())
}
