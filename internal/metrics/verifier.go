package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	verifierOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "verifier",
		Name:      "operations_total",
		Help:      "Count of fee and script verification operations by result.",
	}, []string{"operation", "coin", "network", "result"})

	verifierOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "verifier",
		Name:      "operation_duration_seconds",
		Help:      "Duration of fee and script verification operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "coin", "network", "result"})
)

// Verifier tracks transaction verification outcomes.
type Verifier struct {
	coin    model.Coin
	network model.Network
}

// NewVerifier constructs a metrics collector for the transaction verifier.
func NewVerifier(coin model.Coin, network model.Network) *Verifier {
	coin, network = labels(coin, network)
	return &Verifier{coin: coin, network: network}
}

// ObserveVerify records an operation as valid, invalid or error.
func (m Verifier) ObserveVerify(operation string, valid bool, err error, started time.Time) {
	result := "invalid"
	switch {
	case err != nil:
		result = "error"
	case valid:
		result = "valid"
	}
	verifierOperationsTotal.WithLabelValues(operation, string(m.coin), string(m.network), result).Inc()
	verifierOperationDuration.WithLabelValues(operation, string(m.coin), string(m.network), result).Observe(time.Since(started).Seconds())
}
