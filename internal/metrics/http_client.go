package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "rest_client",
		Name:      "operations_total",
		Help:      "Count of REST transaction lookups.",
	}, []string{"operation", "coin", "network", "status"})
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "rest_client",
		Name:      "operation_duration_seconds",
		Help:      "Duration of REST transaction lookups.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "coin", "network", "status"})
)

// HTTPClient tracks metrics for REST calls to block explorers and node REST interfaces.
type HTTPClient struct {
	coin    model.Coin
	network model.Network
}

func NewHTTPClient(coin model.Coin, network model.Network) *HTTPClient {
	coin, network = labels(coin, network)
	return &HTTPClient{coin: coin, network: network}
}

func (m HTTPClient) Observe(operation string, err error, started time.Time) {
	status := statusOf(err)
	httpRequestsTotal.WithLabelValues(operation, string(m.coin), string(m.network), status).Inc()
	httpRequestDuration.WithLabelValues(operation, string(m.coin), string(m.network), status).Observe(time.Since(started).Seconds())
}
