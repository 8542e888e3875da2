// Package metrics holds the Prometheus collectors of the gateway
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ingest_gateway"

var RequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Ingest calls by transport and response status code.",
	},
	[]string{"transport", "status_code"},
)

var RecordsAcceptedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_accepted_total",
		Help:      "Records written to the sink, by organization.",
	},
	[]string{"org_id"},
)

var RecordsRejectedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_rejected_total",
		Help:      "Records dropped individually, by organization and stage.",
	},
	[]string{"org_id", "stage"},
)

var BatchesRejectedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_rejected_total",
		Help:      "Whole batches refused, by reason.",
	},
	[]string{"kind"},
)

var StreamsCreatedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "streams_created_total",
		Help:      "Streams created implicitly on first write.",
	},
)

var RequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Ingest call latency by transport.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 16),
	},
	[]string{"transport"},
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RecordsAcceptedTotal)
	prometheus.MustRegister(RecordsRejectedTotal)
	prometheus.MustRegister(BatchesRejectedTotal)
	prometheus.MustRegister(StreamsCreatedTotal)
	prometheus.MustRegister(RequestDuration)
}

// ObserveRequest records one finished call
func ObserveRequest(transport string, statusCode int32, started time.Time) {
	RequestsTotal.WithLabelValues(transport, strconv.Itoa(int(statusCode))).Inc()
	RequestDuration.WithLabelValues(transport).Observe(time.Since(started).Seconds())
}
