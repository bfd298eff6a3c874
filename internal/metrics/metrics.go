package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RowsProcessed  *prometheus.CounterVec
	APIErrors      prometheus.Counter
	RequestSeconds *prometheus.HistogramVec
	ActiveBatches  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RowsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pinpoint_rows_processed_total",
			Help: "Total number of processed spreadsheet rows by address quality.",
		}, []string{"quality"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pinpoint_provider_api_errors_total",
			Help: "Total number of errors received from the reverse-geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pinpoint_provider_request_duration_seconds",
			Help:    "Duration of requests to the reverse-geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ActiveBatches: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "pinpoint_active_batches",
			Help: "Current number of batches being processed in the background.",
		}),
	}
}
