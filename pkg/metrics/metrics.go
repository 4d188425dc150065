package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ScrapesTotal        *prometheus.CounterVec
	ScrapeDuration      prometheus.Histogram
	PlacesUpserted      prometheus.Counter
	PersistQueueDepth   prometheus.Gauge

	initOnce sync.Once
)

// Init registers all collectors with the default registry. Safe to call more
// than once; registration happens a single time.
func Init() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		)

		ScrapesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrapes_total",
				Help: "Total number of scrape runs.",
			},
			[]string{"status", "error_type"}, // status: success, failure
		)

		ScrapeDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scrape_duration_seconds",
				Help:    "Duration of complete scrape runs.",
				Buckets: []float64{5, 15, 30, 60, 120, 180, 300},
			},
		)

		PlacesUpserted = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "places_upserted_total",
				Help: "Total number of place rows attempted (inserted + updated).",
			},
		)

		PersistQueueDepth = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "persist_queue_depth",
				Help: "Current number of persistence jobs waiting for a worker.",
			},
		)
	})
}
