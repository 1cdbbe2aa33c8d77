package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth metrics

	AuthEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "diary",
		Name:      "auth_events_total",
		Help:      "Register and login attempts, by outcome.",
	}, []string{"event", "outcome"})

	// Bulk transfer metrics

	ImportRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "diary",
		Name:      "import_rows_total",
		Help:      "CSV rows processed by imports, by result.",
	}, []string{"result"})

	ImportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "diary",
		Name:      "import_duration_seconds",
		Help:      "Time taken to import one CSV file.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})

	ExportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "diary",
		Name:      "exports_total",
		Help:      "Number of CSV exports served.",
	})

	ExportedRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "diary",
		Name:      "exported_rows_total",
		Help:      "Diaries written to CSV exports.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "diary",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "diary",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		AuthEventsTotal,
		ImportRowsTotal,
		ImportDuration,
		ExportsTotal,
		ExportedRowsTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux}
}
