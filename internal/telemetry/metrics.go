package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	fetchTotal     *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	favoriteWrites *prometheus.CounterVec
}

// NewMetrics registers the tourism collectors on registerer, or on the
// default registerer when nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		fetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tourism_remote_fetch_total",
				Help: "Total number of destination list fetches by outcome",
			},
			[]string{"outcome"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tourism_remote_fetch_duration_seconds",
				Help:    "Duration of destination list fetches in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"outcome"},
		),
		favoriteWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tourism_favorite_writes_total",
				Help: "Total number of favourite flag writes by status",
			},
			[]string{"status"},
		),
	}
}

func (m *Metrics) ObserveFetch(outcome string, d time.Duration) {
	m.fetchTotal.WithLabelValues(outcome).Inc()
	m.fetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) ObserveFavoriteWrite(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.favoriteWrites.WithLabelValues(status).Inc()
}
