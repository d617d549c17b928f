package reports

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Build outcomes.
const (
	outcomeSuccess     = "success"
	outcomeCached      = "cached"
	outcomePreview     = "preview"
	outcomeUnavailable = "unavailable"
	outcomeRejected    = "rejected"
)

// Metrics exposes Prometheus collectors for report assembly.
type Metrics struct {
	builds   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	cache    *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the report metrics against registerer, or the default
// Prometheus registerer when nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	builds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estatedesk_report_builds_total",
		Help: "Report requests partitioned by report type and outcome.",
	}, []string{"report", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "estatedesk_report_build_duration_seconds",
		Help:    "Time spent assembling reports, cache hits included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estatedesk_report_cache_total",
		Help: "Report cache lookups partitioned by result.",
	}, []string{"result"})
	registerer.MustRegister(builds, duration, cache)
	return &Metrics{builds: builds, duration: duration, cache: cache}
}

func (m *Metrics) observe(report Type, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues(string(report), outcome).Inc()
	m.duration.WithLabelValues(string(report)).Observe(time.Since(start).Seconds())
}

func (m *Metrics) cacheResult(result string) {
	if m == nil {
		return
	}
	m.cache.WithLabelValues(result).Inc()
}
