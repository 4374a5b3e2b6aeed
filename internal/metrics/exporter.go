package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"listing_jobs/internal/domain"
)

const (
	MetricsNamespace = "listing_jobs"
)

// Exporter mirrors ledger appends into Prometheus collectors. A nil *Exporter
// is valid and records nothing.
type Exporter struct {
	ScrapesTotal       *prometheus.CounterVec
	ScrapeDuration     *prometheus.HistogramVec
	CyclesTotal        *prometheus.CounterVec
	CycleDuration      prometheus.Histogram
	CycleSources       prometheus.Gauge
	CleanupsTotal      *prometheus.CounterVec
	CleanupDeleted     prometheus.Counter
	HealthStatus       *prometheus.GaugeVec
	HealthRecordCount  prometheus.Gauge
	HealthOldestRecord prometheus.Gauge
}

// NewExporter creates and registers the collectors on reg, or on the default
// registerer when reg is nil.
func NewExporter(reg prometheus.Registerer) *Exporter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Exporter{
		ScrapesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "scrape",
			Name:      "attempts_total",
			Help:      "Total number of source scrapes by outcome",
		}, []string{"source", "status"}),
		ScrapeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Subsystem: "scrape",
			Name:      "duration_seconds",
			Help:      "End-to-end duration of a source scrape",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.4min
		}, []string{"source"}),
		CyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "cycle",
			Name:      "total",
			Help:      "Total number of scrape cycles by outcome",
		}, []string{"status"}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Subsystem: "cycle",
			Name:      "duration_seconds",
			Help:      "Duration of a scrape cycle across all enabled sources",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
		}),
		CycleSources: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Subsystem: "cycle",
			Name:      "sources",
			Help:      "Number of enabled sources attempted in the last cycle",
		}),
		CleanupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "cleanup",
			Name:      "total",
			Help:      "Total number of destructive cleanups by outcome",
		}, []string{"status"}),
		CleanupDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "cleanup",
			Name:      "deleted_records_total",
			Help:      "Total number of expired records deleted",
		}),
		HealthStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Subsystem: "health",
			Name:      "status",
			Help:      "1 for the current scraper health status, 0 otherwise",
		}, []string{"status"}),
		HealthRecordCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Subsystem: "health",
			Name:      "external_records",
			Help:      "Number of externally scraped records in storage",
		}),
		HealthOldestRecord: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Subsystem: "health",
			Name:      "oldest_record_age_seconds",
			Help:      "Age of the oldest externally scraped record",
		}),
	}
}

func (e *Exporter) observeScrape(o domain.ScrapeOutcome) {
	if e == nil {
		return
	}
	e.ScrapesTotal.WithLabelValues(o.Source, statusLabel(o.Success)).Inc()
	e.ScrapeDuration.WithLabelValues(o.Source).Observe(o.Duration.Seconds())
}

func (e *Exporter) observeCycle(o domain.CycleOutcome) {
	if e == nil {
		return
	}
	e.CyclesTotal.WithLabelValues(statusLabel(o.Success)).Inc()
	e.CycleDuration.Observe(o.Duration.Seconds())
	e.CycleSources.Set(float64(o.SourceCount))
}

func (e *Exporter) observeCleanup(o domain.CleanupOutcome) {
	if e == nil {
		return
	}
	e.CleanupsTotal.WithLabelValues(statusLabel(o.Success)).Inc()
	if o.Success {
		e.CleanupDeleted.Add(float64(o.Deleted))
	}
}

func (e *Exporter) observeHealth(s domain.HealthSnapshot) {
	if e == nil {
		return
	}
	for _, status := range []domain.HealthStatus{domain.HealthHealthy, domain.HealthDegraded, domain.HealthUnhealthy} {
		v := 0.0
		if s.Status == status {
			v = 1
		}
		e.HealthStatus.WithLabelValues(string(status)).Set(v)
	}
	e.HealthRecordCount.Set(float64(s.ExternalRecordCount))
	e.HealthOldestRecord.Set(s.OldestRecordAge.Seconds())
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
