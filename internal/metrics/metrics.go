// Package metrics provides Prometheus metrics for the crawl pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// MetricsNamespace is the namespace for all harvester metrics.
	MetricsNamespace = "newsharvest"

	// MetricsSubsystem is the subsystem for crawl metrics.
	MetricsSubsystem = "crawl"
)

// Metrics holds all Prometheus metrics for the crawl pipeline.
type Metrics struct {
	PagesFetched     *prometheus.CounterVec
	FetchRetries     *prometheus.CounterVec
	RecordsAccepted  *prometheus.CounterVec
	RecordsRejected  *prometheus.CounterVec
	BatchesPublished *prometheus.CounterVec
	PublishFailures  *prometheus.CounterVec
	SourceRuns       *prometheus.CounterVec
}

// New creates and registers all crawl metrics.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		PagesFetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "pages_fetched_total",
				Help:      "Total number of page fetch attempts",
			},
			[]string{"source"},
		),
		FetchRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "fetch_retries_total",
				Help:      "Total number of page fetch retries",
			},
			[]string{"source"},
		),
		RecordsAccepted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "records_accepted_total",
				Help:      "Total number of records that passed validation and dedup",
			},
			[]string{"source"},
		),
		RecordsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "records_rejected_total",
				Help:      "Total number of records dropped, by reason",
			},
			[]string{"source", "reason"},
		),
		BatchesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "batches_published_total",
				Help:      "Total number of batches published to the event stream",
			},
			[]string{"source"},
		),
		PublishFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "publish_failures_total",
				Help:      "Total number of failed publish calls",
			},
			[]string{"source"},
		),
		SourceRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "source_runs_total",
				Help:      "Total number of completed source runs, by terminal reason",
			},
			[]string{"reason"},
		),
	}
}

// RecordPageFetched records one page fetch attempt.
func (m *Metrics) RecordPageFetched(source string) {
	if m == nil {
		return
	}
	m.PagesFetched.WithLabelValues(source).Inc()
}

// RecordFetchRetry records one page fetch retry.
func (m *Metrics) RecordFetchRetry(source string) {
	if m == nil {
		return
	}
	m.FetchRetries.WithLabelValues(source).Inc()
}

// RecordAccepted records validated, deduplicated records.
func (m *Metrics) RecordAccepted(source string, count int) {
	if m == nil {
		return
	}
	m.RecordsAccepted.WithLabelValues(source).Add(float64(count))
}

// RecordRejected records one dropped record with its reason code.
func (m *Metrics) RecordRejected(source, reason string) {
	if m == nil {
		return
	}
	m.RecordsRejected.WithLabelValues(source, reason).Inc()
}

// RecordBatchPublished records one published batch.
func (m *Metrics) RecordBatchPublished(source string) {
	if m == nil {
		return
	}
	m.BatchesPublished.WithLabelValues(source).Inc()
}

// RecordPublishFailure records one failed publish call.
func (m *Metrics) RecordPublishFailure(source string) {
	if m == nil {
		return
	}
	m.PublishFailures.WithLabelValues(source).Inc()
}

// RecordSourceRun records a completed source run with its terminal
// reason.
func (m *Metrics) RecordSourceRun(reason string) {
	if m == nil {
		return
	}
	m.SourceRuns.WithLabelValues(reason).Inc()
}
