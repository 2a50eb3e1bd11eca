// Package telemetry provides Prometheus instrumentation for the
// record-check worker.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all worker Prometheus metrics
type Metrics struct {
	// Case processing metrics
	CasesProcessed *prometheus.CounterVec
	CasesFailed    *prometheus.CounterVec
	CaseDuration   prometheus.Histogram

	// Retrieval metrics
	SearchQueries     prometheus.Counter
	SearchQueryErrors prometheus.Counter
	CandidateHits     prometheus.Histogram
	SurvivingHits     prometheus.Histogram

	// Detail scraping metrics
	DetailFetches     prometheus.Counter
	DetailFetchErrors prometheus.Counter

	// Queue metrics
	PollsEmpty  prometheus.Counter
	QueueClaims prometheus.Counter
}

// Provider wraps the worker metrics
type Provider struct {
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics
func NewProvider() *Provider {
	return &Provider{Metrics: initMetrics()}
}

// Handler returns the Prometheus HTTP handler for /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initCaseMetrics(m)
	initRetrievalMetrics(m)
	initDetailMetrics(m)
	initQueueMetrics(m)
	return m
}

func initCaseMetrics(m *Metrics) {
	m.CasesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crc_worker_cases_processed_total",
		Help: "Total cases completed, by verdict (green, red)",
	}, []string{"verdict"})

	m.CasesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crc_worker_cases_failed_total",
		Help: "Total cases that failed with an unexpected error",
	}, []string{"stage"})

	m.CaseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crc_worker_case_duration_seconds",
		Help:    "End-to-end time to process a single case",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})
}

func initRetrievalMetrics(m *Metrics) {
	m.SearchQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crc_worker_search_queries_total",
		Help: "Total cascade queries dispatched to the search index",
	})

	m.SearchQueryErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crc_worker_search_query_errors_total",
		Help: "Cascade queries that failed and contributed no hits",
	})

	m.CandidateHits = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crc_worker_candidate_hits",
		Help:    "Deduplicated candidate hits per case before filtering",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})

	m.SurvivingHits = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crc_worker_surviving_hits",
		Help:    "Hits per case surviving the cascading filter",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
	})
}

func initDetailMetrics(m *Metrics) {
	m.DetailFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crc_worker_detail_fetches_total",
		Help: "Case-detail documents fetched for act and section extraction",
	})

	m.DetailFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crc_worker_detail_fetch_errors_total",
		Help: "Case-detail documents that could not be fetched or parsed",
	})
}

func initQueueMetrics(m *Metrics) {
	m.PollsEmpty = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crc_worker_polls_empty_total",
		Help: "Poll ticks that found the request queue empty",
	})

	m.QueueClaims = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crc_worker_queue_claims_total",
		Help: "Requests claimed from the queue",
	})
}

// RecordCase records metrics for one completed case
func (p *Provider) RecordCase(verdict string, duration time.Duration) {
	p.Metrics.CasesProcessed.WithLabelValues(verdict).Inc()
	p.Metrics.CaseDuration.Observe(duration.Seconds())
}

// RecordCaseFailure records a case that ended in an unexpected error
func (p *Provider) RecordCaseFailure(stage string) {
	p.Metrics.CasesFailed.WithLabelValues(stage).Inc()
}

// RecordRetrieval records per-case retrieval counts
func (p *Provider) RecordRetrieval(queries, failures, candidates int) {
	p.Metrics.SearchQueries.Add(float64(queries))
	p.Metrics.SearchQueryErrors.Add(float64(failures))
	p.Metrics.CandidateHits.Observe(float64(candidates))
}

// RecordSurvivors records the hit count after filtering
func (p *Provider) RecordSurvivors(count int) {
	p.Metrics.SurvivingHits.Observe(float64(count))
}

// RecordDetailFetch records one case-detail scrape attempt
func (p *Provider) RecordDetailFetch(err error) {
	p.Metrics.DetailFetches.Inc()
	if err != nil {
		p.Metrics.DetailFetchErrors.Inc()
	}
}

// RecordPoll records the outcome of one queue poll
func (p *Provider) RecordPoll(claimed bool) {
	if claimed {
		p.Metrics.QueueClaims.Inc()
		return
	}
	p.Metrics.PollsEmpty.Inc()
}
