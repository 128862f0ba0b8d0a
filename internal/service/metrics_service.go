package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry             *prometheus.Registry
	handler              http.Handler
	requestDuration      *prometheus.HistogramVec
	requestTotal         *prometheus.CounterVec
	cacheLatency         prometheus.Observer
	cacheWrite           prometheus.Observer
	cacheHitRatio        prometheus.Gauge
	cacheHits            prometheus.Counter
	cacheMisses          prometheus.Counter
	dbQueryDuration      *prometheus.HistogramVec
	scheduleMutations    *prometheus.CounterVec
	validationRejections *prometheus.CounterVec
	ledgerEntries        prometheus.Counter
	eventsPublished      *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	ledgerEntryCount     uint64

	mutationMu     sync.Mutex
	mutationCounts map[string]uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of ledger database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	scheduleMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_mutations_total",
		Help: "Committed schedule mutations by change type",
	}, []string{"change_type"})

	validationRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_validation_rejections_total",
		Help: "Mutations rejected by a blocking scheduling rule",
	}, []string{"rule"})

	ledgerEntries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_entries_total",
		Help: "History entries appended to the schedule ledger",
	})

	eventsPublished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_events_published_total",
		Help: "History events handed to the broker by outcome",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		dbQueryDuration, scheduleMutations, validationRejections, ledgerEntries, eventsPublished, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:             registry,
		handler:              handler,
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		cacheLatency:         cacheLatency,
		cacheWrite:           cacheWrite,
		cacheHitRatio:        cacheHitRatio,
		cacheHits:            cacheHits,
		cacheMisses:          cacheMisses,
		dbQueryDuration:      dbQueryDuration,
		scheduleMutations:    scheduleMutations,
		validationRejections: validationRejections,
		ledgerEntries:        ledgerEntries,
		eventsPublished:      eventsPublished,
		mutationCounts:       make(map[string]uint64),
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records ledger database timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordMutation counts a committed mutation and, when an entry was written, the ledger append.
func (m *MetricsService) RecordMutation(changeType models.ChangeType, ledgerEntry bool) {
	if m == nil {
		return
	}
	m.scheduleMutations.WithLabelValues(string(changeType)).Inc()
	m.mutationMu.Lock()
	m.mutationCounts[string(changeType)]++
	m.mutationMu.Unlock()
	if ledgerEntry {
		m.ledgerEntries.Inc()
		atomic.AddUint64(&m.ledgerEntryCount, 1)
	}
}

// RecordRejection counts each blocking rule that rejected a mutation.
func (m *MetricsService) RecordRejection(rules ...string) {
	if m == nil {
		return
	}
	for _, rule := range rules {
		m.validationRejections.WithLabelValues(rule).Inc()
	}
}

// RecordEventPublish counts broker deliveries by outcome.
func (m *MetricsService) RecordEventPublish(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(result).Inc()
}

// Snapshot returns aggregated metrics suitable for the system endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	m.mutationMu.Lock()
	mutations := make(map[string]uint64, len(m.mutationCounts))
	for k, v := range m.mutationCounts {
		mutations[k] = v
	}
	m.mutationMu.Unlock()

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		LedgerEntries:            atomic.LoadUint64(&m.ledgerEntryCount),
		Mutations:                mutations,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
