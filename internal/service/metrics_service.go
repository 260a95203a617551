package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/exam-period-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	cacheLatency     prometheus.Observer
	cacheWrite       prometheus.Observer
	cacheHitRatio    prometheus.Gauge
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	planDuration     prometheus.Histogram
	planRuns         *prometheus.CounterVec
	semestersPlanned prometheus.Counter
	violations       *prometheus.CounterVec
	exportDuration   *prometheus.HistogramVec
	exportJobs       *prometheus.CounterVec
	exportQueueDepth prometheus.Gauge

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	planRunCount         uint64
	planDurationTotal    uint64
	semesterCount        uint64
	exportCount          uint64
	queueDepth           int64
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

	planDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "exam_plan_duration_seconds",
		Help:    "Duration of exam plan generation including the period source",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	planRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exam_plan_runs_total",
		Help: "Exam plan generations by outcome",
	}, []string{"result"})

	semestersPlanned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exam_plan_semesters_total",
		Help: "Semesters planned across all runs",
	})

	violations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exam_plan_violations_total",
		Help: "Rule violations reported in generated plans",
	}, []string{"code"})

	exportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "export_render_duration_seconds",
		Help:    "Duration of export rendering",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})

	exportJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_jobs_total",
		Help: "Asynchronous export jobs by final status",
	}, []string{"format", "status"})

	exportQueueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "export_queue_depth",
		Help: "Export jobs waiting in the worker queue",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		planDuration, planRuns, semestersPlanned, violations, exportDuration, exportJobs, exportQueueDepth, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheLatency:     cacheLatency,
		cacheWrite:       cacheWrite,
		cacheHitRatio:    cacheHitRatio,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		planDuration:     planDuration,
		planRuns:         planRuns,
		semestersPlanned: semestersPlanned,
		violations:       violations,
		exportDuration:   exportDuration,
		exportJobs:       exportJobs,
		exportQueueDepth: exportQueueDepth,
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

// Registry exposes the underlying registry for tests and custom collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// ObservePlanRun records one plan generation. A nil plan counts as a failure.
func (m *MetricsService) ObservePlanRun(plan *models.ExamPlan, duration time.Duration) {
	if m == nil {
		return
	}
	m.planDuration.Observe(duration.Seconds())
	atomic.AddUint64(&m.planRunCount, 1)
	atomic.AddUint64(&m.planDurationTotal, uint64(duration.Nanoseconds()))
	if plan == nil {
		m.planRuns.WithLabelValues("error").Inc()
		return
	}
	m.planRuns.WithLabelValues("ok").Inc()
	m.semestersPlanned.Add(float64(len(plan.Semesters)))
	atomic.AddUint64(&m.semesterCount, uint64(len(plan.Semesters)))
	for _, semester := range plan.Semesters {
		for _, v := range semester.Violations {
			m.violations.WithLabelValues(string(v.Code)).Inc()
		}
	}
}

// ObserveExportRender tracks rendering time per format.
func (m *MetricsService) ObserveExportRender(format string, duration time.Duration) {
	if m == nil {
		return
	}
	m.exportDuration.WithLabelValues(format).Observe(duration.Seconds())
	atomic.AddUint64(&m.exportCount, 1)
}

// RecordExportJob counts an export job reaching a terminal status.
func (m *MetricsService) RecordExportJob(format string, status models.ExportStatus) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(format, string(status)).Inc()
}

// SetExportQueueDepth publishes the number of buffered export jobs.
func (m *MetricsService) SetExportQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.exportQueueDepth.Set(float64(depth))
	atomic.StoreInt64(&m.queueDepth, int64(depth))
}

// Snapshot returns aggregated metrics suitable for the summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	planRuns := atomic.LoadUint64(&m.planRunCount)
	planDuration := atomic.LoadUint64(&m.planDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: averageMillis(reqDuration, requests),
		PlanRuns:                 planRuns,
		AveragePlanDurationMs:    averageMillis(planDuration, planRuns),
		SemestersPlanned:         atomic.LoadUint64(&m.semesterCount),
		ExportsRendered:          atomic.LoadUint64(&m.exportCount),
		ExportQueueDepth:         int(atomic.LoadInt64(&m.queueDepth)),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func averageMillis(totalNanos, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}
