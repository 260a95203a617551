package models

import "time"

// SystemMetrics is a point-in-time summary of the instrumentation counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	PlanRuns                 uint64    `json:"plan_runs"`
	AveragePlanDurationMs    float64   `json:"average_plan_duration_ms"`
	SemestersPlanned         uint64    `json:"semesters_planned"`
	ExportsRendered          uint64    `json:"exports_rendered"`
	ExportQueueDepth         int       `json:"export_queue_depth"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
