package metrics

import "time"

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// HealthThresholds decide when the summary flips from healthy to
// degraded. Zero values fall back to the historical policy of 5% error
// rate and 5s mean request latency.
type HealthThresholds struct {
	MaxErrorRatePercent  float64
	MaxAvgLatencySeconds float64
}

func (t HealthThresholds) withDefaults() HealthThresholds {
	if t.MaxErrorRatePercent == 0 {
		t.MaxErrorRatePercent = 5
	}
	if t.MaxAvgLatencySeconds == 0 {
		t.MaxAvgLatencySeconds = 5
	}
	return t
}

type HealthSummary struct {
	Status           string             `json:"status"`
	UptimeSeconds    float64            `json:"uptime_seconds"`
	TotalRequests    int                `json:"total_requests"`
	ErrorCount       int                `json:"error_count"`
	ErrorRatePercent float64            `json:"error_rate_percent"`
	AverageLatencies map[string]float64 `json:"average_latencies"`
	ActiveAlertCount int                `json:"active_alert_count"`
	Timestamp        time.Time          `json:"timestamp"`
}

type SeriesReport struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Latest  float64 `json:"latest"`
}

type PerformanceReport struct {
	UptimeSeconds float64                 `json:"uptime_seconds"`
	Series        map[string]SeriesReport `json:"series"`
	Timestamp     time.Time               `json:"timestamp"`
}

// Health derives point-in-time summaries from registry state. It owns
// no mutable state of its own and is safe to query from any goroutine.
type Health struct {
	registry    *Registry
	thresholds  HealthThresholds
	activeCount func() int
}

// NewHealth builds an aggregator. activeCount reports currently firing
// alerts and may be nil when no alert engine is running.
func NewHealth(registry *Registry, thresholds HealthThresholds, activeCount func() int) *Health {
	return &Health{
		registry:    registry,
		thresholds:  thresholds.withDefaults(),
		activeCount: activeCount,
	}
}

// Summary never fails: series with no observations contribute zeros.
func (h *Health) Summary() HealthSummary {
	totalRequests := h.registry.SumOverWindow(SeriesRequestsTotal)
	errorCount := h.registry.SumOverWindow(SeriesErrorsTotal)
	errorRate := 0.0
	if totalRequests > 0 {
		errorRate = errorCount / totalRequests * 100
	}
	avgLatency := h.registry.AverageOverWindow(SeriesRequestDurationSeconds)

	status := StatusHealthy
	if errorRate >= h.thresholds.MaxErrorRatePercent || avgLatency >= h.thresholds.MaxAvgLatencySeconds {
		status = StatusDegraded
	}

	active := 0
	if h.activeCount != nil {
		active = h.activeCount()
	}

	return HealthSummary{
		Status:           status,
		UptimeSeconds:    h.registry.Uptime().Seconds(),
		TotalRequests:    int(totalRequests),
		ErrorCount:       int(errorCount),
		ErrorRatePercent: errorRate,
		AverageLatencies: map[string]float64{
			SeriesRequestDurationSeconds:   avgLatency,
			SeriesSearchDurationSeconds:    h.registry.AverageOverWindow(SeriesSearchDurationSeconds),
			SeriesIngestionDurationSeconds: h.registry.AverageOverWindow(SeriesIngestionDurationSeconds),
		},
		ActiveAlertCount: active,
		Timestamp:        time.Now(),
	}
}

// Performance reports count, mean, and latest value per registered
// series.
func (h *Health) Performance() PerformanceReport {
	snapshot := h.registry.SnapshotCurrent()
	series := make(map[string]SeriesReport)
	for _, def := range h.registry.Definitions() {
		count := h.registry.WindowCount(def.Name)
		if count == 0 {
			continue
		}
		series[def.Name] = SeriesReport{
			Count:   count,
			Average: h.registry.AverageOverWindow(def.Name),
			Latest:  snapshot[def.Name],
		}
	}
	return PerformanceReport{
		UptimeSeconds: h.registry.Uptime().Seconds(),
		Series:        series,
		Timestamp:     time.Now(),
	}
}
