package models

import "time"

type MetricKind string

const (
	MetricKindCounter   MetricKind = "counter"
	MetricKindGauge     MetricKind = "gauge"
	MetricKindHistogram MetricKind = "histogram"
	MetricKindSummary   MetricKind = "summary"
)

// MetricDefinition describes a named metric series. Definitions are
// registered once at startup and never mutated afterwards.
type MetricDefinition struct {
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Kind             MetricKind `json:"kind"`
	LabelNames       []string   `json:"label_names,omitempty"`
	BucketBoundaries []float64  `json:"bucket_boundaries,omitempty"` // histograms only, ascending
	Unit             string     `json:"unit,omitempty"`
}

// MetricObservation is a single recorded data point.
type MetricObservation struct {
	MetricName string            `json:"metric_name"`
	Value      float64           `json:"value"`
	Labels     map[string]string `json:"labels,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}
