package metrics

import "github.com/neoforge-dev/synapse-sub010/internal/models"

// Well-known series fed by the convenience recorders below. Alert
// conditions and the health aggregator key off these names.
const (
	SeriesRequestsTotal            = "requests_total"
	SeriesErrorsTotal              = "errors_total"
	SeriesRequestDurationSeconds   = "request_duration_seconds"
	SeriesSearchDurationSeconds    = "search_duration_seconds"
	SeriesSearchResultsTotal       = "search_results_total"
	SeriesIngestionDocumentsTotal  = "ingestion_documents_total"
	SeriesIngestionDurationSeconds = "ingestion_duration_seconds"
	SeriesErrorRatePercent         = "error_rate_percent"
)

func (r *Registry) registerBuiltins() {
	builtins := []models.MetricDefinition{
		{Name: SeriesRequestsTotal, Description: "Requests served", Kind: models.MetricKindCounter, LabelNames: []string{"path"}},
		{Name: SeriesErrorsTotal, Description: "Requests that failed", Kind: models.MetricKindCounter, LabelNames: []string{"path"}},
		{Name: SeriesRequestDurationSeconds, Description: "Request latency", Kind: models.MetricKindHistogram, LabelNames: []string{"path"}, Unit: "seconds"},
		{Name: SeriesSearchDurationSeconds, Description: "Search latency", Kind: models.MetricKindHistogram, LabelNames: []string{"kind"}, Unit: "seconds"},
		{Name: SeriesSearchResultsTotal, Description: "Results returned per search", Kind: models.MetricKindSummary, LabelNames: []string{"kind"}},
		{Name: SeriesIngestionDocumentsTotal, Description: "Documents ingested", Kind: models.MetricKindCounter},
		{Name: SeriesIngestionDurationSeconds, Description: "Ingestion batch duration", Kind: models.MetricKindHistogram, Unit: "seconds"},
		{Name: SeriesErrorRatePercent, Description: "Rolling error rate", Kind: models.MetricKindGauge, Unit: "percent"},
	}
	for _, def := range builtins {
		r.defs[def.Name] = def
		r.series[def.Name] = newRingBuffer(r.capacity)
	}
}

// RecordRequest tracks one served request on the hot path. It also
// refreshes the rolling error-rate gauge so threshold conditions can
// compare against a single current value.
func (r *Registry) RecordRequest(path string, seconds float64, isError bool) {
	labels := map[string]string{"path": path}
	r.Record(SeriesRequestsTotal, 1, labels)
	r.ObserveDuration(SeriesRequestDurationSeconds, seconds, labels)
	if isError {
		r.Record(SeriesErrorsTotal, 1, labels)
	}
	r.Record(SeriesErrorRatePercent, r.errorRatePercent(), nil)
}

// RecordSearch tracks one search or query execution.
func (r *Registry) RecordSearch(kind string, seconds float64, resultCount int) {
	labels := map[string]string{"kind": kind}
	r.ObserveDuration(SeriesSearchDurationSeconds, seconds, labels)
	r.Record(SeriesSearchResultsTotal, float64(resultCount), labels)
}

// RecordIngestion tracks one ingestion batch.
func (r *Registry) RecordIngestion(docCount int, seconds float64) {
	r.Record(SeriesIngestionDocumentsTotal, float64(docCount), nil)
	r.ObserveDuration(SeriesIngestionDurationSeconds, seconds, nil)
}

func (r *Registry) errorRatePercent() float64 {
	requests := r.SumOverWindow(SeriesRequestsTotal)
	if requests == 0 {
		return 0
	}
	return r.SumOverWindow(SeriesErrorsTotal) / requests * 100
}
