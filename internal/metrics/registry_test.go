package metrics

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/neoforge-dev/synapse-sub010/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRegistry_RingBufferBound(t *testing.T) {
	r := NewRegistry(5, quietLogger())
	if err := r.RegisterMetric(models.MetricDefinition{Name: "queue_depth", Kind: models.MetricKindGauge}); err != nil {
		t.Fatalf("failed to register metric: %v", err)
	}

	for i := 1; i <= 8; i++ {
		r.Record("queue_depth", float64(i), nil)
	}

	if got := r.WindowCount("queue_depth"); got != 5 {
		t.Fatalf("expected 5 retained observations, got %d", got)
	}

	var got []float64
	for _, obs := range r.History("queue_depth") {
		got = append(got, obs.Value)
	}
	want := []float64{4, 5, 6, 7, 8}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("retained values mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_CounterAverageAndSnapshot(t *testing.T) {
	r := NewRegistry(100, quietLogger())

	for i := 0; i < 5; i++ {
		r.Record(SeriesRequestsTotal, 1, nil)
	}

	if got := r.AverageOverWindow(SeriesRequestsTotal); got != 1.0 {
		t.Fatalf("AverageOverWindow = %v, want 1.0", got)
	}
	if got := r.SnapshotCurrent()[SeriesRequestsTotal]; got != 1.0 {
		t.Fatalf("SnapshotCurrent = %v, want latest value 1.0", got)
	}
	if got := r.SumOverWindow(SeriesRequestsTotal); got != 5.0 {
		t.Fatalf("SumOverWindow = %v, want 5.0", got)
	}
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	r := NewRegistry(10, quietLogger())
	def := models.MetricDefinition{Name: "dup", Kind: models.MetricKindCounter}

	if err := r.RegisterMetric(def); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	err := r.RegisterMetric(def)
	if !errors.Is(err, ErrDuplicateMetric) {
		t.Fatalf("expected ErrDuplicateMetric, got %v", err)
	}

	// Replacing requires an explicit unregister first.
	r.UnregisterMetric("dup")
	if err := r.RegisterMetric(def); err != nil {
		t.Fatalf("re-registration after unregister failed: %v", err)
	}
}

func TestRegistry_UnregisteredRecordIsDropped(t *testing.T) {
	r := NewRegistry(10, quietLogger())

	// Must not panic and must not create a series.
	r.Record("never_registered", 42, nil)

	if got := r.WindowCount("never_registered"); got != 0 {
		t.Fatalf("expected no observations, got %d", got)
	}
	if _, ok := r.SnapshotCurrent()["never_registered"]; ok {
		t.Fatal("unregistered metric leaked into snapshot")
	}
}

func TestRegistry_UnknownLabelKeysStripped(t *testing.T) {
	r := NewRegistry(10, quietLogger())
	if err := r.RegisterMetric(models.MetricDefinition{
		Name:       "labeled",
		Kind:       models.MetricKindGauge,
		LabelNames: []string{"region"},
	}); err != nil {
		t.Fatalf("failed to register metric: %v", err)
	}

	r.Record("labeled", 1, map[string]string{"region": "eu", "bogus": "x"})

	history := r.History("labeled")
	if len(history) != 1 {
		t.Fatalf("expected observation to be kept, got %d", len(history))
	}
	want := map[string]string{"region": "eu"}
	if diff := cmp.Diff(want, history[0].Labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_SnapshotEmptySeriesOmitted(t *testing.T) {
	r := NewRegistry(10, quietLogger())

	snapshot := r.SnapshotCurrent()
	if len(snapshot) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snapshot)
	}
	if got := r.AverageOverWindow(SeriesRequestsTotal); got != 0 {
		t.Fatalf("AverageOverWindow on empty series = %v, want 0", got)
	}
}

func TestRegistry_ConcurrentRecording(t *testing.T) {
	r := NewRegistry(1000, quietLogger())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.RecordRequest(fmt.Sprintf("/path/%d", i), 0.01, j%10 == 0)
			}
		}(i)
	}
	wg.Wait()

	if got := int(r.SumOverWindow(SeriesRequestsTotal)); got != 500 {
		t.Fatalf("expected 500 requests recorded, got %d", got)
	}
	if got := int(r.SumOverWindow(SeriesErrorsTotal)); got != 50 {
		t.Fatalf("expected 50 errors recorded, got %d", got)
	}
}

func TestRecorder_SearchAndIngestion(t *testing.T) {
	r := NewRegistry(100, quietLogger())

	r.RecordSearch("vector", 0.5, 12)
	r.RecordSearch("vector", 1.5, 4)
	r.RecordIngestion(30, 2.0)

	if got := r.AverageOverWindow(SeriesSearchDurationSeconds); got != 1.0 {
		t.Fatalf("search latency average = %v, want 1.0", got)
	}
	if got := r.SnapshotCurrent()[SeriesSearchResultsTotal]; got != 4 {
		t.Fatalf("latest search result count = %v, want 4", got)
	}
	if got := r.SumOverWindow(SeriesIngestionDocumentsTotal); got != 30 {
		t.Fatalf("ingested documents = %v, want 30", got)
	}
}
