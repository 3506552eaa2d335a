package metrics

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/neoforge-dev/synapse-sub010/internal/models"
	"github.com/sirupsen/logrus"
)

const DefaultSeriesCapacity = 1000

var ErrDuplicateMetric = errors.New("metric already registered")

// ringBuffer holds the most recent observations of one series in
// insertion order, evicting the oldest on overflow.
type ringBuffer struct {
	buf  []models.MetricObservation
	head int
	size int
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{buf: make([]models.MetricObservation, capacity)}
}

func (r *ringBuffer) push(obs models.MetricObservation) {
	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = obs
		r.size++
		return
	}
	r.buf[r.head] = obs
	r.head = (r.head + 1) % len(r.buf)
}

func (r *ringBuffer) latest() (models.MetricObservation, bool) {
	if r.size == 0 {
		return models.MetricObservation{}, false
	}
	return r.buf[(r.head+r.size-1)%len(r.buf)], true
}

// values returns retained observations oldest first.
func (r *ringBuffer) values() []models.MetricObservation {
	out := make([]models.MetricObservation, 0, r.size)
	for i := 0; i < r.size; i++ {
		out = append(out, r.buf[(r.head+i)%len(r.buf)])
	}
	return out
}

// Registry stores metric definitions and a bounded rolling history per
// series. Record is safe to call concurrently from any number of
// request-handling goroutines.
type Registry struct {
	mu        sync.RWMutex
	defs      map[string]models.MetricDefinition
	series    map[string]*ringBuffer
	capacity  int
	startedAt time.Time
	log       *logrus.Logger
}

func NewRegistry(capacity int, logger *logrus.Logger) *Registry {
	if capacity <= 0 {
		capacity = DefaultSeriesCapacity
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	r := &Registry{
		defs:      make(map[string]models.MetricDefinition),
		series:    make(map[string]*ringBuffer),
		capacity:  capacity,
		startedAt: time.Now(),
		log:       logger,
	}
	r.registerBuiltins()
	return r
}

// RegisterMetric adds a definition. Re-registering a name fails with
// ErrDuplicateMetric; call UnregisterMetric first to replace one.
func (r *Registry) RegisterMetric(def models.MetricDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.defs[def.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateMetric, def.Name)
	}
	r.defs[def.Name] = def
	r.series[def.Name] = newRingBuffer(r.capacity)
	return nil
}

func (r *Registry) UnregisterMetric(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.defs, name)
	delete(r.series, name)
}

// Record appends an observation. Recording never fails to the caller:
// unregistered names are logged and dropped, unknown label keys are
// logged and stripped while the observation is kept.
func (r *Registry) Record(name string, value float64, labels map[string]string) {
	r.recordAt(name, value, labels, time.Now())
}

// RecordAt is Record with an explicit timestamp, for callers replaying
// buffered observations.
func (r *Registry) RecordAt(name string, value float64, labels map[string]string, ts time.Time) {
	r.recordAt(name, value, labels, ts)
}

func (r *Registry) recordAt(name string, value float64, labels map[string]string, ts time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, ok := r.defs[name]
	if !ok {
		r.log.WithField("metric", name).Warn("dropping observation for unregistered metric")
		return
	}
	labels = r.filterLabels(def, labels)
	r.series[name].push(models.MetricObservation{
		MetricName: name,
		Value:      value,
		Labels:     labels,
		Timestamp:  ts,
	})
}

func (r *Registry) filterLabels(def models.MetricDefinition, labels map[string]string) map[string]string {
	if len(labels) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(def.LabelNames))
	for _, n := range def.LabelNames {
		allowed[n] = true
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		if !allowed[k] {
			r.log.WithFields(logrus.Fields{"metric": def.Name, "label": k}).Warn("dropping unknown label key")
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ObserveDuration records a duration in seconds against a histogram or
// summary series.
func (r *Registry) ObserveDuration(name string, seconds float64, labels map[string]string) {
	r.Record(name, seconds, labels)
}

// SnapshotCurrent returns the most recently recorded value of every
// series with at least one observation.
func (r *Registry) SnapshotCurrent() map[string]float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]float64, len(r.series))
	for name, rb := range r.series {
		if obs, ok := rb.latest(); ok {
			out[name] = obs.Value
		}
	}
	return out
}

// AverageOverWindow returns the arithmetic mean of the retained
// observations of one series, or 0 when there are none.
func (r *Registry) AverageOverWindow(name string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rb, ok := r.series[name]
	if !ok || rb.size == 0 {
		return 0
	}
	var sum float64
	for _, obs := range rb.values() {
		sum += obs.Value
	}
	return sum / float64(rb.size)
}

// SumOverWindow returns the sum of retained observations, 0 when none.
// For counter series recorded as deltas this is the windowed total.
func (r *Registry) SumOverWindow(name string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rb, ok := r.series[name]
	if !ok {
		return 0
	}
	var sum float64
	for _, obs := range rb.values() {
		sum += obs.Value
	}
	return sum
}

// WindowCount returns how many observations are currently retained.
func (r *Registry) WindowCount(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rb, ok := r.series[name]
	if !ok {
		return 0
	}
	return rb.size
}

// History returns the retained observations of one series, oldest first.
func (r *Registry) History(name string) []models.MetricObservation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rb, ok := r.series[name]
	if !ok {
		return nil
	}
	return rb.values()
}

func (r *Registry) Definitions() []models.MetricDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.MetricDefinition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	return out
}

func (r *Registry) Uptime() time.Duration {
	return time.Since(r.startedAt)
}
