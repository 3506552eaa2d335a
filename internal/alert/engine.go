package alert

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/neoforge-dev/synapse-sub010/internal/metrics"
	"github.com/neoforge-dev/synapse-sub010/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const DefaultEvaluationInterval = 30 * time.Second

var ErrInvalidRule = errors.New("invalid alert rule")

// Dispatcher is the outbound side of the engine. Implemented by
// notify.Dispatcher.
type Dispatcher interface {
	ValidateTargets(targets []models.NotificationTarget) error
	Dispatch(event models.AlertEvent, targets []models.NotificationTarget)
}

type Config struct {
	EvaluationInterval time.Duration
	AutoResolveEnabled bool
}

// Engine owns all alert rules and their lifecycle state. A single
// background goroutine drives periodic evaluation; rule registration
// and the read-only query methods may be called from any goroutine.
type Engine struct {
	mu          sync.RWMutex
	rules       map[string]*models.AlertRule
	registry    *metrics.Registry
	history     *History
	dispatcher  Dispatcher
	db          *gorm.DB
	interval    time.Duration
	autoResolve bool
	log         *logrus.Logger
	now         func() time.Time

	stopChan chan struct{}
	done     chan struct{}
	started  bool
}

func NewEngine(registry *metrics.Registry, history *History, dispatcher Dispatcher, db *gorm.DB, cfg Config, logger *logrus.Logger) *Engine {
	if cfg.EvaluationInterval <= 0 {
		cfg.EvaluationInterval = DefaultEvaluationInterval
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{
		rules:       make(map[string]*models.AlertRule),
		registry:    registry,
		history:     history,
		dispatcher:  dispatcher,
		db:          db,
		interval:    cfg.EvaluationInterval,
		autoResolve: cfg.AutoResolveEnabled,
		log:         logger,
		now:         time.Now,
	}
}

// RegisterRule validates and stores a rule, overwriting any existing
// rule of the same name. Threshold rules are mirrored to the database
// when one is configured.
func (e *Engine) RegisterRule(rule *models.AlertRule) error {
	if err := ValidateCondition(rule.Condition); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	if e.dispatcher != nil {
		if err := e.dispatcher.ValidateTargets(rule.Targets); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRule, err)
		}
	}
	if rule.State == "" {
		rule.State = models.AlertStatePending
	}

	e.mu.Lock()
	stored := *rule
	e.rules[rule.Name()] = &stored
	e.mu.Unlock()

	if e.db != nil && rule.Condition.Kind == models.ConditionThreshold {
		e.persistRule(rule)
	}
	return nil
}

func (e *Engine) persistRule(rule *models.AlertRule) {
	rec := models.AlertRuleRecord{
		Name:               rule.Name(),
		Description:        rule.Condition.Description,
		Metric:             rule.Condition.Metric,
		Operator:           rule.Condition.Operator,
		Threshold:          rule.Condition.Threshold,
		DurationSeconds:    int(rule.Condition.DurationBeforeFire.Seconds()),
		IntervalSeconds:    int(rule.Condition.EvaluationInterval.Seconds()),
		Severity:           rule.Severity,
		Tags:               rule.Tags,
		Targets:            rule.Targets,
		AutoResolveSeconds: int(rule.AutoResolveAfter.Seconds()),
	}

	var existing models.AlertRuleRecord
	err := e.db.Where("name = ?", rec.Name).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = e.db.Create(&rec).Error
	case err == nil:
		rec.Model = existing.Model
		rec.TriggerCount = existing.TriggerCount
		err = e.db.Save(&rec).Error
	}
	if err != nil {
		e.log.WithError(err).WithField("rule", rec.Name).Warn("failed to persist alert rule")
	}
}

func (e *Engine) RemoveRule(name string) {
	e.mu.Lock()
	delete(e.rules, name)
	e.mu.Unlock()

	if e.db != nil {
		if err := e.db.Where("name = ?", name).Delete(&models.AlertRuleRecord{}).Error; err != nil {
			e.log.WithError(err).WithField("rule", name).Warn("failed to delete persisted rule")
		}
	}
}

// ListRules returns copies of every rule, sorted by name.
func (e *Engine) ListRules() []models.AlertRule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]models.AlertRule, 0, len(e.rules))
	for _, rule := range e.rules {
		out = append(out, *rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// ListActiveAlerts returns copies of the rules currently firing.
func (e *Engine) ListActiveAlerts() []models.AlertRule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []models.AlertRule
	for _, rule := range e.rules {
		if rule.State == models.AlertStateActive {
			out = append(out, *rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (e *Engine) ActiveAlertCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	count := 0
	for _, rule := range e.rules {
		if rule.State == models.AlertStateActive {
			count++
		}
	}
	return count
}

func (e *Engine) Statistics() Statistics {
	e.mu.RLock()
	total := len(e.rules)
	active := 0
	for _, rule := range e.rules {
		if rule.State == models.AlertStateActive {
			active++
		}
	}
	e.mu.RUnlock()

	return e.history.statistics(total, active, e.now())
}

func (e *Engine) RecentEvents(limit int) []models.AlertEvent {
	return e.history.Recent(limit)
}

// Start launches the evaluation goroutine. The first tick happens one
// interval after Start, and ticks never overlap. A stopped engine may
// be started again; only a running one rejects Start.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return fmt.Errorf("alert engine already started")
	}
	e.started = true
	// Fresh channels each run so a restart never sees the closed pair
	// from the previous Stop.
	e.stopChan = make(chan struct{})
	e.done = make(chan struct{})

	stop, done := e.stopChan, e.done
	go func() {
		defer close(done)
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.tick(e.now())
			case <-stop:
				return
			}
		}
	}()

	e.log.WithField("interval", e.interval).Info("alert engine started")
	return nil
}

// Stop cancels the evaluation goroutine and waits for it to exit.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	stop, done := e.stopChan, e.done
	e.mu.Unlock()

	close(stop)
	<-done
	e.log.Info("alert engine stopped")
}

// outboundEvent pairs a recorded transition with its rule's targets so
// delivery can happen after the engine lock is released.
type outboundEvent struct {
	event   models.AlertEvent
	targets []models.NotificationTarget
}

// tick evaluates every rule once against a fresh metric snapshot, in
// name order, then runs the auto-resolve sweep. One failing rule never
// blocks the rest. Notifications are dispatched after the lock is
// dropped so query methods never stall behind a slow send.
func (e *Engine) tick(now time.Time) {
	snapshot := e.registry.SnapshotCurrent()

	e.mu.Lock()
	names := make([]string, 0, len(e.rules))
	for name := range e.rules {
		names = append(names, name)
	}
	sort.Strings(names)

	var outbound []outboundEvent
	for _, name := range names {
		e.evaluateRule(e.rules[name], snapshot, now, &outbound)
	}
	if e.autoResolve {
		e.autoResolveSweep(snapshot, now, &outbound)
	}
	e.mu.Unlock()

	if e.dispatcher != nil {
		for _, o := range outbound {
			e.dispatcher.Dispatch(o.event, o.targets)
		}
	}
}

func (e *Engine) evaluateRule(rule *models.AlertRule, snapshot map[string]float64, now time.Time, out *[]outboundEvent) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("rule", rule.Name()).Errorf("panic during rule evaluation: %v", r)
		}
	}()

	if iv := rule.Condition.EvaluationInterval; iv > 0 && rule.LastEvaluatedAt != nil && now.Sub(*rule.LastEvaluatedAt) < iv {
		return
	}
	t := now
	rule.LastEvaluatedAt = &t

	firing, err := EvaluateCondition(rule.Condition, snapshot)
	if err != nil {
		e.log.WithError(err).WithField("rule", rule.Name()).Warn("rule evaluation failed, skipping this tick")
		return
	}

	if !firing {
		rule.FirstConditionTrueAt = nil
		if rule.State == models.AlertStateActive {
			e.resolve(rule, snapshot, now, "condition cleared", out)
		}
		return
	}

	rule.LastConditionTrueAt = &t
	if rule.State == models.AlertStateActive {
		return
	}
	if rule.FirstConditionTrueAt == nil {
		rule.FirstConditionTrueAt = &t
	}
	if now.Sub(*rule.FirstConditionTrueAt) >= rule.Condition.DurationBeforeFire {
		e.trigger(rule, snapshot, now, out)
	}
}

func (e *Engine) trigger(rule *models.AlertRule, snapshot map[string]float64, now time.Time, out *[]outboundEvent) {
	t := now
	rule.State = models.AlertStateActive
	rule.LastTriggeredAt = &t
	rule.TriggerCount++

	event := e.newEvent(rule, models.AlertStateActive, snapshot, now, rule.Condition.Description)
	e.history.Append(event)
	e.log.WithFields(logrus.Fields{"rule": rule.Name(), "severity": rule.Severity}).Warn("alert triggered")
	*out = append(*out, outboundEvent{event: event, targets: rule.Targets})
}

// resolve is the single resolution path for both condition-based and
// forced auto-resolution; it no-ops unless the rule is Active, so the
// two paths can never emit duplicate events.
func (e *Engine) resolve(rule *models.AlertRule, snapshot map[string]float64, now time.Time, reason string, out *[]outboundEvent) {
	if rule.State != models.AlertStateActive {
		return
	}
	t := now
	rule.State = models.AlertStateResolved
	rule.LastResolvedAt = &t
	rule.FirstConditionTrueAt = nil

	event := e.newEvent(rule, models.AlertStateResolved, snapshot, now, reason)
	e.history.Append(event)
	e.log.WithFields(logrus.Fields{"rule": rule.Name(), "reason": reason}).Info("alert resolved")
	*out = append(*out, outboundEvent{event: event, targets: rule.Targets})
}

// autoResolveSweep force-resolves alerts stuck Active past their
// AutoResolveAfter window, as a safety valve against conditions that
// never clear.
func (e *Engine) autoResolveSweep(snapshot map[string]float64, now time.Time, out *[]outboundEvent) {
	for _, rule := range e.rules {
		if rule.State != models.AlertStateActive || rule.AutoResolveAfter <= 0 || rule.LastTriggeredAt == nil {
			continue
		}
		if now.Sub(*rule.LastTriggeredAt) >= rule.AutoResolveAfter {
			e.resolve(rule, snapshot, now, "auto-resolved after maximum active duration", out)
		}
	}
}

func (e *Engine) newEvent(rule *models.AlertRule, state models.AlertState, snapshot map[string]float64, now time.Time, description string) models.AlertEvent {
	values := make(map[string]float64, len(snapshot))
	for k, v := range snapshot {
		values[k] = v
	}
	return models.AlertEvent{
		AlertName:    rule.Name(),
		Timestamp:    now,
		State:        state,
		Severity:     rule.Severity,
		Description:  description,
		MetricValues: values,
		Tags:         rule.Tags,
	}
}
