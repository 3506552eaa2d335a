package models

import (
	"time"

	"gorm.io/gorm"
)

type Operator string

const (
	OperatorGT  Operator = ">"
	OperatorLT  Operator = "<"
	OperatorGTE Operator = ">="
	OperatorLTE Operator = "<="
	OperatorEQ  Operator = "=="
)

type ConditionKind string

const (
	ConditionThreshold ConditionKind = "threshold"
	ConditionCustom    ConditionKind = "custom"
)

// Condition decides whether an alert should be firing, given a snapshot
// of the latest value of every metric. Threshold conditions compare one
// metric against a fixed value and are fully serializable; custom
// conditions carry an opaque predicate and exist for checks that cannot
// be expressed as a single comparison.
type Condition struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Kind        ConditionKind `json:"kind"`
	Metric      string        `json:"metric,omitempty"`    // threshold only
	Operator    Operator      `json:"operator,omitempty"`  // threshold only
	Threshold   float64       `json:"threshold,omitempty"` // informational for custom conditions

	Predicate func(snapshot map[string]float64) (bool, error) `json:"-" yaml:"-"`

	DurationBeforeFire time.Duration `json:"duration_before_fire"`
	EvaluationInterval time.Duration `json:"evaluation_interval"` // minimum time between re-checks
}

// NotificationTarget binds a rule to one outbound channel.
type NotificationTarget struct {
	Channel              string            `json:"channel"`
	Config               map[string]string `json:"config,omitempty"`
	Enabled              bool              `json:"enabled"`
	MaxPerHour           int               `json:"max_per_hour,omitempty"`           // 0 means the configured default
	SuppressDuplicateFor time.Duration     `json:"suppress_duplicate_for,omitempty"` // 0 means the configured default
}

// EscalationStep is informational only; the engine records it with the
// rule but does not act on it.
type EscalationStep struct {
	AfterActiveFor time.Duration `json:"after_active_for"`
	Channel        string        `json:"channel"`
}

// AlertRule pairs a condition with severity and notification behavior.
// The lifecycle fields below Condition are owned exclusively by the
// alert engine and must not be written by anyone else.
type AlertRule struct {
	Condition        Condition            `json:"condition"`
	Severity         Severity             `json:"severity"`
	Tags             []string             `json:"tags,omitempty"`
	Targets          []NotificationTarget `json:"targets,omitempty"`
	AutoResolveAfter time.Duration        `json:"auto_resolve_after,omitempty"`
	Escalations      []EscalationStep     `json:"escalations,omitempty"`

	State                AlertState `json:"state"`
	FirstConditionTrueAt *time.Time `json:"first_condition_true_at,omitempty"`
	LastConditionTrueAt  *time.Time `json:"last_condition_true_at,omitempty"`
	LastTriggeredAt      *time.Time `json:"last_triggered_at,omitempty"`
	LastResolvedAt       *time.Time `json:"last_resolved_at,omitempty"`
	LastEvaluatedAt      *time.Time `json:"last_evaluated_at,omitempty"`
	TriggerCount         int        `json:"trigger_count"`
}

func (r *AlertRule) Name() string {
	return r.Condition.Name
}

// AlertRuleRecord is the flattened, serializable form of a threshold
// rule used for database persistence. Custom rules are code-defined and
// are not persisted.
type AlertRuleRecord struct {
	gorm.Model
	Name               string               `json:"name" gorm:"uniqueIndex;not null"`
	Description        string               `json:"description"`
	Metric             string               `json:"metric"`
	Operator           Operator             `json:"operator"`
	Threshold          float64              `json:"threshold"`
	DurationSeconds    int                  `json:"duration_seconds"`
	IntervalSeconds    int                  `json:"interval_seconds"`
	Severity           Severity             `json:"severity"`
	Tags               []string             `json:"tags" gorm:"serializer:json"`
	Targets            []NotificationTarget `json:"targets" gorm:"serializer:json"`
	AutoResolveSeconds int                  `json:"auto_resolve_seconds"`
	TriggerCount       int                  `json:"trigger_count" gorm:"default:0"`
}
