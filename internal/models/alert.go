package models

import (
	"time"

	"gorm.io/gorm"
)

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

type AlertState string

const (
	AlertStatePending  AlertState = "PENDING"
	AlertStateActive   AlertState = "ACTIVE"
	AlertStateResolved AlertState = "RESOLVED"
)

// AlertEvent is an immutable record of a single trigger or resolve
// transition. Events are held in the bounded in-memory history and
// served as-is by the API; persistence goes through AlertEventRecord.
type AlertEvent struct {
	AlertName    string             `json:"alert_name"`
	Timestamp    time.Time          `json:"timestamp"`
	State        AlertState         `json:"state"`
	Severity     Severity           `json:"severity"`
	Description  string             `json:"description"`
	MetricValues map[string]float64 `json:"metric_values"`
	Tags         []string           `json:"tags"`
}

// AlertEventRecord is the database row for an AlertEvent, split from
// the domain type the same way AlertRuleRecord is, so gorm bookkeeping
// columns never appear in API responses.
type AlertEventRecord struct {
	gorm.Model
	AlertName    string             `json:"alert_name" gorm:"index"`
	Timestamp    time.Time          `json:"timestamp"`
	State        AlertState         `json:"state"`
	Severity     Severity           `json:"severity"`
	Description  string             `json:"description"`
	MetricValues map[string]float64 `json:"metric_values" gorm:"serializer:json"`
	Tags         []string           `json:"tags" gorm:"serializer:json"`
}

func NewAlertEventRecord(e AlertEvent) AlertEventRecord {
	return AlertEventRecord{
		AlertName:    e.AlertName,
		Timestamp:    e.Timestamp,
		State:        e.State,
		Severity:     e.Severity,
		Description:  e.Description,
		MetricValues: e.MetricValues,
		Tags:         e.Tags,
	}
}
