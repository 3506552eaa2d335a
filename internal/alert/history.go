package alert

import (
	"sync"
	"time"

	"github.com/neoforge-dev/synapse-sub010/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const DefaultHistoryCapacity = 1000

// History is a bounded append-only log of alert events. The oldest
// event is silently dropped on overflow. When constructed with a
// database, every append is also mirrored to it; a failed insert is
// logged and does not affect the in-memory log.
type History struct {
	mu       sync.RWMutex
	events   []models.AlertEvent
	capacity int
	db       *gorm.DB
	log      *logrus.Logger
}

func NewHistory(capacity int, db *gorm.DB, logger *logrus.Logger) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &History{
		events:   make([]models.AlertEvent, 0, capacity),
		capacity: capacity,
		db:       db,
		log:      logger,
	}
}

func (h *History) Append(event models.AlertEvent) {
	h.mu.Lock()
	if len(h.events) == h.capacity {
		copy(h.events, h.events[1:])
		h.events[len(h.events)-1] = event
	} else {
		h.events = append(h.events, event)
	}
	h.mu.Unlock()

	if h.db != nil {
		rec := models.NewAlertEventRecord(event)
		if err := h.db.Create(&rec).Error; err != nil {
			h.log.WithError(err).WithField("alert", event.AlertName).Warn("failed to persist alert event")
		}
	}
}

// Recent returns the last limit events, newest last. limit <= 0 returns
// everything retained.
func (h *History) Recent(limit int) []models.AlertEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if limit <= 0 || limit > len(h.events) {
		limit = len(h.events)
	}
	out := make([]models.AlertEvent, limit)
	copy(out, h.events[len(h.events)-limit:])
	return out
}

func (h *History) TotalEvents() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.events)
}

type Statistics struct {
	TotalRules           int                     `json:"total_rules"`
	ActiveAlertCount     int                     `json:"active_alert_count"`
	SeverityDistribution map[models.Severity]int `json:"severity_distribution"`
	EventsLast24h        int                     `json:"events_last_24h"`
	TotalEvents          int                     `json:"total_events"`
}

// statistics aggregates over retained events; rule counts come from the
// engine, which owns rule state.
func (h *History) statistics(totalRules, activeCount int, now time.Time) Statistics {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dist := make(map[models.Severity]int)
	last24h := 0
	cutoff := now.Add(-24 * time.Hour)
	for _, e := range h.events {
		dist[e.Severity]++
		if e.Timestamp.After(cutoff) {
			last24h++
		}
	}
	return Statistics{
		TotalRules:           totalRules,
		ActiveAlertCount:     activeCount,
		SeverityDistribution: dist,
		EventsLast24h:        last24h,
		TotalEvents:          len(h.events),
	}
}
