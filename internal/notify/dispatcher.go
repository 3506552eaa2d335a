package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/neoforge-dev/synapse-sub010/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

const (
	rateLimitWindow    = time.Hour
	DefaultMaxPerHour  = 10
	DefaultSuppressFor = 5 * time.Minute
	maxConcurrentSends = 4
)

type Config struct {
	MaxPerHour  int           // default cap per rule+channel, overridable per target
	SuppressFor time.Duration // default duplicate-suppression window
}

type lastDelivery struct {
	state models.AlertState
	at    time.Time
}

// Dispatcher fans one alert transition out to the rule's enabled
// targets, applying the hourly rate limit and duplicate suppression per
// rule+channel key. Targets are delivered concurrently, bounded by a
// weighted semaphore; Dispatch returns once every target has been
// attempted (or suppressed), so a tick is never left with orphaned
// sends.
type Dispatcher struct {
	providers   map[string]Provider
	limiter     *slidingWindow
	maxPerHour  int
	suppressFor time.Duration
	sem         *semaphore.Weighted
	log         *logrus.Logger
	now         func() time.Time

	mu       sync.Mutex
	lastSent map[string]lastDelivery
}

func NewDispatcher(providers []Provider, cfg Config, logger *logrus.Logger) *Dispatcher {
	if cfg.MaxPerHour <= 0 {
		cfg.MaxPerHour = DefaultMaxPerHour
	}
	if cfg.SuppressFor <= 0 {
		cfg.SuppressFor = DefaultSuppressFor
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	d := &Dispatcher{
		providers:   make(map[string]Provider, len(providers)),
		limiter:     newSlidingWindow(rateLimitWindow),
		maxPerHour:  cfg.MaxPerHour,
		suppressFor: cfg.SuppressFor,
		sem:         semaphore.NewWeighted(maxConcurrentSends),
		log:         logger,
		now:         time.Now,
		lastSent:    make(map[string]lastDelivery),
	}
	for _, p := range providers {
		d.providers[p.Name()] = p
	}
	return d
}

// ValidateTargets checks every target against its provider. Called at
// rule registration time.
func (d *Dispatcher) ValidateTargets(targets []models.NotificationTarget) error {
	for _, target := range targets {
		provider, ok := d.providers[target.Channel]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownProvider, target.Channel)
		}
		if err := provider.ValidateConfig(target.Config); err != nil {
			return fmt.Errorf("%s target: %v", target.Channel, err)
		}
	}
	return nil
}

// Dispatch delivers one event to each enabled target. Per-target
// failures are logged and never stop the remaining targets.
func (d *Dispatcher) Dispatch(event models.AlertEvent, targets []models.NotificationTarget) {
	now := d.now()
	var wg sync.WaitGroup

	for _, target := range targets {
		if !target.Enabled {
			continue
		}
		provider, ok := d.providers[target.Channel]
		if !ok {
			d.log.WithField("channel", target.Channel).Warn("skipping target with unknown provider")
			continue
		}

		key := event.AlertName + ":" + target.Channel
		if !d.allowSend(key, event.State, target, now) {
			continue
		}

		wg.Add(1)
		go func(provider Provider, target models.NotificationTarget, key string) {
			defer wg.Done()
			if err := d.sem.Acquire(context.Background(), 1); err != nil {
				return
			}
			defer d.sem.Release(1)

			if provider.Send(event, target) {
				d.recordSend(key, event.State)
			} else {
				d.log.WithFields(logrus.Fields{"alert": event.AlertName, "channel": target.Channel}).Warn("notification delivery failed")
			}
		}(provider, target, key)
	}

	wg.Wait()
}

// allowSend enforces the hourly cap first, then duplicate suppression:
// a notification with the same state as the last one sent on this key
// inside the suppression window is dropped.
func (d *Dispatcher) allowSend(key string, state models.AlertState, target models.NotificationTarget, now time.Time) bool {
	limit := target.MaxPerHour
	if limit <= 0 {
		limit = d.maxPerHour
	}
	if !d.limiter.allow(key, limit, now) {
		d.log.WithField("key", key).Info("notification rate limit reached, suppressing")
		return false
	}

	window := target.SuppressDuplicateFor
	if window <= 0 {
		window = d.suppressFor
	}
	d.mu.Lock()
	last, ok := d.lastSent[key]
	d.mu.Unlock()
	if ok && last.state == state && now.Sub(last.at) < window {
		d.log.WithField("key", key).Info("duplicate notification suppressed")
		return false
	}
	return true
}

func (d *Dispatcher) recordSend(key string, state models.AlertState) {
	now := d.now()
	d.limiter.record(key, now)
	d.mu.Lock()
	d.lastSent[key] = lastDelivery{state: state, at: now}
	d.mu.Unlock()
}
