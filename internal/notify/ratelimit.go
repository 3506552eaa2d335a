package notify

import (
	"sync"
	"time"
)

// slidingWindow caps deliveries per key over a trailing window by
// keeping the timestamps of recent sends and pruning the expired ones
// on every check.
type slidingWindow struct {
	mu     sync.Mutex
	window time.Duration
	sends  map[string][]time.Time
}

func newSlidingWindow(window time.Duration) *slidingWindow {
	return &slidingWindow{
		window: window,
		sends:  make(map[string][]time.Time),
	}
}

func (w *slidingWindow) allow(key string, limit int, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.prune(key, now)) < limit
}

func (w *slidingWindow) record(key string, now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sends[key] = append(w.prune(key, now), now)
}

// prune drops timestamps older than the window. Caller holds the lock.
func (w *slidingWindow) prune(key string, now time.Time) []time.Time {
	kept := w.sends[key][:0]
	cutoff := now.Add(-w.window)
	for _, t := range w.sends[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(w.sends, key)
		return nil
	}
	w.sends[key] = kept
	return kept
}
