package alert

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/neoforge-dev/synapse-sub010/internal/models"
)

func testEvent(name string, severity models.Severity, ts time.Time) models.AlertEvent {
	return models.AlertEvent{
		AlertName: name,
		Timestamp: ts,
		State:     models.AlertStateActive,
		Severity:  severity,
	}
}

func TestHistory_FIFOBound(t *testing.T) {
	h := NewHistory(3, nil, quietLogger())
	now := time.Now()

	for i := 1; i <= 5; i++ {
		h.Append(testEvent(fmt.Sprintf("alert-%d", i), models.SeverityInfo, now))
	}

	if got := h.TotalEvents(); got != 3 {
		t.Fatalf("retained events = %d, want capacity 3", got)
	}

	var names []string
	for _, e := range h.Recent(0) {
		names = append(names, e.AlertName)
	}
	want := []string{"alert-3", "alert-4", "alert-5"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("retained events mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_RecentLimit(t *testing.T) {
	h := NewHistory(10, nil, quietLogger())
	now := time.Now()
	for i := 1; i <= 5; i++ {
		h.Append(testEvent(fmt.Sprintf("alert-%d", i), models.SeverityInfo, now))
	}

	recent := h.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("Recent(2) returned %d events", len(recent))
	}
	if recent[0].AlertName != "alert-4" || recent[1].AlertName != "alert-5" {
		t.Fatalf("Recent(2) returned wrong tail: %+v", recent)
	}

	if got := len(h.Recent(100)); got != 5 {
		t.Fatalf("Recent(100) returned %d events, want all 5", got)
	}
}

func TestHistory_Statistics(t *testing.T) {
	h := NewHistory(10, nil, quietLogger())
	now := time.Now()

	h.Append(testEvent("old", models.SeverityLow, now.Add(-48*time.Hour)))
	h.Append(testEvent("crit-1", models.SeverityCritical, now.Add(-time.Hour)))
	h.Append(testEvent("crit-2", models.SeverityCritical, now.Add(-time.Minute)))
	h.Append(testEvent("high-1", models.SeverityHigh, now))

	stats := h.statistics(7, 2, now)
	if stats.TotalRules != 7 || stats.ActiveAlertCount != 2 {
		t.Fatalf("rule counters not carried through: %+v", stats)
	}
	if stats.TotalEvents != 4 {
		t.Fatalf("total events = %d, want 4", stats.TotalEvents)
	}
	if stats.EventsLast24h != 3 {
		t.Fatalf("events last 24h = %d, want 3", stats.EventsLast24h)
	}

	wantDist := map[models.Severity]int{
		models.SeverityLow:      1,
		models.SeverityCritical: 2,
		models.SeverityHigh:     1,
	}
	if diff := cmp.Diff(wantDist, stats.SeverityDistribution); diff != "" {
		t.Fatalf("severity distribution mismatch (-want +got):\n%s", diff)
	}
}
