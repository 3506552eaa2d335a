package alert

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/neoforge-dev/synapse-sub010/internal/metrics"
	"github.com/neoforge-dev/synapse-sub010/internal/models"
)

func TestRulesFile_YAMLRoundTrip(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	rule := thresholdRule("exported", metrics.SeriesErrorRatePercent, 12.5, 2*time.Minute)
	rule.Condition.EvaluationInterval = time.Minute
	rule.AutoResolveAfter = time.Hour
	rule.Targets = []models.NotificationTarget{
		{Channel: "log", Enabled: true, Config: map[string]string{"level": "error"}},
	}
	if err := engine.RegisterRule(rule); err != nil {
		t.Fatalf("failed to register rule: %v", err)
	}

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := engine.ExportRulesToFile(path); err != nil {
		t.Fatalf("failed to export rules: %v", err)
	}

	restored, _, _ := newTestEngine(t)
	if err := restored.ImportRulesFromFile(path); err != nil {
		t.Fatalf("failed to import rules: %v", err)
	}

	orig := engine.ListRules()
	got := restored.ListRules()
	if len(got) != 1 {
		t.Fatalf("imported %d rules, want 1", len(got))
	}

	wantSpec, err := SpecFromRule(orig[0])
	if err != nil {
		t.Fatalf("failed to flatten original rule: %v", err)
	}
	gotSpec, err := SpecFromRule(got[0])
	if err != nil {
		t.Fatalf("failed to flatten imported rule: %v", err)
	}
	if diff := cmp.Diff(wantSpec, gotSpec); diff != "" {
		t.Fatalf("rule changed across export/import (-want +got):\n%s", diff)
	}
}

func TestRulesFile_CustomRulesSkippedOnExport(t *testing.T) {
	engine, registry, _ := newTestEngine(t)
	for _, rule := range DefaultRules(registry) {
		if err := engine.RegisterRule(rule); err != nil {
			t.Fatalf("failed to register default rule %q: %v", rule.Name(), err)
		}
	}

	path := filepath.Join(t.TempDir(), "rules.json")
	if err := engine.ExportRulesToFile(path); err != nil {
		t.Fatalf("failed to export rules: %v", err)
	}

	restored, _, _ := newTestEngine(t)
	if err := restored.ImportRulesFromFile(path); err != nil {
		t.Fatalf("failed to import rules: %v", err)
	}

	// Only the threshold defaults survive the round trip.
	for _, rule := range restored.ListRules() {
		if rule.Condition.Kind != models.ConditionThreshold {
			t.Fatalf("imported non-threshold rule %q", rule.Name())
		}
	}
	if got := len(restored.ListRules()); got != 2 {
		t.Fatalf("imported %d rules, want the 2 threshold defaults", got)
	}
}

func TestRulesFile_UnsupportedExtension(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	if err := engine.ExportRulesToFile(filepath.Join(t.TempDir(), "rules.toml")); err == nil {
		t.Fatal("expected unsupported extension to fail")
	}
	if err := engine.ImportRulesFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing file to fail")
	}
}
