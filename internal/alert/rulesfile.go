package alert

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/neoforge-dev/synapse-sub010/internal/models"
	"gopkg.in/yaml.v3"
)

// RuleSpec is the serializable form of a threshold rule, shared by the
// JSON/YAML rule files and the HTTP API. Custom rules carry code and
// cannot round-trip through it.
type RuleSpec struct {
	Name               string                      `json:"name" yaml:"name"`
	Description        string                      `json:"description" yaml:"description"`
	Metric             string                      `json:"metric" yaml:"metric"`
	Operator           models.Operator             `json:"operator" yaml:"operator"`
	Threshold          float64                     `json:"threshold" yaml:"threshold"`
	DurationSeconds    int                         `json:"duration_seconds" yaml:"duration_seconds"`
	IntervalSeconds    int                         `json:"interval_seconds" yaml:"interval_seconds"`
	Severity           models.Severity             `json:"severity" yaml:"severity"`
	Tags               []string                    `json:"tags,omitempty" yaml:"tags,omitempty"`
	Targets            []models.NotificationTarget `json:"targets,omitempty" yaml:"targets,omitempty"`
	AutoResolveSeconds int                         `json:"auto_resolve_seconds,omitempty" yaml:"auto_resolve_seconds,omitempty"`
}

func (s RuleSpec) ToRule() *models.AlertRule {
	return &models.AlertRule{
		Condition: models.Condition{
			Name:               s.Name,
			Description:        s.Description,
			Kind:               models.ConditionThreshold,
			Metric:             s.Metric,
			Operator:           s.Operator,
			Threshold:          s.Threshold,
			DurationBeforeFire: time.Duration(s.DurationSeconds) * time.Second,
			EvaluationInterval: time.Duration(s.IntervalSeconds) * time.Second,
		},
		Severity:         s.Severity,
		Tags:             s.Tags,
		Targets:          s.Targets,
		AutoResolveAfter: time.Duration(s.AutoResolveSeconds) * time.Second,
	}
}

// SpecFromRule flattens a threshold rule; it fails for custom rules.
func SpecFromRule(rule models.AlertRule) (RuleSpec, error) {
	if rule.Condition.Kind != models.ConditionThreshold {
		return RuleSpec{}, fmt.Errorf("rule %q is not a threshold rule", rule.Name())
	}
	return RuleSpec{
		Name:               rule.Condition.Name,
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
	}, nil
}

// ImportRulesFromFile loads threshold rules from a .json, .yaml, or
// .yml file and registers each through the engine, so they get the
// same validation as rules registered in code.
func (e *Engine) ImportRulesFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read rules file: %v", err)
	}

	var specs []RuleSpec
	switch ext := filepath.Ext(filename); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &specs)
	case ".json":
		err = json.Unmarshal(data, &specs)
	default:
		return fmt.Errorf("unsupported rules file extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to parse rules file: %v", err)
	}

	for _, spec := range specs {
		if err := e.RegisterRule(spec.ToRule()); err != nil {
			return fmt.Errorf("failed to import rule %q: %v", spec.Name, err)
		}
	}
	return nil
}

// ExportRulesToFile writes every threshold rule to a .json, .yaml, or
// .yml file. Custom rules are skipped.
func (e *Engine) ExportRulesToFile(filename string) error {
	var specs []RuleSpec
	for _, rule := range e.ListRules() {
		spec, err := SpecFromRule(rule)
		if err != nil {
			continue
		}
		specs = append(specs, spec)
	}

	var (
		data []byte
		err  error
	)
	switch ext := filepath.Ext(filename); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(specs)
	case ".json":
		data, err = json.MarshalIndent(specs, "", "  ")
	default:
		return fmt.Errorf("unsupported rules file extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %v", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write rules file: %v", err)
	}
	return nil
}
