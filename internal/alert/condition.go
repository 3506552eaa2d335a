package alert

import (
	"fmt"

	"github.com/neoforge-dev/synapse-sub010/internal/models"
)

// EvaluateCondition runs one condition against the current metric
// snapshot. A threshold condition whose metric has no observations yet
// evaluates to false rather than erroring; the engine treats a returned
// error as "skip this rule for the current tick".
func EvaluateCondition(c models.Condition, snapshot map[string]float64) (bool, error) {
	switch c.Kind {
	case models.ConditionThreshold:
		value, ok := snapshot[c.Metric]
		if !ok {
			return false, nil
		}
		return compare(c.Operator, value, c.Threshold)
	case models.ConditionCustom:
		if c.Predicate == nil {
			return false, fmt.Errorf("custom condition %q has no predicate", c.Name)
		}
		return c.Predicate(snapshot)
	default:
		return false, fmt.Errorf("unknown condition kind %q", c.Kind)
	}
}

func compare(op models.Operator, current, threshold float64) (bool, error) {
	switch op {
	case models.OperatorGT:
		return current > threshold, nil
	case models.OperatorLT:
		return current < threshold, nil
	case models.OperatorGTE:
		return current >= threshold, nil
	case models.OperatorLTE:
		return current <= threshold, nil
	case models.OperatorEQ:
		return current == threshold, nil
	default:
		return false, fmt.Errorf("unknown operator %q", op)
	}
}

// ValidateCondition is checked at rule registration.
func ValidateCondition(c models.Condition) error {
	if c.Name == "" {
		return fmt.Errorf("condition has no name")
	}
	switch c.Kind {
	case models.ConditionThreshold:
		if c.Metric == "" {
			return fmt.Errorf("threshold condition %q has no metric", c.Name)
		}
		if _, err := compare(c.Operator, 0, 0); err != nil {
			return fmt.Errorf("condition %q: %v", c.Name, err)
		}
	case models.ConditionCustom:
		if c.Predicate == nil {
			return fmt.Errorf("custom condition %q has no predicate", c.Name)
		}
	default:
		return fmt.Errorf("condition %q has unknown kind %q", c.Name, c.Kind)
	}
	return nil
}
