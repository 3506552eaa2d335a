package alert

import (
	"time"

	"github.com/neoforge-dev/synapse-sub010/internal/metrics"
	"github.com/neoforge-dev/synapse-sub010/internal/models"
)

// DefaultRules builds the starter rule set over the built-in series.
// Latency rules average the retained window rather than comparing the
// latest sample, so they are custom conditions and stay code-defined.
func DefaultRules(registry *metrics.Registry) []*models.AlertRule {
	logTarget := []models.NotificationTarget{
		{Channel: "log", Enabled: true},
	}

	avgAbove := func(series string, threshold float64) func(map[string]float64) (bool, error) {
		return func(map[string]float64) (bool, error) {
			return registry.AverageOverWindow(series) > threshold, nil
		}
	}

	return []*models.AlertRule{
		{
			Condition: models.Condition{
				Name:               "high_error_rate",
				Description:        "Error rate above 10% for one minute",
				Kind:               models.ConditionThreshold,
				Metric:             metrics.SeriesErrorRatePercent,
				Operator:           models.OperatorGT,
				Threshold:          10,
				DurationBeforeFire: time.Minute,
				EvaluationInterval: 30 * time.Second,
			},
			Severity:         models.SeverityHigh,
			Tags:             []string{"availability"},
			Targets:          logTarget,
			AutoResolveAfter: time.Hour,
		},
		{
			Condition: models.Condition{
				Name:               "critical_error_rate",
				Description:        "Error rate above 25%",
				Kind:               models.ConditionThreshold,
				Metric:             metrics.SeriesErrorRatePercent,
				Operator:           models.OperatorGT,
				Threshold:          25,
				DurationBeforeFire: 30 * time.Second,
				EvaluationInterval: 30 * time.Second,
			},
			Severity:         models.SeverityCritical,
			Tags:             []string{"availability"},
			Targets:          logTarget,
			AutoResolveAfter: time.Hour,
		},
		{
			Condition: models.Condition{
				Name:               "slow_requests",
				Description:        "Mean request latency above 5s",
				Kind:               models.ConditionCustom,
				Threshold:          5,
				Predicate:          avgAbove(metrics.SeriesRequestDurationSeconds, 5),
				DurationBeforeFire: 2 * time.Minute,
				EvaluationInterval: time.Minute,
			},
			Severity:         models.SeverityMedium,
			Tags:             []string{"latency"},
			Targets:          logTarget,
			AutoResolveAfter: 2 * time.Hour,
		},
		{
			Condition: models.Condition{
				Name:               "slow_search",
				Description:        "Mean search latency above 3s",
				Kind:               models.ConditionCustom,
				Threshold:          3,
				Predicate:          avgAbove(metrics.SeriesSearchDurationSeconds, 3),
				DurationBeforeFire: 2 * time.Minute,
				EvaluationInterval: time.Minute,
			},
			Severity:         models.SeverityMedium,
			Tags:             []string{"latency", "search"},
			Targets:          logTarget,
			AutoResolveAfter: 2 * time.Hour,
		},
	}
}
