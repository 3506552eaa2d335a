package alert

import (
	"errors"
	"testing"

	"github.com/neoforge-dev/synapse-sub010/internal/models"
)

func TestEvaluateCondition_Operators(t *testing.T) {
	snapshot := map[string]float64{"value": 10}

	cases := []struct {
		op        models.Operator
		threshold float64
		want      bool
	}{
		{models.OperatorGT, 5, true},
		{models.OperatorGT, 10, false},
		{models.OperatorLT, 15, true},
		{models.OperatorLT, 10, false},
		{models.OperatorGTE, 10, true},
		{models.OperatorGTE, 11, false},
		{models.OperatorLTE, 10, true},
		{models.OperatorLTE, 9, false},
		{models.OperatorEQ, 10, true},
		{models.OperatorEQ, 9, false},
	}
	for _, tc := range cases {
		c := models.Condition{
			Name:      "op_check",
			Kind:      models.ConditionThreshold,
			Metric:    "value",
			Operator:  tc.op,
			Threshold: tc.threshold,
		}
		got, err := EvaluateCondition(c, snapshot)
		if err != nil {
			t.Fatalf("10 %s %v: unexpected error %v", tc.op, tc.threshold, err)
		}
		if got != tc.want {
			t.Fatalf("10 %s %v = %v, want %v", tc.op, tc.threshold, got, tc.want)
		}
	}
}

func TestEvaluateCondition_MissingMetricIsFalse(t *testing.T) {
	c := models.Condition{
		Name:      "missing",
		Kind:      models.ConditionThreshold,
		Metric:    "not_recorded_yet",
		Operator:  models.OperatorGT,
		Threshold: 0,
	}
	got, err := EvaluateCondition(c, map[string]float64{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Fatal("condition on a missing metric must evaluate false")
	}
}

func TestEvaluateCondition_CustomPredicate(t *testing.T) {
	c := models.Condition{
		Name: "custom",
		Kind: models.ConditionCustom,
		Predicate: func(snapshot map[string]float64) (bool, error) {
			return snapshot["a"]+snapshot["b"] > 10, nil
		},
	}
	got, err := EvaluateCondition(c, map[string]float64{"a": 6, "b": 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Fatal("expected predicate to fire")
	}
}

func TestEvaluateCondition_CustomError(t *testing.T) {
	wantErr := errors.New("backing store unavailable")
	c := models.Condition{
		Name: "broken",
		Kind: models.ConditionCustom,
		Predicate: func(map[string]float64) (bool, error) {
			return false, wantErr
		},
	}
	if _, err := EvaluateCondition(c, nil); !errors.Is(err, wantErr) {
		t.Fatalf("expected predicate error to surface, got %v", err)
	}
}

func TestValidateCondition(t *testing.T) {
	cases := []struct {
		name    string
		cond    models.Condition
		wantErr bool
	}{
		{
			name: "valid threshold",
			cond: models.Condition{Name: "ok", Kind: models.ConditionThreshold, Metric: "m", Operator: models.OperatorGT},
		},
		{
			name:    "threshold without metric",
			cond:    models.Condition{Name: "bad", Kind: models.ConditionThreshold, Operator: models.OperatorGT},
			wantErr: true,
		},
		{
			name:    "threshold with bogus operator",
			cond:    models.Condition{Name: "bad", Kind: models.ConditionThreshold, Metric: "m", Operator: "~="},
			wantErr: true,
		},
		{
			name:    "custom without predicate",
			cond:    models.Condition{Name: "bad", Kind: models.ConditionCustom},
			wantErr: true,
		},
		{
			name:    "unnamed",
			cond:    models.Condition{Kind: models.ConditionThreshold, Metric: "m", Operator: models.OperatorGT},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			cond:    models.Condition{Name: "bad", Kind: "anomaly"},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCondition(tc.cond)
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
