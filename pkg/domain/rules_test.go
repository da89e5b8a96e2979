package domain

import (
	"context"
	"testing"
)

type stubRule struct {
	name   string
	result Result
	err    error
}

func (r stubRule) Name() string { return r.name }

func (r stubRule) Evaluate(context.Context, TransactionView, []Change) (Result, error) {
	return r.result, r.err
}

func TestRulesEngineAggregatesResults(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(stubRule{name: "warn", result: Result{Violations: []Violation{{Rule: "warn", Severity: SeverityWarn}}}})
	engine.Register(stubRule{name: "block", result: Result{Violations: []Violation{{Rule: "block", Severity: SeverityBlock}}}})

	res, err := engine.Evaluate(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(res.Violations))
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result")
	}
}

func TestResultHasBlockingFalseForWarnings(t *testing.T) {
	res := Result{Violations: []Violation{{Severity: SeverityWarn}, {Severity: SeverityLog}}}
	if res.HasBlocking() {
		t.Fatalf("warnings should not block")
	}
}

func TestRuleViolationErrorMessage(t *testing.T) {
	err := RuleViolationError{}
	if err.Error() != "transaction blocked by rules" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
