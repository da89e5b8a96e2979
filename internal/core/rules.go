package core

import (
	"context"
	"fmt"

	"refcore/pkg/domain"
)

// NewDefaultRulesEngine builds a rules engine with the built-in policy set
// evaluated before every store commit.
func NewDefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewExcludedAccessionRule())
	engine.Register(NewPlanIntegrityRule())
	engine.Register(NewRequiredSegmentsRule())
	return engine
}

// ExcludedAccessionRule blocks commits that would leave an excluded
// accession linked to an OTU, by exact version or by accession family.
type ExcludedAccessionRule struct{}

// NewExcludedAccessionRule constructs the rule.
func NewExcludedAccessionRule() ExcludedAccessionRule { return ExcludedAccessionRule{} }

// Name identifies the rule in violation reports.
func (ExcludedAccessionRule) Name() string { return "excluded-accession-linked" }

// Evaluate checks every OTU in the transaction snapshot.
func (r ExcludedAccessionRule) Evaluate(_ context.Context, view domain.TransactionView, _ []Change) (Result, error) {
	var result Result
	for _, otu := range view.ListOTUs() {
		for version := range otu.Sequences {
			if otu.ExcludedAccessions.Has(version) || otu.ExcludedAccessions.Has(domain.AccessionKey(version)) {
				result.Violations = append(result.Violations, Violation{
					Rule:     r.Name(),
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("excluded accession %s is still linked", version),
					Entity:   domain.EntityOTU,
					EntityID: otu.ID,
				})
			}
		}
	}
	return result, nil
}

// RequiredSegmentsRule reports isolates that do not yet cover every
// required segment of their OTU's plan. Warn severity: incremental
// updates add an isolate's segments one fetch at a time, so an
// incomplete isolate is surfaced to the curator without blocking the
// commit that introduces it.
type RequiredSegmentsRule struct{}

// NewRequiredSegmentsRule constructs the rule.
func NewRequiredSegmentsRule() RequiredSegmentsRule { return RequiredSegmentsRule{} }

// Name identifies the rule in violation reports.
func (RequiredSegmentsRule) Name() string { return "required-segments-covered" }

// Evaluate checks every isolate of every OTU in the transaction snapshot.
func (r RequiredSegmentsRule) Evaluate(_ context.Context, view domain.TransactionView, _ []Change) (Result, error) {
	var result Result
	for _, otu := range view.ListOTUs() {
		for _, key := range otu.Isolates.SortedKeys() {
			covered := make(map[SegmentName]struct{})
			for version := range otu.Isolates[key] {
				if seq, ok := otu.Sequences[version]; ok {
					covered[seq.Segment] = struct{}{}
				}
			}
			for _, segment := range otu.Plan.Segments {
				if segment.Rule != SegmentRuleRequired {
					continue
				}
				if _, ok := covered[segment.Name]; ok {
					continue
				}
				result.Violations = append(result.Violations, Violation{
					Rule:     r.Name(),
					Severity: domain.SeverityWarn,
					Message:  fmt.Sprintf("isolate %s does not cover required segment %q", key, segment.Name),
					Entity:   domain.EntityOTU,
					EntityID: otu.ID,
				})
			}
		}
	}
	return result, nil
}

// PlanIntegrityRule blocks commits whose OTUs carry an invalid plan or a
// schema inconsistent with it.
type PlanIntegrityRule struct{}

// NewPlanIntegrityRule constructs the rule.
func NewPlanIntegrityRule() PlanIntegrityRule { return PlanIntegrityRule{} }

// Name identifies the rule in violation reports.
func (PlanIntegrityRule) Name() string { return "plan-integrity" }

// Evaluate checks every OTU in the transaction snapshot.
func (r PlanIntegrityRule) Evaluate(_ context.Context, view domain.TransactionView, _ []Change) (Result, error) {
	var result Result
	for _, otu := range view.ListOTUs() {
		if err := otu.Plan.Validate(); err != nil {
			result.Violations = append(result.Violations, Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  err.Error(),
				Entity:   domain.EntityOTU,
				EntityID: otu.ID,
			})
			continue
		}
		if otu.Schema.Multipartite != (len(otu.Plan.Segments) > 1) {
			result.Violations = append(result.Violations, Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  "schema multipartite flag disagrees with plan segment count",
				Entity:   domain.EntityOTU,
				EntityID: otu.ID,
			})
		}
	}
	return result, nil
}
