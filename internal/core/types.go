// Package core implements the reference curation engine: plan inference,
// segment assignment, isolate grouping, authority resolution, and OTU
// assembly. Every stage is a pure function of its inputs.
package core

import "refcore/pkg/domain"

type (
	Record       = domain.Record
	SegmentName  = domain.SegmentName
	Segment      = domain.Segment
	Plan         = domain.Plan
	IsolateKey   = domain.IsolateKey
	IsolateSet   = domain.IsolateSet
	AccessionSet = domain.AccessionSet
	Molecule     = domain.Molecule
	Schema       = domain.Schema
	Sequence     = domain.Sequence
	OTU          = domain.OTU
	Result       = domain.Result
	Violation    = domain.Violation
	Change       = domain.Change
	RulesEngine  = domain.RulesEngine
)

const (
	SegmentRuleRequired    = domain.SegmentRuleRequired
	SegmentRuleRecommended = domain.SegmentRuleRecommended
	SegmentRuleOptional    = domain.SegmentRuleOptional
)
