package domain

import "fmt"

// DefaultLengthTolerance is the fractional deviation a sequence length may
// show from its segment's reference length before assignment is rejected.
const DefaultLengthTolerance = 0.03

// SegmentRule states how strictly a plan segment must be satisfied.
type SegmentRule string

// Segment requirement rules.
const (
	// SegmentRuleRequired segments must be present in every isolate.
	SegmentRuleRequired SegmentRule = "required"
	// SegmentRuleRecommended segments should be present but their absence
	// does not fail assignment.
	SegmentRuleRecommended SegmentRule = "recommended"
	// SegmentRuleOptional segments may be freely absent.
	SegmentRuleOptional SegmentRule = "optional"
)

// Segment describes one expected genome part in a plan.
type Segment struct {
	ID              string      `json:"id"`
	Name            SegmentName `json:"name,omitzero"`
	Length          int         `json:"length"`
	LengthTolerance float64     `json:"length_tolerance"`
	Rule            SegmentRule `json:"rule"`
}

// LengthBounds returns the inclusive interval a matched sequence length
// must fall within.
func (s Segment) LengthBounds() (min, max float64) {
	return float64(s.Length) * (1.0 - s.LengthTolerance),
		float64(s.Length) * (1.0 + s.LengthTolerance)
}

// AcceptsLength reports whether length falls within the segment's
// tolerance bounds.
func (s Segment) AcceptsLength(length int) bool {
	min, max := s.LengthBounds()
	return float64(length) >= min && float64(length) <= max
}

// Plan is the ordered description of a genome's expected segments. A plan
// is created once per OTU and is immutable thereafter: segments may be
// appended in later revisions but existing segment identities never change.
type Plan struct {
	ID       string    `json:"id"`
	Segments []Segment `json:"segments"`
}

// Monopartite reports whether the plan expects a single-segment genome.
func (p Plan) Monopartite() bool {
	return len(p.Segments) == 1
}

// SegmentWithName returns the plan segment carrying the given name.
func (p Plan) SegmentWithName(name SegmentName) (Segment, bool) {
	for _, s := range p.Segments {
		if s.Name == name {
			return s, true
		}
	}
	return Segment{}, false
}

// Clone returns a deep copy of the plan.
func (p Plan) Clone() Plan {
	cp := p
	cp.Segments = append([]Segment(nil), p.Segments...)
	return cp
}

// Validate checks the plan invariants: at least one segment, positive
// lengths, tolerances within [0, 1], unique names ordered ascending by
// (prefix, key), and the unnamed name only on a single-segment plan.
func (p Plan) Validate() error {
	if len(p.Segments) == 0 {
		return fmt.Errorf("plan has no segments")
	}
	seen := make(map[SegmentName]struct{}, len(p.Segments))
	for i, s := range p.Segments {
		if s.Length <= 0 {
			return fmt.Errorf("segment %s has non-positive length %d", s.Name, s.Length)
		}
		if s.LengthTolerance < 0 || s.LengthTolerance > 1 {
			return fmt.Errorf("segment %s has tolerance %v outside [0, 1]", s.Name, s.LengthTolerance)
		}
		if !s.Name.IsNamed() && len(p.Segments) > 1 {
			return fmt.Errorf("unnamed segment in a multipartite plan")
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("duplicate segment name %s", s.Name)
		}
		seen[s.Name] = struct{}{}
		if i > 0 && CompareSegmentNames(p.Segments[i-1].Name, s.Name) >= 0 {
			return fmt.Errorf("segments not ordered by name at %s", s.Name)
		}
	}
	return nil
}
