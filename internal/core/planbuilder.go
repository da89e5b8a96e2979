package core

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"refcore/pkg/domain"
)

// BuildPlan infers a plan from a set of records. Records are grouped by
// segment name; an all-unnamed set yields a single-segment monopartite
// plan. Each group's reference length is the modal length, biased toward
// the longest on ties. Tolerance defaults to domain.DefaultLengthTolerance
// when non-positive.
func BuildPlan(records []Record, tolerance float64) (Plan, error) {
	if len(records) == 0 {
		return Plan{}, domain.InvalidRecordError{Reason: "no records to build a plan from"}
	}
	if err := domain.ValidateRecords(records); err != nil {
		return Plan{}, err
	}
	if tolerance <= 0 {
		tolerance = domain.DefaultLengthTolerance
	}

	groups := make(map[SegmentName][]int)
	for _, r := range records {
		groups[r.Segment] = append(groups[r.Segment], r.Length)
	}

	if unnamed, ok := groups[SegmentName{}]; ok && len(groups) > 1 {
		return Plan{}, domain.AmbiguousSegmentError{
			Reason: fmt.Sprintf("%d records carry no segment name while others are named", len(unnamed)),
		}
	}

	names := make([]SegmentName, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return domain.CompareSegmentNames(names[i], names[j]) < 0 })

	segments := make([]Segment, 0, len(names))
	for _, name := range names {
		length, err := representativeLength(name, groups[name], tolerance)
		if err != nil {
			return Plan{}, err
		}
		segments = append(segments, Segment{
			ID:              uuid.NewString(),
			Name:            name,
			Length:          length,
			LengthTolerance: tolerance,
			Rule:            SegmentRuleRequired,
		})
	}

	plan := Plan{ID: uuid.NewString(), Segments: segments}
	if err := plan.Validate(); err != nil {
		return Plan{}, fmt.Errorf("inferred plan is invalid: %w", err)
	}
	return plan, nil
}

// representativeLength picks the modal length of a segment group, biased
// toward the longest on ties. Lengths that fall outside the tolerance of
// the representative are only acceptable when a strict majority backs the
// representative; otherwise segment identity is ambiguous.
func representativeLength(name SegmentName, lengths []int, tolerance float64) (int, error) {
	counts := make(map[int]int, len(lengths))
	for _, l := range lengths {
		counts[l]++
	}

	best, bestCount := 0, 0
	for l, c := range counts {
		if c > bestCount || (c == bestCount && l > best) {
			best, bestCount = l, c
		}
	}

	probe := Segment{Length: best, LengthTolerance: tolerance}
	majority := bestCount*2 > len(lengths)
	for _, l := range lengths {
		if !probe.AcceptsLength(l) && !majority {
			return 0, domain.AmbiguousSegmentError{
				Name:   name,
				Reason: fmt.Sprintf("lengths %v cannot be reconciled within tolerance %v", sortedLengths(lengths), tolerance),
			}
		}
	}
	return best, nil
}

func sortedLengths(lengths []int) []int {
	out := append([]int(nil), lengths...)
	sort.Ints(out)
	return out
}
