package core

import (
	"fmt"
	"sort"

	"refcore/pkg/domain"
)

// Assign maps each plan segment name to the single record that satisfies
// it. Matching is by (prefix, key) equality; a monopartite plan with an
// unnamed segment accepts any record regardless of its segment name.
// Record segment names absent from the plan fail with a single
// UnmatchedSegmentNameError enumerating every offending name. A required
// segment with no matching record fails; optional and recommended
// segments are simply absent from the result.
func Assign(records []Record, plan Plan) (map[SegmentName]Record, error) {
	return matchRecords(records, plan, true)
}

// matchRecords implements assignment. When requireAll is false the
// completeness and duplicate checks are skipped, which is the mode used
// for incremental updates where the authority resolver reconciles
// competing records instead.
func matchRecords(records []Record, plan Plan, requireAll bool) (map[SegmentName]Record, error) {
	if err := domain.ValidateRecords(records); err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	ordered := append([]Record(nil), records...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].AccessionVersion < ordered[j].AccessionVersion })

	if plan.Monopartite() && !plan.Segments[0].Name.IsNamed() {
		return matchUnnamed(ordered, plan.Segments[0], requireAll)
	}

	var unmatched []SegmentName
	for _, r := range ordered {
		if !r.Segment.IsNamed() {
			return nil, domain.InvalidRecordError{Accession: r.Accession, Reason: "record has no segment name"}
		}
		if _, ok := plan.SegmentWithName(r.Segment); !ok {
			unmatched = append(unmatched, r.Segment)
		}
	}
	if len(unmatched) > 0 {
		return nil, domain.NewUnmatchedSegmentNameError(unmatched)
	}

	result := make(map[SegmentName]Record, len(ordered))
	for _, r := range ordered {
		segment, _ := plan.SegmentWithName(r.Segment)
		if !segment.AcceptsLength(r.Length) {
			min, max := segment.LengthBounds()
			return nil, domain.SegmentLengthOutOfToleranceError{
				Accession: r.AccessionVersion,
				Length:    r.Length,
				MinLength: min,
				MaxLength: max,
			}
		}
		if prev, dup := result[r.Segment]; dup {
			if !requireAll {
				continue
			}
			return nil, domain.AmbiguousSegmentError{
				Name:   r.Segment,
				Reason: fmt.Sprintf("claimed by both %s and %s", prev.AccessionVersion, r.AccessionVersion),
			}
		}
		result[r.Segment] = r
	}

	if requireAll {
		for _, segment := range plan.Segments {
			if _, ok := result[segment.Name]; !ok && segment.Rule == SegmentRuleRequired {
				return nil, domain.MissingRequiredSegmentError{Name: segment.Name}
			}
		}
	}
	return result, nil
}

func matchUnnamed(ordered []Record, segment Segment, requireAll bool) (map[SegmentName]Record, error) {
	if len(ordered) == 0 {
		if requireAll && segment.Rule == SegmentRuleRequired {
			return nil, domain.MissingRequiredSegmentError{Name: segment.Name}
		}
		return map[SegmentName]Record{}, nil
	}
	if len(ordered) > 1 && requireAll {
		return nil, domain.AmbiguousSegmentError{
			Reason: fmt.Sprintf("%d records compete for the single plan segment", len(ordered)),
		}
	}
	for _, r := range ordered {
		if !segment.AcceptsLength(r.Length) {
			min, max := segment.LengthBounds()
			return nil, domain.SegmentLengthOutOfToleranceError{
				Accession: r.AccessionVersion,
				Length:    r.Length,
				MinLength: min,
				MaxLength: max,
			}
		}
	}
	return map[SegmentName]Record{segment.Name: ordered[0]}, nil
}
