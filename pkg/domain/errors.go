package domain

import (
	"fmt"
	"sort"
	"strings"
)

// InvalidRecordError reports a fetched record missing data the engine
// depends on.
type InvalidRecordError struct {
	Accession string
	Reason    string
}

func (e InvalidRecordError) Error() string {
	if e.Accession == "" {
		return fmt.Sprintf("invalid record: %s", e.Reason)
	}
	return fmt.Sprintf("invalid record %s: %s", e.Accession, e.Reason)
}

// AmbiguousSegmentError reports records that disagree on segment identity
// in a way that cannot be resolved into one group per name.
type AmbiguousSegmentError struct {
	Name   SegmentName
	Reason string
}

func (e AmbiguousSegmentError) Error() string {
	if !e.Name.IsNamed() {
		return fmt.Sprintf("ambiguous segment: %s", e.Reason)
	}
	return fmt.Sprintf("ambiguous segment %s: %s", e.Name, e.Reason)
}

// UnmatchedSegmentNameError reports every record segment name absent from
// the plan. Names is sorted by (prefix, key) and deduplicated; the message
// enumerates all offending names in a single failure.
type UnmatchedSegmentNameError struct {
	Names []SegmentName
}

// NewUnmatchedSegmentNameError sorts and deduplicates the offending names.
func NewUnmatchedSegmentNameError(names []SegmentName) UnmatchedSegmentNameError {
	seen := make(map[SegmentName]struct{}, len(names))
	unique := make([]SegmentName, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		unique = append(unique, n)
	}
	sort.Slice(unique, func(i, j int) bool { return CompareSegmentNames(unique[i], unique[j]) < 0 })
	return UnmatchedSegmentNameError{Names: unique}
}

func (e UnmatchedSegmentNameError) Error() string {
	rendered := make([]string, len(e.Names))
	for i, n := range e.Names {
		rendered[i] = n.String()
	}
	return "Segment names not found in plan: " + strings.Join(rendered, ", ") + "."
}

// SegmentLengthOutOfToleranceError reports a record whose length falls
// outside its matched segment's tolerance bounds.
type SegmentLengthOutOfToleranceError struct {
	Accession string
	Length    int
	MinLength float64
	MaxLength float64
}

func (e SegmentLengthOutOfToleranceError) Error() string {
	return fmt.Sprintf(
		"sequence %s length %d is outside of tolerance bounds [%.1f, %.1f]",
		e.Accession, e.Length, e.MinLength, e.MaxLength,
	)
}

// MissingRequiredSegmentError reports a required plan segment with no
// matching record.
type MissingRequiredSegmentError struct {
	Name SegmentName
}

func (e MissingRequiredSegmentError) Error() string {
	return fmt.Sprintf("required segment %q has no matching record", e.Name)
}
