package core

import (
	"errors"
	"testing"

	"refcore/pkg/domain"
)

func babuvirusPlan() Plan {
	return Plan{
		ID: "plan-1",
		Segments: []Segment{
			{ID: "seg-a", Name: segName("DNA A"), Length: 2575, LengthTolerance: domain.DefaultLengthTolerance, Rule: SegmentRuleRequired},
			{ID: "seg-b", Name: segName("DNA B"), Length: 2494, LengthTolerance: domain.DefaultLengthTolerance, Rule: SegmentRuleRequired},
		},
	}
}

func monopartitePlan(length int) Plan {
	return Plan{
		ID: "plan-mono",
		Segments: []Segment{
			{ID: "seg-0", Length: length, LengthTolerance: domain.DefaultLengthTolerance, Rule: SegmentRuleRequired},
		},
	}
}

func TestAssignMultipartite(t *testing.T) {
	records := []Record{
		rec("NC_024301.1", 2575, "DNA A", "8"),
		rec("NC_024302.1", 2494, "DNA B", "8"),
	}
	assigned, err := Assign(records, babuvirusPlan())
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if len(assigned) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(assigned))
	}
	if assigned[segName("DNA A")].AccessionVersion != "NC_024301.1" {
		t.Fatalf("DNA A assigned %s", assigned[segName("DNA A")].AccessionVersion)
	}
	if assigned[segName("DNA B")].AccessionVersion != "NC_024302.1" {
		t.Fatalf("DNA B assigned %s", assigned[segName("DNA B")].AccessionVersion)
	}
}

func TestAssignCollectsAllUnmatchedNames(t *testing.T) {
	records := []Record{
		rec("X00001.1", 2575, "DNA A", "8"),
		rec("X00002.1", 2500, "RNA N5", "8"),
		rec("X00003.1", 2500, "DNA G", "8"),
	}
	_, err := Assign(records, babuvirusPlan())
	var unmatched domain.UnmatchedSegmentNameError
	if !errors.As(err, &unmatched) {
		t.Fatalf("expected UnmatchedSegmentNameError, got %v", err)
	}
	want := "Segment names not found in plan: DNA G, RNA N5."
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestAssignRejectsLengthOutOfTolerance(t *testing.T) {
	records := []Record{
		rec("X00001.1", 2400, "DNA A", "8"), // below 2575*0.97
		rec("X00002.1", 2494, "DNA B", "8"),
	}
	_, err := Assign(records, babuvirusPlan())
	var tolerance domain.SegmentLengthOutOfToleranceError
	if !errors.As(err, &tolerance) {
		t.Fatalf("expected SegmentLengthOutOfToleranceError, got %v", err)
	}
	if tolerance.Accession != "X00001.1" {
		t.Fatalf("accession = %s, want X00001.1", tolerance.Accession)
	}
}

func TestAssignRejectsMissingRequiredSegment(t *testing.T) {
	records := []Record{
		rec("X00001.1", 2575, "DNA A", "8"),
	}
	_, err := Assign(records, babuvirusPlan())
	var missing domain.MissingRequiredSegmentError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingRequiredSegmentError, got %v", err)
	}
	if missing.Name != segName("DNA B") {
		t.Fatalf("missing segment = %s, want DNA B", missing.Name)
	}
}

func TestAssignAllowsMissingOptionalSegment(t *testing.T) {
	plan := babuvirusPlan()
	plan.Segments[1].Rule = SegmentRuleOptional
	records := []Record{
		rec("X00001.1", 2575, "DNA A", "8"),
	}
	assigned, err := Assign(records, plan)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if len(assigned) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(assigned))
	}
}

func TestAssignRejectsDuplicateClaims(t *testing.T) {
	records := []Record{
		rec("X00001.1", 2575, "DNA A", "8"),
		rec("X00002.1", 2560, "DNA A", "8"),
		rec("X00003.1", 2494, "DNA B", "8"),
	}
	_, err := Assign(records, babuvirusPlan())
	var ambiguous domain.AmbiguousSegmentError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected AmbiguousSegmentError, got %v", err)
	}
	if ambiguous.Name != segName("DNA A") {
		t.Fatalf("ambiguous segment = %s, want DNA A", ambiguous.Name)
	}
}

func TestAssignMonopartiteIgnoresRecordName(t *testing.T) {
	plan := monopartitePlan(7424)
	records := []Record{rec("NC_003355.1", 7424, "", "TW")}
	assigned, err := Assign(records, plan)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned[SegmentName{}].AccessionVersion != "NC_003355.1" {
		t.Fatalf("unexpected assignment %v", assigned)
	}
}

func TestAssignMonopartiteRejectsCompetingRecords(t *testing.T) {
	plan := monopartitePlan(7424)
	records := []Record{
		rec("X00001.1", 7424, "", "a"),
		rec("X00002.1", 7410, "", "a"),
	}
	_, err := Assign(records, plan)
	var ambiguous domain.AmbiguousSegmentError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected AmbiguousSegmentError, got %v", err)
	}
}

func TestAssignRejectsUnnamedRecordInNamedPlan(t *testing.T) {
	records := []Record{
		rec("X00001.1", 2575, "", "8"),
		rec("X00002.1", 2494, "DNA B", "8"),
	}
	_, err := Assign(records, babuvirusPlan())
	var invalid domain.InvalidRecordError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidRecordError, got %v", err)
	}
}

func TestPartialMatchSkipsDuplicatesButChecksTolerance(t *testing.T) {
	records := []Record{
		rec("X00001.1", 2575, "DNA A", "8"),
		rec("X00002.1", 2560, "DNA A", "8"),
	}
	if _, err := matchRecords(records, babuvirusPlan(), false); err != nil {
		t.Fatalf("partial mode should tolerate duplicates: %v", err)
	}

	records[1].Length = 2000
	_, err := matchRecords(records, babuvirusPlan(), false)
	var tolerance domain.SegmentLengthOutOfToleranceError
	if !errors.As(err, &tolerance) {
		t.Fatalf("partial mode should still reject out-of-tolerance lengths, got %v", err)
	}
}

func TestAssignDeterministicAcrossInputOrder(t *testing.T) {
	forward := []Record{
		rec("NC_024301.1", 2575, "DNA A", "8"),
		rec("NC_024302.1", 2494, "DNA B", "8"),
	}
	reversed := []Record{forward[1], forward[0]}

	a, err := Assign(forward, babuvirusPlan())
	if err != nil {
		t.Fatalf("assign forward: %v", err)
	}
	b, err := Assign(reversed, babuvirusPlan())
	if err != nil {
		t.Fatalf("assign reversed: %v", err)
	}
	for name, r := range a {
		if b[name].AccessionVersion != r.AccessionVersion {
			t.Fatalf("assignment for %s differs across input order", name)
		}
	}
}
