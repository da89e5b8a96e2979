package domain

import "testing"

func TestUnmatchedSegmentNameErrorMessage(t *testing.T) {
	err := NewUnmatchedSegmentNameError([]SegmentName{
		NewSegmentName("RNA", "N5"),
		NewSegmentName("DNA", "G"),
		NewSegmentName("DNA", "G"),
	})
	want := "Segment names not found in plan: DNA G, RNA N5."
	if got := err.Error(); got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
	if len(err.Names) != 2 {
		t.Fatalf("expected deduplicated names, got %d", len(err.Names))
	}
}

func TestSegmentLengthOutOfToleranceErrorMessage(t *testing.T) {
	err := SegmentLengthOutOfToleranceError{
		Accession: "AF304460.1",
		Length:    900,
		MinLength: 970.0,
		MaxLength: 1030.0,
	}
	want := "sequence AF304460.1 length 900 is outside of tolerance bounds [970.0, 1030.0]"
	if got := err.Error(); got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}

func TestInvalidRecordErrorMessage(t *testing.T) {
	withAccession := InvalidRecordError{Accession: "AF304460", Reason: "missing sequence length"}
	if got := withAccession.Error(); got != "invalid record AF304460: missing sequence length" {
		t.Fatalf("unexpected message %q", got)
	}
	anonymous := InvalidRecordError{Reason: "no records to build a plan from"}
	if got := anonymous.Error(); got != "invalid record: no records to build a plan from" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestAmbiguousSegmentErrorMessage(t *testing.T) {
	named := AmbiguousSegmentError{Name: NewSegmentName("DNA", "R"), Reason: "claimed by both AF304460.1 and AF304461.1"}
	if got := named.Error(); got != "ambiguous segment DNA R: claimed by both AF304460.1 and AF304461.1" {
		t.Fatalf("unexpected message %q", got)
	}
	unnamed := AmbiguousSegmentError{Reason: "2 records compete for the single plan segment"}
	if got := unnamed.Error(); got != "ambiguous segment: 2 records compete for the single plan segment" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestMissingRequiredSegmentErrorMessage(t *testing.T) {
	err := MissingRequiredSegmentError{Name: NewSegmentName("DNA", "B")}
	if got := err.Error(); got != `required segment "DNA B" has no matching record` {
		t.Fatalf("unexpected message %q", got)
	}
}
