package domain

import "testing"

func TestSegmentNameString(t *testing.T) {
	cases := []struct {
		name SegmentName
		want string
	}{
		{NewSegmentName("DNA", "A"), "DNA A"},
		{NewSegmentName("RNA", "N5"), "RNA N5"},
		{NewSegmentName("", "L"), "L"},
		{SegmentName{}, "unnamed"},
	}
	for _, tc := range cases {
		if got := tc.name.String(); got != tc.want {
			t.Fatalf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestSegmentNameIsNamed(t *testing.T) {
	if (SegmentName{}).IsNamed() {
		t.Fatalf("zero value should not be named")
	}
	if !NewSegmentName("DNA", "R").IsNamed() {
		t.Fatalf("DNA R should be named")
	}
}

func TestCompareSegmentNames(t *testing.T) {
	a := NewSegmentName("DNA", "A")
	b := NewSegmentName("DNA", "B")
	r := NewSegmentName("RNA", "A")

	if CompareSegmentNames(a, b) >= 0 {
		t.Fatalf("DNA A should sort before DNA B")
	}
	if CompareSegmentNames(b, r) >= 0 {
		t.Fatalf("DNA B should sort before RNA A")
	}
	if CompareSegmentNames(a, a) != 0 {
		t.Fatalf("equal names should compare 0")
	}
	if CompareSegmentNames(SegmentName{}, a) >= 0 {
		t.Fatalf("unnamed should sort before named")
	}
}

func TestCompareIsolateKeys(t *testing.T) {
	a := IsolateKey{Type: IsolateTypeIsolate, Value: "8"}
	b := IsolateKey{Type: IsolateTypeStrain, Value: "8"}
	c := IsolateKey{Type: IsolateTypeIsolate, Value: "Canada-1"}

	if CompareIsolateKeys(a, b) >= 0 {
		t.Fatalf("isolate should sort before strain")
	}
	if CompareIsolateKeys(a, c) >= 0 {
		t.Fatalf("isolate 8 should sort before isolate Canada-1")
	}
	if CompareIsolateKeys(b, b) != 0 {
		t.Fatalf("equal keys should compare 0")
	}
}
