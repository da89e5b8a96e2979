package core

import "refcore/pkg/domain"

// rec builds a record for an isolate named by a bare value of type
// "isolate". Segment name is "prefix key" split on the first space, or
// unnamed when empty.
func rec(accessionVersion string, length int, segment, isolate string) Record {
	return Record{
		Accession:        domain.AccessionKey(accessionVersion),
		AccessionVersion: accessionVersion,
		Length:           length,
		Segment:          segName(segment),
		Isolate:          domain.IsolateKey{Type: domain.IsolateTypeIsolate, Value: isolate},
	}
}

func segName(s string) SegmentName {
	if s == "" {
		return SegmentName{}
	}
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return domain.NewSegmentName(s[:i], s[i+1:])
		}
	}
	return domain.NewSegmentName("", s)
}

func authoritative(r Record, comment string) Record {
	r.Authoritative = true
	r.Comment = comment
	return r
}
