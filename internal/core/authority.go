package core

import "refcore/pkg/domain"

type authorityGroup struct {
	isolate IsolateKey
	segment SegmentName
}

// ResolveAuthority decides, within each (isolate, segment) group, which
// single record is authoritative and returns the accession versions of
// every other record for exclusion. Authoritative (RefSeq-equivalent)
// records win outright; among several or none, the higher accession
// revision wins, with the lexicographically greater accession version as
// the final tie-break. Singleton groups exclude nothing.
func ResolveAuthority(records []Record) AccessionSet {
	groups := make(map[authorityGroup][]Record)
	for _, r := range records {
		key := authorityGroup{isolate: r.Isolate, segment: r.Segment}
		groups[key] = append(groups[key], r)
	}

	excluded := make(AccessionSet)
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		keeper := members[0]
		for _, candidate := range members[1:] {
			if outranks(candidate, keeper) {
				keeper = candidate
			}
		}
		for _, r := range members {
			if r.AccessionVersion != keeper.AccessionVersion {
				excluded.Add(r.AccessionVersion)
			}
		}
	}
	return excluded
}

// outranks reports whether a should be kept in preference to b. The order
// is total over distinct accession versions, so resolution never depends
// on input order.
func outranks(a, b Record) bool {
	if a.Authoritative != b.Authoritative {
		return a.Authoritative
	}
	va, vb := domain.AccessionVersionNumber(a.AccessionVersion), domain.AccessionVersionNumber(b.AccessionVersion)
	if va != vb {
		return va > vb
	}
	return a.AccessionVersion > b.AccessionVersion
}
