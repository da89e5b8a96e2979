package core

import (
	"sort"

	"refcore/pkg/domain"
)

// Promote replaces linked sequences that have gained RefSeq equivalents.
// For each authoritative record whose comment names a predecessor
// accession already linked to the OTU, the predecessor is unlinked and
// excluded and the RefSeq record takes its place in the same isolate and
// segment. Returns the new OTU value and the promoted accession versions
// in ascending order.
func Promote(otu OTU, records []Record) (OTU, []string, error) {
	next := otu.Clone()

	ordered := append([]Record(nil), records...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].AccessionVersion < ordered[j].AccessionVersion })

	var promoted []string
	for _, r := range ordered {
		predecessor, ok := refseqPredecessor(r)
		if !ok {
			continue
		}
		if r.Accession == "" || r.AccessionVersion == "" || r.Length <= 0 {
			return OTU{}, nil, domain.InvalidRecordError{Accession: r.Accession, Reason: "incomplete promotion record"}
		}

		replaced := false
		for version, seq := range next.Sequences {
			if domain.AccessionKey(version) != predecessor {
				continue
			}
			segment, found := next.Plan.SegmentWithName(seq.Segment)
			if found && !segment.AcceptsLength(r.Length) {
				min, max := segment.LengthBounds()
				return OTU{}, nil, domain.SegmentLengthOutOfToleranceError{
					Accession: r.AccessionVersion,
					Length:    r.Length,
					MinLength: min,
					MaxLength: max,
				}
			}

			delete(next.Sequences, version)
			if accessions, ok := next.Isolates[seq.Isolate]; ok {
				delete(accessions, version)
			}

			next.Sequences[r.AccessionVersion] = Sequence{
				AccessionVersion: r.AccessionVersion,
				Segment:          seq.Segment,
				Length:           r.Length,
				Authoritative:    true,
				Isolate:          seq.Isolate,
			}
			if accessions, ok := next.Isolates[seq.Isolate]; ok {
				accessions.Add(r.AccessionVersion)
			} else {
				next.Isolates[seq.Isolate] = domain.NewAccessionSet(r.AccessionVersion)
			}
			next.ExcludedAccessions.Add(predecessor)
			replaced = true
			break
		}
		if replaced {
			promoted = append(promoted, r.AccessionVersion)
		}
	}

	sort.Strings(promoted)
	return next, promoted, nil
}
