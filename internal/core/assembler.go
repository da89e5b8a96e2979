package core

import (
	"fmt"

	"github.com/google/uuid"

	"refcore/pkg/domain"
)

// CreateParams carries the inputs for assembling a new OTU.
type CreateParams struct {
	Taxid    int
	Name     string
	Acronym  string
	LegacyID *string
	Molecule Molecule
	// Plan optionally supplies the genome plan. When nil the plan is
	// inferred from Records.
	Plan    *Plan
	Records []Record
	// LengthTolerance overrides the default segment length tolerance used
	// during plan inference. Non-positive means the default.
	LengthTolerance float64
}

// CreateOTU assembles an immutable OTU descriptor from a taxid and an
// initial record set. The stages run in order: plan inference (or the
// supplied plan), segment matching, isolate grouping, and authority
// resolution. Any stage failure aborts with no partial OTU.
func CreateOTU(p CreateParams) (OTU, error) {
	if p.Taxid <= 0 {
		return OTU{}, fmt.Errorf("taxid must be positive, got %d", p.Taxid)
	}
	if len(p.Records) == 0 {
		return OTU{}, domain.InvalidRecordError{Reason: "no records to build an OTU from"}
	}
	if err := domain.ValidateRecords(p.Records); err != nil {
		return OTU{}, err
	}

	var plan Plan
	if p.Plan != nil {
		plan = p.Plan.Clone()
		if err := plan.Validate(); err != nil {
			return OTU{}, fmt.Errorf("supplied plan is invalid: %w", err)
		}
	} else {
		built, err := BuildPlan(p.Records, p.LengthTolerance)
		if err != nil {
			return OTU{}, err
		}
		plan = built
	}

	records := normalizeToPlan(p.Records, plan)

	// Name membership and tolerance are validated across the whole set
	// before grouping; duplicates are reconciled by the resolver, and each
	// isolate's surviving records must then fully satisfy the plan.
	if _, err := matchRecords(records, plan, false); err != nil {
		return OTU{}, err
	}

	excluded := ResolveAuthority(records)
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if !excluded.Has(r.AccessionVersion) {
			kept = append(kept, r)
		}
	}

	isolates := GroupRecords(kept)
	for _, key := range isolates.SortedKeys() {
		var members []Record
		for _, r := range kept {
			if r.Isolate == key {
				members = append(members, r)
			}
		}
		if _, err := Assign(members, plan); err != nil {
			return OTU{}, err
		}
	}

	for _, r := range kept {
		if predecessor, ok := refseqPredecessor(r); ok {
			excluded.Add(predecessor)
		}
	}

	otu := OTU{
		ID:                 uuid.NewString(),
		Taxid:              p.Taxid,
		Name:               p.Name,
		Acronym:            p.Acronym,
		LegacyID:           p.LegacyID,
		Plan:               plan,
		Schema:             schemaFromPlan(p.Molecule, plan),
		Isolates:           isolates,
		Sequences:          sequencesFromRecords(kept),
		ExcludedAccessions: excluded,
	}
	pruneExcluded(&otu)
	return otu, nil
}

// ApplyUpdate reconciles newly fetched records into an existing OTU and
// returns a new OTU value; the input is not mutated. New records are
// matched against the existing plan only, grouping merges key-wise, and
// the authority resolver re-runs restricted to the (isolate, segment)
// groups the new records touch. Exclusion is monotonic: the update never
// removes members from the exclusion set. Applying the same records twice
// yields the same result as applying them once.
func ApplyUpdate(otu OTU, newRecords []Record) (OTU, error) {
	next := otu.Clone()
	if len(newRecords) == 0 {
		return next, nil
	}
	if err := domain.ValidateRecords(newRecords); err != nil {
		return OTU{}, err
	}

	records := normalizeToPlan(newRecords, next.Plan)

	fresh := make([]Record, 0, len(records))
	for _, r := range records {
		if next.HasAccession(r.AccessionVersion) {
			continue
		}
		if next.ExcludedAccessions.Has(r.AccessionVersion) ||
			next.ExcludedAccessions.Has(domain.AccessionKey(r.AccessionVersion)) {
			continue
		}
		fresh = append(fresh, r)
	}
	if len(fresh) == 0 {
		return next, nil
	}

	if _, err := matchRecords(fresh, next.Plan, false); err != nil {
		return OTU{}, err
	}

	for _, r := range fresh {
		next.Sequences[r.AccessionVersion] = sequenceFromRecord(r)
	}
	next.Isolates.Merge(GroupRecords(fresh))

	affected := make(map[authorityGroup]struct{}, len(fresh))
	for _, r := range fresh {
		affected[authorityGroup{isolate: r.Isolate, segment: r.Segment}] = struct{}{}
	}
	var candidates []Record
	for _, r := range next.LinkedRecords() {
		if _, ok := affected[authorityGroup{isolate: r.Isolate, segment: r.Segment}]; ok {
			candidates = append(candidates, r)
		}
	}
	next.ExcludedAccessions.Merge(ResolveAuthority(candidates))

	for _, r := range fresh {
		if predecessor, ok := refseqPredecessor(r); ok {
			next.ExcludedAccessions.Add(predecessor)
		}
	}

	pruneExcluded(&next)
	return next, nil
}

// normalizeToPlan rewrites record segment names for monopartite plans,
// where the single unnamed segment matches any record regardless of its
// source designation.
func normalizeToPlan(records []Record, plan Plan) []Record {
	if !plan.Monopartite() || plan.Segments[0].Name.IsNamed() {
		return records
	}
	out := make([]Record, len(records))
	for i, r := range records {
		r.Segment = SegmentName{}
		out[i] = r
	}
	return out
}

// refseqPredecessor parses the superseded accession out of an
// authoritative record's comment, if present.
func refseqPredecessor(r Record) (string, bool) {
	if !r.Authoritative || r.Comment == "" {
		return "", false
	}
	_, predecessor, err := ParseRefSeqComment(r.Comment)
	if err != nil {
		return "", false
	}
	return predecessor, true
}

func schemaFromPlan(molecule Molecule, plan Plan) Schema {
	segments := make([]domain.SchemaSegment, len(plan.Segments))
	for i, s := range plan.Segments {
		segments[i] = domain.SchemaSegment{
			Name:     s.Name,
			Length:   s.Length,
			Required: s.Rule == SegmentRuleRequired,
		}
	}
	return Schema{
		Molecule:     molecule,
		Multipartite: len(plan.Segments) > 1,
		Segments:     segments,
	}
}

func sequenceFromRecord(r Record) Sequence {
	return Sequence{
		AccessionVersion: r.AccessionVersion,
		Segment:          r.Segment,
		Length:           r.Length,
		Authoritative:    r.Authoritative,
		Isolate:          r.Isolate,
	}
}

func sequencesFromRecords(records []Record) map[string]Sequence {
	out := make(map[string]Sequence, len(records))
	for _, r := range records {
		out[r.AccessionVersion] = sequenceFromRecord(r)
	}
	return out
}

// pruneExcluded drops any linked sequence whose accession version or
// family appears in the exclusion set, keeping the invariant that
// excluded accessions are never linked.
func pruneExcluded(otu *OTU) {
	for version, seq := range otu.Sequences {
		if !otu.ExcludedAccessions.Has(version) &&
			!otu.ExcludedAccessions.Has(domain.AccessionKey(version)) {
			continue
		}
		delete(otu.Sequences, version)
		if accessions, ok := otu.Isolates[seq.Isolate]; ok {
			delete(accessions, version)
			if len(accessions) == 0 {
				delete(otu.Isolates, seq.Isolate)
			}
		}
	}
}
