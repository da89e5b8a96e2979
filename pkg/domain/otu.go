package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// Molecule describes the molecular character of the sequences in an OTU.
type Molecule struct {
	Type         string `json:"type"`
	Strandedness string `json:"strandedness"`
	Topology     string `json:"topology"`
}

// SchemaSegment is the outward-facing description of one expected segment.
type SchemaSegment struct {
	Name     SegmentName `json:"name,omitzero"`
	Length   int         `json:"length"`
	Required bool        `json:"required"`
}

// Schema summarizes the genome structure of an OTU for consumers that do
// not need the full plan.
type Schema struct {
	Molecule     Molecule        `json:"molecule"`
	Multipartite bool            `json:"multipartite"`
	Segments     []SchemaSegment `json:"segments"`
}

// Sequence links one accession version into an OTU, recording the segment
// and isolate it satisfies. It carries just enough of the source record to
// let the authority resolver re-run during updates.
type Sequence struct {
	AccessionVersion string      `json:"accession_version"`
	Segment          SegmentName `json:"segment,omitzero"`
	Length           int         `json:"length"`
	Authoritative    bool        `json:"authoritative"`
	Isolate          IsolateKey  `json:"isolate"`
}

// AccessionSet is a set of versioned accessions, serialized as a sorted
// array for deterministic snapshots.
type AccessionSet map[string]struct{}

// NewAccessionSet builds a set from the given members.
func NewAccessionSet(members ...string) AccessionSet {
	s := make(AccessionSet, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// Add inserts a member.
func (s AccessionSet) Add(member string) { s[member] = struct{}{} }

// Has reports membership.
func (s AccessionSet) Has(member string) bool {
	_, ok := s[member]
	return ok
}

// Merge adds every member of other.
func (s AccessionSet) Merge(other AccessionSet) {
	for m := range other {
		s[m] = struct{}{}
	}
}

// Clone returns an independent copy.
func (s AccessionSet) Clone() AccessionSet {
	cp := make(AccessionSet, len(s))
	for m := range s {
		cp[m] = struct{}{}
	}
	return cp
}

// Sorted returns the members in ascending order.
func (s AccessionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for m := range s {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON serializes the set as a sorted array.
func (s AccessionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON restores the set from an array.
func (s *AccessionSet) UnmarshalJSON(data []byte) error {
	var members []string
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	*s = NewAccessionSet(members...)
	return nil
}

// IsolateSet maps isolate keys to the accession versions sequenced from
// that specimen.
type IsolateSet map[IsolateKey]AccessionSet

// Merge unions other into the set key-wise.
func (s IsolateSet) Merge(other IsolateSet) {
	for k, accessions := range other {
		if existing, ok := s[k]; ok {
			existing.Merge(accessions)
			continue
		}
		s[k] = accessions.Clone()
	}
}

// Clone returns a deep copy.
func (s IsolateSet) Clone() IsolateSet {
	cp := make(IsolateSet, len(s))
	for k, accessions := range s {
		cp[k] = accessions.Clone()
	}
	return cp
}

// SortedKeys returns the isolate keys ordered by (type, value).
func (s IsolateSet) SortedKeys() []IsolateKey {
	keys := make([]IsolateKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return CompareIsolateKeys(keys[i], keys[j]) < 0 })
	return keys
}

type isolateSetEntry struct {
	Name       IsolateKey `json:"name"`
	Accessions []string   `json:"accessions"`
}

// MarshalJSON serializes the set as entries sorted by isolate key, since
// struct keys cannot be JSON object keys.
func (s IsolateSet) MarshalJSON() ([]byte, error) {
	entries := make([]isolateSetEntry, 0, len(s))
	for _, k := range s.SortedKeys() {
		entries = append(entries, isolateSetEntry{Name: k, Accessions: s[k].Sorted()})
	}
	return json.Marshal(entries)
}

// UnmarshalJSON restores the set from its entry form.
func (s *IsolateSet) UnmarshalJSON(data []byte) error {
	var entries []isolateSetEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	out := make(IsolateSet, len(entries))
	for _, e := range entries {
		out[e.Name] = NewAccessionSet(e.Accessions...)
	}
	*s = out
	return nil
}

// OTU is the curated reference descriptor for one virus taxon. OTU values
// are immutable from the engine's point of view: updates produce a new
// value rather than mutating the prior one.
type OTU struct {
	ID                 string              `json:"id"`
	Taxid              int                 `json:"taxid"`
	Name               string              `json:"name"`
	Acronym            string              `json:"acronym"`
	LegacyID           *string             `json:"legacy_id"`
	Schema             Schema              `json:"schema"`
	Plan               Plan                `json:"plan"`
	Isolates           IsolateSet          `json:"isolates"`
	Sequences          map[string]Sequence `json:"sequences"`
	ExcludedAccessions AccessionSet        `json:"excluded_accessions"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// Clone returns a deep copy of the OTU.
func (o OTU) Clone() OTU {
	cp := o
	if o.LegacyID != nil {
		v := *o.LegacyID
		cp.LegacyID = &v
	}
	cp.Plan = o.Plan.Clone()
	cp.Schema.Segments = append([]SchemaSegment(nil), o.Schema.Segments...)
	cp.Isolates = o.Isolates.Clone()
	cp.Sequences = make(map[string]Sequence, len(o.Sequences))
	for k, v := range o.Sequences {
		cp.Sequences[k] = v
	}
	cp.ExcludedAccessions = o.ExcludedAccessions.Clone()
	return cp
}

// Accessions returns every accession version currently linked to the OTU.
func (o OTU) Accessions() AccessionSet {
	out := make(AccessionSet, len(o.Sequences))
	for version := range o.Sequences {
		out.Add(version)
	}
	return out
}

// HasAccession reports whether the given accession version is linked.
func (o OTU) HasAccession(version string) bool {
	_, ok := o.Sequences[version]
	return ok
}

// LinkedRecords reconstructs the record view of every linked sequence,
// letting the engine re-run resolution over prior state during updates.
func (o OTU) LinkedRecords() []Record {
	out := make([]Record, 0, len(o.Sequences))
	for version, seq := range o.Sequences {
		out = append(out, Record{
			Accession:        AccessionKey(version),
			AccessionVersion: version,
			Length:           seq.Length,
			Segment:          seq.Segment,
			Isolate:          seq.Isolate,
			Authoritative:    seq.Authoritative,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccessionVersion < out[j].AccessionVersion })
	return out
}
