package domain

import (
	"strconv"
	"strings"
)

// Record is the normalized view of one fetched nucleotide record. Records
// are immutable once fetched; the engine never mutates them.
type Record struct {
	// Accession identifies the accession family across revisions.
	Accession string `json:"accession"`
	// AccessionVersion uniquely identifies one sequence revision,
	// e.g. "NC_003615.1".
	AccessionVersion string `json:"accession_version"`
	// Length is the nucleotide length of the sequence.
	Length int `json:"length"`
	// Segment is the source segment designation. The zero value means the
	// record carries no segment name (monopartite genomes).
	Segment SegmentName `json:"segment,omitzero"`
	// Isolate identifies the specimen the record was sequenced from.
	Isolate IsolateKey `json:"isolate"`
	// Authoritative marks RefSeq-equivalent records preferred over
	// redundant submissions.
	Authoritative bool `json:"authoritative"`
	// Comment carries the upstream record comment. For authoritative
	// records it usually names the superseded predecessor accession.
	Comment string `json:"comment,omitempty"`
}

// Validate reports an InvalidRecordError if the record is missing fields
// the engine depends on.
func (r Record) Validate() error {
	if r.Accession == "" {
		return InvalidRecordError{Accession: r.AccessionVersion, Reason: "missing accession"}
	}
	if r.AccessionVersion == "" {
		return InvalidRecordError{Accession: r.Accession, Reason: "missing accession version"}
	}
	if r.Length <= 0 {
		return InvalidRecordError{Accession: r.Accession, Reason: "missing sequence length"}
	}
	if r.Isolate.Value == "" {
		return InvalidRecordError{Accession: r.Accession, Reason: "missing isolate designation"}
	}
	return nil
}

// ValidateRecords validates every record, failing on the first invalid one.
func ValidateRecords(records []Record) error {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AccessionKey strips the revision suffix from a versioned accession,
// returning the accession family, e.g. "NC_003615.1" -> "NC_003615".
func AccessionKey(version string) string {
	if i := strings.LastIndexByte(version, '.'); i >= 0 {
		return version[:i]
	}
	return version
}

// AccessionVersionNumber returns the numeric revision of a versioned
// accession, or 0 when the version carries no numeric suffix.
func AccessionVersionNumber(version string) int {
	i := strings.LastIndexByte(version, '.')
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(version[i+1:])
	if err != nil {
		return 0
	}
	return n
}
