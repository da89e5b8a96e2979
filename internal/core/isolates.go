package core

// GroupRecords partitions records by isolate key, mapping each isolate to
// the accession versions sequenced from it. Grouping is idempotent and
// associative: grouping the union of two record sets equals the key-wise
// union of grouping each separately, which is what makes incremental
// updates safe.
func GroupRecords(records []Record) IsolateSet {
	out := make(IsolateSet)
	for _, r := range records {
		accessions, ok := out[r.Isolate]
		if !ok {
			accessions = make(AccessionSet)
			out[r.Isolate] = accessions
		}
		accessions.Add(r.AccessionVersion)
	}
	return out
}
