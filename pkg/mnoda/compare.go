package mnoda

import "github.com/google/go-cmp/cmp"

// CompareRecords reports the differences between the serialized forms of a
// and b, or "" if they serialize identically. Lines prefixed with "-" come
// from a and lines prefixed with "+" from b.
func CompareRecords(a, b Entry) string {
	return cmp.Diff(a.ToNode(), b.ToNode())
}

// CompareDocuments is CompareRecords for whole documents. Record and
// relationship order is significant.
func CompareDocuments(a, b *Document) string {
	return cmp.Diff(a.ToNode(), b.ToNode())
}

// FindRecord returns the first record in d whose ID name is name.
func (d *Document) FindRecord(name string) (Entry, bool) {
	for _, e := range d.records {
		if e.Base().ID().Name == name {
			return e, true
		}
	}
	return nil, false
}
