// Package domain defines the core value types, engine errors, and rule
// evaluation primitives used by refcore.
package domain

import (
	"fmt"
	"strings"
)

// SegmentName identifies one genome segment by its structured name, e.g.
// prefix "DNA" and key "A". The zero value means the segment is unnamed,
// which is only valid for a monopartite genome with a single segment. Use
// NewSegmentName for named segments and the zero value for unnamed ones.
type SegmentName struct {
	Prefix string `json:"prefix"`
	Key    string `json:"key"`
}

// NewSegmentName constructs a named segment identifier.
func NewSegmentName(prefix, key string) SegmentName {
	return SegmentName{Prefix: prefix, Key: key}
}

// IsNamed reports whether the name carries an actual segment designation.
func (n SegmentName) IsNamed() bool {
	return n != SegmentName{}
}

// String renders the name as "{prefix} {key}", the form used in error
// messages and plan listings.
func (n SegmentName) String() string {
	if !n.IsNamed() {
		return "unnamed"
	}
	if n.Prefix == "" {
		return n.Key
	}
	return n.Prefix + " " + n.Key
}

// CompareSegmentNames orders names ascending by (prefix, key). Unnamed
// sorts before any named segment.
func CompareSegmentNames(a, b SegmentName) int {
	if c := strings.Compare(a.Prefix, b.Prefix); c != 0 {
		return c
	}
	return strings.Compare(a.Key, b.Key)
}

// IsolateNameType enumerates the source qualifiers an isolate designation
// can be derived from.
type IsolateNameType string

// Isolate name types recognised during record normalization, in preference
// order when a record carries more than one qualifier.
const (
	IsolateTypeIsolate  IsolateNameType = "isolate"
	IsolateTypeStrain   IsolateNameType = "strain"
	IsolateTypeClone    IsolateNameType = "clone"
	IsolateTypeGenotype IsolateNameType = "genotype"
)

// IsolateKey identifies the biological specimen a record was sequenced
// from. Records with equal keys belong to the same isolate.
type IsolateKey struct {
	Type  IsolateNameType `json:"type"`
	Value string          `json:"value"`
}

// String renders the key as "{type} {value}".
func (k IsolateKey) String() string {
	return fmt.Sprintf("%s %s", k.Type, k.Value)
}

// CompareIsolateKeys orders keys ascending by (type, value).
func CompareIsolateKeys(a, b IsolateKey) int {
	if c := strings.Compare(string(a.Type), string(b.Type)); c != 0 {
		return c
	}
	return strings.Compare(a.Value, b.Value)
}
