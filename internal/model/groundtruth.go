package model

import "fmt"

// Sentinel is the ground-truth marker for "no correction for this field".
// It blocks overwrites; it never clears a document value.
const Sentinel = "-"

// Key identifies one ground-truth row: the record identifier (e.g. "1.1")
// and the path code (e.g. "BR"). Value equality on the struct is the lookup
// semantics; keys are never concatenated into a single string.
type Key struct {
	Identifier string `json:"identifier"`
	Path       string `json:"path"`
}

func (k Key) String() string {
	return fmt.Sprintf("(%s, %s)", k.Identifier, k.Path)
}

// GroundTruthRow is one row of the curated measurement table. Values is
// positional and fixed-length: Values[i] corresponds to measurement L{i+1}.
type GroundTruthRow struct {
	Key    Key
	Values []string
}
