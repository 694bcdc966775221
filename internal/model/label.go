package model

import "encoding/json"

// Occurrence is one page/text/bounding-box triple within a label entry's
// value list. BoundingBoxes is carried through byte-for-byte and never
// inspected.
type Occurrence struct {
	Page          int             `json:"page"`
	Text          string          `json:"text"`
	BoundingBoxes json.RawMessage `json:"boundingBoxes,omitempty"`
}

// LabelEntry is a single entry in a label document: a dotted label path
// and an ordered list of occurrences.
type LabelEntry struct {
	Label string       `json:"label"`
	Value []Occurrence `json:"value"`
}

// FirstText returns the text of the entry's first occurrence, or "" when
// the value list is empty.
func (e *LabelEntry) FirstText() string {
	if len(e.Value) == 0 {
		return ""
	}
	return e.Value[0].Text
}
