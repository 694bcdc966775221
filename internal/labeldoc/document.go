package labeldoc

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fieldmark/relabel/internal/model"
)

// dynamicPrefix is the first segment of a groupable label path. Paths of
// any other shape are metadata: carried through untouched, never grouped,
// never corrected.
const dynamicPrefix = "dynamic"

// MalformedDocumentError indicates a document that cannot be parsed into
// the expected structure. Per-document and recoverable: the batch skips the
// document and continues.
type MalformedDocumentError struct {
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	return "malformed label document: " + e.Reason
}

// Group is the set of dynamic entries sharing one group index, one
// physical record on the source document. Entries keep their original
// relative order.
type Group struct {
	Index   int
	entries []*model.LabelEntry
	byField map[string]*model.LabelEntry
}

// Field returns the first occurrence's text for the named entry, or false
// when the group has no such field.
func (g *Group) Field(name string) (string, bool) {
	entry, ok := g.byField[name]
	if !ok {
		return "", false
	}
	return entry.FirstText(), true
}

// SetFieldText replaces the text of every occurrence of the named entry,
// preserving page and bounding boxes. It returns the previous first
// occurrence text and whether the field was present; an absent field is a
// reported no-op, not a silent one.
func (g *Group) SetFieldText(name, text string) (previous string, ok bool) {
	entry, found := g.byField[name]
	if !found {
		return "", false
	}
	previous = entry.FirstText()
	for i := range entry.Value {
		entry.Value[i].Text = text
	}
	return previous, true
}

// Fields returns the field names present in the group, in entry order.
func (g *Group) Fields() []string {
	names := make([]string, 0, len(g.entries))
	for _, e := range g.entries {
		if _, name, ok := splitDynamicLabel(e.Label); ok {
			names = append(names, name)
		}
	}
	return names
}

// Document is one parsed label document. The engine mutates entry text in
// place; everything else round-trips unchanged.
type Document struct {
	Schema json.RawMessage    `json:"$schema,omitempty"`
	Name   string             `json:"document"`
	Labels []model.LabelEntry `json:"labels"`

	groups map[int]*Group
}

// Parse decodes a raw label document and indexes its dynamic entries by
// group. The dotted dynamic/{n}/{field} paths are decoded once, here, into
// structured group/field form.
func Parse(data []byte) (*Document, error) {
	var probe struct {
		Schema   json.RawMessage  `json:"$schema"`
		Document *string          `json:"document"`
		Labels   *json.RawMessage `json:"labels"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &MalformedDocumentError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if probe.Labels == nil {
		return nil, &MalformedDocumentError{Reason: "missing labels list"}
	}

	var labels []model.LabelEntry
	if err := json.Unmarshal(*probe.Labels, &labels); err != nil {
		return nil, &MalformedDocumentError{Reason: fmt.Sprintf("labels is not a list of entries: %v", err)}
	}

	doc := &Document{
		Schema: probe.Schema,
		Labels: labels,
	}
	if probe.Document != nil {
		doc.Name = *probe.Document
	}

	for i := range doc.Labels {
		if doc.Labels[i].Label == "" {
			return nil, &MalformedDocumentError{Reason: fmt.Sprintf("entry %d has no label path", i)}
		}
		if doc.Labels[i].Value == nil {
			return nil, &MalformedDocumentError{Reason: fmt.Sprintf("entry %q has no value list", doc.Labels[i].Label)}
		}
	}

	doc.index()
	return doc, nil
}

// index builds the group map from the dynamic entries.
func (d *Document) index() {
	d.groups = make(map[int]*Group)
	for i := range d.Labels {
		entry := &d.Labels[i]
		idx, field, ok := splitDynamicLabel(entry.Label)
		if !ok {
			continue
		}
		g, exists := d.groups[idx]
		if !exists {
			g = &Group{Index: idx, byField: make(map[string]*model.LabelEntry)}
			d.groups[idx] = g
		}
		g.entries = append(g.entries, entry)
		// Within a group field names are unique; keep the first on the
		// off chance a document violates that.
		if _, dup := g.byField[field]; !dup {
			g.byField[field] = entry
		}
	}
}

// Groups returns the dynamic groups keyed by group index.
func (d *Document) Groups() map[int]*Group {
	return d.groups
}

// GroupIndexes returns the group indexes in ascending order.
func (d *Document) GroupIndexes() []int {
	indexes := make([]int, 0, len(d.groups))
	for idx := range d.groups {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	return indexes
}

// Marshal re-serializes the document. Apart from corrected text fields the
// output is structurally identical to the input.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// splitDynamicLabel decodes dynamic/{groupIndex}/{fieldName}. Any path not
// of exactly that shape is a non-dynamic entry.
func splitDynamicLabel(label string) (groupIndex int, fieldName string, ok bool) {
	parts := strings.Split(label, "/")
	if len(parts) != 3 || parts[0] != dynamicPrefix {
		return 0, "", false
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || parts[2] == "" {
		return 0, "", false
	}
	return idx, parts[2], true
}
