package engine

import (
	"fmt"

	"github.com/fieldmark/relabel/internal/groundtruth"
	"github.com/fieldmark/relabel/internal/labeldoc"
	"github.com/fieldmark/relabel/internal/model"
)

// Field names that carry the composite key of a group.
const (
	identifierField = "R.P"
	pathField       = "Path"
)

// Engine rewrites measurement values in a label document to match the
// ground-truth table. It mutates the document in place, never touches the
// table, and performs no I/O.
type Engine struct {
	table *groundtruth.Table
}

// New creates an engine over a loaded ground-truth table.
func New(table *groundtruth.Table) *Engine {
	return &Engine{table: table}
}

// Correct runs one correction pass over the document and returns the
// ordered per-group outcomes. Applying the same pass twice is idempotent:
// the second pass corrects zero additional fields.
func (e *Engine) Correct(doc *labeldoc.Document) *model.CorrectionResult {
	result := &model.CorrectionResult{Document: doc.Name}

	groups := doc.Groups()
	for _, idx := range doc.GroupIndexes() {
		result.Groups = append(result.Groups, e.correctGroup(groups[idx], result))
	}

	return result
}

func (e *Engine) correctGroup(g *labeldoc.Group, result *model.CorrectionResult) model.GroupOutcome {
	outcome := model.GroupOutcome{GroupIndex: g.Index}

	identifier, haveID := g.Field(identifierField)
	path, havePath := g.Field(pathField)
	if !haveID || !havePath {
		// Metadata group: no key fields, nothing to correct.
		outcome.Reason = model.ReasonKeyFieldsMissing
		return outcome
	}

	key := model.Key{Identifier: identifier, Path: path}
	outcome.Key = &key

	values, ok := e.table.Lookup(identifier, path)
	if !ok {
		outcome.Reason = model.ReasonNoGroundTruth
		return outcome
	}
	outcome.Matched = true

	for n := 1; n <= len(values); n++ {
		value := values[n-1]
		if value == model.Sentinel {
			// Ground truth has no opinion; the document value stands.
			continue
		}
		if value == "" {
			// Blank cell: the row carries no value for this column.
			// Distinct from the sentinel, but equally not a correction;
			// a document value is never cleared.
			continue
		}

		field := fmt.Sprintf("L%d", n)
		previous, found := g.SetFieldText(field, value)
		if !found {
			// Document has no entry for this measurement; never
			// fabricate one.
			outcome.FieldsUnresolved++
			continue
		}
		if previous != value {
			outcome.FieldsCorrected++
			result.Corrections = append(result.Corrections, model.Correction{
				Label:     fmt.Sprintf("dynamic/%d/%s", g.Index, field),
				Original:  previous,
				Corrected: value,
			})
		}
	}

	return outcome
}
