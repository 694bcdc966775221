package validate

import (
	"fmt"

	"github.com/fieldmark/relabel/internal/labeldoc"
	"github.com/fieldmark/relabel/internal/model"
)

// IntegrityError indicates a corrected document that is structurally
// unreadable. The engine's contract rules this out, so seeing one signals
// an engine bug; the document must not be uploaded.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return "integrity violation: " + e.Reason
}

// Validator checks a corrected document's structural invariants before it
// is considered safe to persist.
type Validator struct{}

// New creates a validator.
func New() *Validator {
	return &Validator{}
}

// Validate checks the corrected document against its correction result.
// Business-rule violations come back as a list (empty = valid); only a
// structurally broken document returns an IntegrityError.
func (v *Validator) Validate(doc *labeldoc.Document, result *model.CorrectionResult) ([]model.Violation, error) {
	if doc == nil {
		return nil, &IntegrityError{Reason: "document is nil"}
	}
	if doc.Labels == nil {
		return nil, &IntegrityError{Reason: "labels list vanished during correction"}
	}

	var violations []model.Violation

	if doc.Name == "" {
		violations = append(violations, model.Violation{
			Message: "document identifier is empty",
		})
	}

	// Correction replaces text; it must never remove occurrences.
	for _, entry := range doc.Labels {
		if len(entry.Value) == 0 {
			return nil, &IntegrityError{
				Reason: fmt.Sprintf("entry %q lost its occurrences", entry.Label),
			}
		}
	}

	// Every matched group must carry at least one real measurement value.
	groups := doc.Groups()
	for _, outcome := range result.Groups {
		if !outcome.Matched {
			continue
		}
		g, ok := groups[outcome.GroupIndex]
		if !ok {
			return nil, &IntegrityError{
				Reason: fmt.Sprintf("matched group %d no longer exists", outcome.GroupIndex),
			}
		}
		if !hasMeasurementValue(g) {
			violations = append(violations, model.Violation{
				GroupIndex: outcome.GroupIndex,
				Message:    "matched group has no non-sentinel measurement value",
			})
		}
	}

	return violations, nil
}

func hasMeasurementValue(g *labeldoc.Group) bool {
	for _, name := range g.Fields() {
		if !isMeasurementField(name) {
			continue
		}
		if text, ok := g.Field(name); ok && text != "" && text != model.Sentinel {
			return true
		}
	}
	return false
}

// isMeasurementField reports whether the field name is L{n}.
func isMeasurementField(name string) bool {
	if len(name) < 2 || name[0] != 'L' {
		return false
	}
	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
