package model

// UnmatchedReason distinguishes the two ways a group can fail to match.
type UnmatchedReason string

const (
	// ReasonKeyFieldsMissing means the group has no R.P or Path entry
	// (typically a metadata group, left untouched).
	ReasonKeyFieldsMissing UnmatchedReason = "key_fields_missing"

	// ReasonNoGroundTruth means the key fields were present but no
	// ground-truth row exists for that key.
	ReasonNoGroundTruth UnmatchedReason = "no_ground_truth"
)

// GroupOutcome is the per-group result of a correction pass.
type GroupOutcome struct {
	GroupIndex       int             `json:"group_index"`
	Matched          bool            `json:"matched"`
	Key              *Key            `json:"key,omitempty"` // nil when key fields are missing
	Reason           UnmatchedReason `json:"reason,omitempty"`
	FieldsCorrected  int             `json:"fields_corrected"`
	FieldsUnresolved int             `json:"fields_unresolved"`
}

// Correction records one text replacement: the material for the
// per-document correction report.
type Correction struct {
	Label     string `json:"label"`
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
}

// CorrectionResult is the complete outcome of correcting one document.
// It is logged and rendered, never persisted inside the label document.
type CorrectionResult struct {
	Document    string         `json:"document"`
	Groups      []GroupOutcome `json:"groups"`
	Corrections []Correction   `json:"corrections,omitempty"`
}

// MatchedGroups counts groups that matched a ground-truth row.
func (r *CorrectionResult) MatchedGroups() int {
	n := 0
	for _, g := range r.Groups {
		if g.Matched {
			n++
		}
	}
	return n
}

// UnmatchedGroups counts groups that did not match.
func (r *CorrectionResult) UnmatchedGroups() int {
	return len(r.Groups) - r.MatchedGroups()
}

// DocStatus classifies the fate of one document in a run.
type DocStatus string

const (
	StatusCorrected        DocStatus = "corrected"
	StatusSkippedMalformed DocStatus = "skipped_malformed"
	StatusFailedValidation DocStatus = "skipped_failed_validation"
)

// Violation is one business-rule violation found by the validator.
type Violation struct {
	GroupIndex int    `json:"group_index,omitempty"`
	Message    string `json:"message"`
}

// RunSummary aggregates the per-document outcomes of a batch run.
type RunSummary struct {
	Documents        int `json:"documents"`
	Corrected        int `json:"corrected"`
	SkippedMalformed int `json:"skipped_malformed"`
	FailedValidation int `json:"failed_validation"`
	MatchedGroups    int `json:"matched_groups"`
	UnmatchedGroups  int `json:"unmatched_groups"`
	CorrectedFields  int `json:"corrected_fields"`
}
