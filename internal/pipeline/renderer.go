package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/fieldmark/relabel/internal/model"
)

// ReportCSV renders the per-document correction report: one row per text
// replacement, in correction order.
func ReportCSV(corrections []model.Correction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Label", "Original", "Corrected"}); err != nil {
		return nil, err
	}
	for _, c := range corrections {
		if err := w.Write([]string{c.Label, c.Original, c.Corrected}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Summarize aggregates per-document results into the run summary.
func Summarize(results []*DocResult) *model.RunSummary {
	s := &model.RunSummary{}
	for _, r := range results {
		if r == nil {
			continue
		}
		s.Documents++
		switch r.Status {
		case model.StatusCorrected:
			s.Corrected++
		case model.StatusSkippedMalformed:
			s.SkippedMalformed++
		case model.StatusFailedValidation:
			s.FailedValidation++
		}
		if r.Result != nil {
			s.MatchedGroups += r.Result.MatchedGroups()
			s.UnmatchedGroups += r.Result.UnmatchedGroups()
			for _, g := range r.Result.Groups {
				s.CorrectedFields += g.FieldsCorrected
			}
		}
	}
	return s
}

// RenderSummary writes the end-of-run summary block.
func RenderSummary(w io.Writer, s *model.RunSummary) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Correction Summary\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Documents:         %d\n", s.Documents)
	fmt.Fprintf(w, "  Corrected:         %d\n", s.Corrected)
	fmt.Fprintf(w, "  Skipped malformed: %d\n", s.SkippedMalformed)
	fmt.Fprintf(w, "  Failed validation: %d\n", s.FailedValidation)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Matched groups:    %d\n", s.MatchedGroups)
	fmt.Fprintf(w, "  Unmatched groups:  %d\n", s.UnmatchedGroups)
	fmt.Fprintf(w, "  Corrected fields:  %d\n", s.CorrectedFields)
	fmt.Fprintf(w, "\n")
}
