package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fieldmark/relabel/internal/engine"
	"github.com/fieldmark/relabel/internal/groundtruth"
	"github.com/fieldmark/relabel/internal/labeldoc"
	"github.com/fieldmark/relabel/internal/model"
	"github.com/fieldmark/relabel/internal/storage"
	"github.com/fieldmark/relabel/internal/validate"
)

// Pipeline runs the complete per-document correction flow: download,
// parse, correct, validate, upload. Parse and validation failures are
// per-document outcomes; storage failures are errors.
type Pipeline struct {
	engine    *engine.Engine
	validator *validate.Validator
	source    storage.Source
	dest      storage.Destination
	reports   storage.Destination // nil disables correction reports
}

// NewPipeline creates a pipeline over a loaded ground-truth table and the
// given stores. The table is shared read-only; one Pipeline serves all
// workers.
func NewPipeline(table *groundtruth.Table, source storage.Source, dest storage.Destination, reports storage.Destination) *Pipeline {
	return &Pipeline{
		engine:    engine.New(table),
		validator: validate.New(),
		source:    source,
		dest:      dest,
		reports:   reports,
	}
}

// DocResult is the outcome of one document's trip through the pipeline.
type DocResult struct {
	Key        string
	Status     model.DocStatus
	Result     *model.CorrectionResult // nil unless the document parsed
	Violations []model.Violation
	Err        error // the parse/validation error behind a skip status
}

// CorrectDocument processes a single object key. A non-nil error means a
// storage or serialization failure; document-level problems come back in
// the DocResult so the batch can continue.
func (p *Pipeline) CorrectDocument(ctx context.Context, key string) (*DocResult, error) {
	data, err := p.source.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}

	doc, err := labeldoc.Parse(data)
	if err != nil {
		var malformed *labeldoc.MalformedDocumentError
		if errors.As(err, &malformed) {
			return &DocResult{Key: key, Status: model.StatusSkippedMalformed, Err: err}, nil
		}
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}

	result := p.engine.Correct(doc)

	violations, err := p.validator.Validate(doc, result)
	if err != nil {
		// IntegrityError: the corrected output must not be uploaded.
		return &DocResult{Key: key, Status: model.StatusFailedValidation, Result: result, Err: err}, nil
	}
	if len(violations) > 0 {
		return &DocResult{
			Key:        key,
			Status:     model.StatusFailedValidation,
			Result:     result,
			Violations: violations,
		}, nil
	}

	out, err := doc.Marshal()
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", key, err)
	}
	if err := p.dest.Upload(ctx, key, out); err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	if p.reports != nil && len(result.Corrections) > 0 {
		report, err := ReportCSV(result.Corrections)
		if err != nil {
			return nil, fmt.Errorf("report %s: %w", key, err)
		}
		if err := p.reports.Upload(ctx, ReportKey(key), report); err != nil {
			return nil, fmt.Errorf("upload report %s: %w", key, err)
		}
	}

	return &DocResult{Key: key, Status: model.StatusCorrected, Result: result}, nil
}

// ReportKey derives the correction report key from a label document key.
func ReportKey(key string) string {
	for _, suffix := range []string{".labels.json", ".json"} {
		if strings.HasSuffix(key, suffix) {
			return strings.TrimSuffix(key, suffix) + ".report.csv"
		}
	}
	return key + ".report.csv"
}
