package worker

import (
	"context"

	"github.com/fieldmark/relabel/internal/pipeline"
)

// Corrector runs the per-document correction flow for one object key.
type Corrector interface {
	CorrectDocument(ctx context.Context, key string) (*pipeline.DocResult, error)
}

// CorrectJob is one document's worth of work.
type CorrectJob struct {
	Key       string
	Corrector Corrector
}

// Execute runs the correction job.
func (j *CorrectJob) Execute(ctx context.Context) Result {
	doc, err := j.Corrector.CorrectDocument(ctx, j.Key)
	return &CorrectResult{Key: j.Key, Doc: doc, Error: err}
}

// CorrectResult is the result of one correction job. Error is set only for
// storage/serialization failures; document-level outcomes live in Doc.
type CorrectResult struct {
	Key   string
	Doc   *pipeline.DocResult
	Error error
}

// GetError returns the error from the correction result.
func (r *CorrectResult) GetError() error {
	return r.Error
}

// BatchProcessor corrects multiple documents concurrently. Each job owns
// its own document; the ground-truth table behind the Corrector is shared
// read-only.
type BatchProcessor struct {
	corrector   Corrector
	concurrency int
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(corrector Corrector, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		corrector:   corrector,
		concurrency: concurrency,
	}
}

// ProcessKeys corrects the given object keys concurrently. Input keys are
// distinct, so no two workers ever write the same output key.
func (b *BatchProcessor) ProcessKeys(ctx context.Context, keys []string) []*CorrectResult {
	if len(keys) == 0 {
		return []*CorrectResult{}
	}

	jobs := make([]Job, 0, len(keys))
	for _, key := range keys {
		jobs = append(jobs, &CorrectJob{Key: key, Corrector: b.corrector})
	}

	results := Run(ctx, b.concurrency, jobs)

	correctResults := make([]*CorrectResult, 0, len(results))
	for _, result := range results {
		correctResults = append(correctResults, result.(*CorrectResult))
	}

	return correctResults
}
