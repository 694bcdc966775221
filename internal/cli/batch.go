package cli

import (
	"context"
	"fmt"
	"os"
	"path"
	"runtime"
	"strings"
	"time"

	"github.com/fieldmark/relabel/internal/cache"
	"github.com/fieldmark/relabel/internal/groundtruth"
	"github.com/fieldmark/relabel/internal/llm"
	"github.com/fieldmark/relabel/internal/model"
	"github.com/fieldmark/relabel/internal/pipeline"
	"github.com/fieldmark/relabel/internal/storage"
	"github.com/fieldmark/relabel/internal/worker"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	batchGTPath  string
	matchMode    bool
	outputDir    string
	reportDir    string
	noReports    bool
	labelPattern string
	prefix       string
	concurrency  int
	batchTimeout time.Duration
	noCache      bool
	cacheDir     string
	auditMode    bool
	llmEnabled   bool
	llmProvider  string
	llmModel     string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <source-dir>",
	Short: "Correct label documents from a source container in parallel",
	Long: `Batch corrects every label document under a source container:
- List *.labels.json objects under the source (with optional prefix)
- Correct documents in parallel with a configurable worker count
- Upload corrected documents and per-document correction reports
- Print an aggregate summary; one malformed document never aborts the run

With --ground-truth, every document is corrected against one shared table.
With --match, ground-truth CSVs are taken from the source container and
paired with label documents by filename stem.

Example:
  relabel batch ./labels --ground-truth gt.csv --output-dir ./corrected
  relabel batch ./export --match --output-dir ./corrected --concurrency 8`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchGTPath, "ground-truth", "", "shared ground-truth CSV path")
	batchCmd.Flags().BoolVar(&matchMode, "match", false, "pair ground-truth CSVs from the source by filename stem")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./relabel-corrected", "destination container for corrected documents")
	batchCmd.Flags().StringVar(&reportDir, "report-dir", "", "separate container for correction reports (default: output dir)")
	batchCmd.Flags().BoolVar(&noReports, "no-reports", false, "skip correction report artifacts")
	batchCmd.Flags().StringVar(&labelPattern, "label-pattern", "", "glob matched against object base names (default: *.labels.json)")
	batchCmd.Flags().StringVar(&prefix, "prefix", "", "only process objects under this key prefix")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the download cache")
	batchCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "download cache directory")
	batchCmd.Flags().BoolVar(&auditMode, "audit", false, "save malformed documents to a scoped temp file for inspection")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM run summary")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	sourceRoot := args[0]

	if matchMode && batchGTPath != "" {
		return fmt.Errorf("--ground-truth and --match are mutually exclusive")
	}
	if !matchMode && batchGTPath == "" {
		return fmt.Errorf("one of --ground-truth or --match is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.Storage.SourceRoot = sourceRoot
	cfg.Storage.DestinationRoot = outputDir
	cfg.Storage.Prefix = prefix
	cfg.Cache.Enabled = !noCache
	if cacheDir != "" {
		cfg.Cache.Dir = cacheDir
	}
	cfg.Concurrency.Workers = concurrency
	cfg.Output.Verbose = verbose
	cfg.Output.ReportDir = reportDir
	cfg.Output.WriteReports = !noReports
	if labelPattern != "" {
		cfg.Storage.LabelPattern = labelPattern
	}
	if _, err := path.Match(cfg.Storage.LabelPattern, ""); err != nil {
		return fmt.Errorf("bad label pattern %q: %w", cfg.Storage.LabelPattern, err)
	}
	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Relabel Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Source:       %s\n", sourceRoot)
	fmt.Fprintf(os.Stderr, "  Output:       %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	var source storage.Source = storage.NewLimitedSource(
		storage.NewFileStore(cfg.Storage.SourceRoot), limiter, cfg.Storage.SourceRoot)
	if cfg.Cache.Enabled {
		layered := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		source = storage.NewCachedSource(source, layered, cfg.Storage.SourceRoot, cfg.Cache.DiskTTL)
	}
	dest := storage.NewLimitedDestination(
		storage.NewFileStore(cfg.Storage.DestinationRoot), limiter, cfg.Storage.DestinationRoot)

	// Reports land next to the corrected documents unless routed elsewhere;
	// a nil destination turns the artifact off.
	var reports storage.Destination
	if cfg.Output.WriteReports {
		reports = dest
		if cfg.Output.ReportDir != "" {
			reports = storage.NewLimitedDestination(
				storage.NewFileStore(cfg.Output.ReportDir), limiter, cfg.Output.ReportDir)
		}
	}

	keys, err := source.List(ctx, cfg.Storage.Prefix)
	if err != nil {
		return fmt.Errorf("list source: %w", err)
	}

	var labelKeys, csvKeys []string
	for _, key := range keys {
		if matched, _ := path.Match(cfg.Storage.LabelPattern, path.Base(key)); matched {
			labelKeys = append(labelKeys, key)
		} else if strings.HasSuffix(key, ".csv") {
			csvKeys = append(csvKeys, key)
		}
	}
	fmt.Fprintf(os.Stderr, "✓ Found %d label documents\n", len(labelKeys))

	var corrector worker.Corrector
	if matchMode {
		corrector, labelKeys, err = buildMatchedCorrector(ctx, source, dest, reports, labelKeys, csvKeys)
	} else {
		corrector, err = buildSharedCorrector(source, dest, reports)
	}
	if err != nil {
		return err
	}
	if len(labelKeys) == 0 {
		return fmt.Errorf("nothing to process")
	}

	fmt.Fprintf(os.Stderr, "⚙️  Processing %d documents with %d workers...\n\n", len(labelKeys), cfg.Concurrency.Workers)

	processor := worker.NewBatchProcessor(corrector, cfg.Concurrency.Workers)
	results := processor.ProcessKeys(ctx, labelKeys)

	var docResults []*pipeline.DocResult
	failures := 0
	for _, r := range results {
		if r.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Key, r.Error)
			continue
		}
		docResults = append(docResults, r.Doc)
		reportDocResult(ctx, source, r.Doc)
	}

	summary := pipeline.Summarize(docResults)
	pipeline.RenderSummary(os.Stderr, summary)
	if failures > 0 {
		fmt.Fprintf(os.Stderr, "  Storage failures:  %d\n\n", failures)
	}

	if llmEnabled {
		renderLLMSummary(ctx, cfg.LLM, summary)
	}

	return nil
}

// buildSharedCorrector corrects every document against one table.
func buildSharedCorrector(source storage.Source, dest, reports storage.Destination) (worker.Corrector, error) {
	table, err := loadTable(batchGTPath)
	if err != nil {
		return nil, err
	}
	return pipeline.NewPipeline(table, source, dest, reports), nil
}

// keyedCorrector routes each label key to the pipeline built for its
// matched ground-truth file.
type keyedCorrector struct {
	pipelines map[string]*pipeline.Pipeline
}

func (c *keyedCorrector) CorrectDocument(ctx context.Context, key string) (*pipeline.DocResult, error) {
	p, ok := c.pipelines[key]
	if !ok {
		return nil, fmt.Errorf("no ground truth matched for %s", key)
	}
	return p.CorrectDocument(ctx, key)
}

// buildMatchedCorrector pairs label documents with per-document
// ground-truth CSVs from the source and returns the processable keys.
func buildMatchedCorrector(ctx context.Context, source storage.Source, dest, reports storage.Destination, labelKeys, csvKeys []string) (worker.Corrector, []string, error) {
	matches := pipeline.MatchPairs(labelKeys, csvKeys)

	for _, key := range matches.LabelsOnly {
		fmt.Fprintf(os.Stderr, "⚠ %s: no matching ground-truth CSV\n", key)
	}
	for _, key := range matches.CSVOnly {
		fmt.Fprintf(os.Stderr, "⚠ %s: no matching label document\n", key)
	}

	c := &keyedCorrector{pipelines: make(map[string]*pipeline.Pipeline)}
	var keys []string
	for _, pair := range matches.Pairs {
		raw, err := source.Download(ctx, pair.CSVKey)
		if err != nil {
			return nil, nil, fmt.Errorf("download %s: %w", pair.CSVKey, err)
		}
		table, err := groundtruth.Load(strings.NewReader(string(raw)))
		if err != nil {
			// A broken per-document table skips just its document.
			fmt.Fprintf(os.Stderr, "⚠ %s: %v (skipping %s)\n", pair.CSVKey, err, pair.LabelKey)
			continue
		}
		for _, line := range table.SkippedRows {
			fmt.Fprintf(os.Stderr, "⚠ %s: line %d skipped (blank identifier or path)\n", pair.CSVKey, line)
		}
		c.pipelines[pair.LabelKey] = pipeline.NewPipeline(table, source, dest, reports)
		keys = append(keys, pair.LabelKey)
	}

	return c, keys, nil
}

// reportDocResult prints one document's outcome line.
func reportDocResult(ctx context.Context, source storage.Source, doc *pipeline.DocResult) {
	switch doc.Status {
	case model.StatusCorrected:
		fmt.Fprintf(os.Stderr, "✓ %s: %d matched, %d unmatched, %d fields corrected\n",
			doc.Key, doc.Result.MatchedGroups(), doc.Result.UnmatchedGroups(), len(doc.Result.Corrections))
	case model.StatusSkippedMalformed:
		fmt.Fprintf(os.Stderr, "⚠ %s: skipped: %v\n", doc.Key, doc.Err)
		if auditMode {
			auditMalformed(ctx, source, doc.Key)
		}
	case model.StatusFailedValidation:
		fmt.Fprintf(os.Stderr, "✗ %s: failed validation", doc.Key)
		if doc.Err != nil {
			fmt.Fprintf(os.Stderr, ": %v", doc.Err)
		}
		fmt.Fprintf(os.Stderr, "\n")
		for _, v := range doc.Violations {
			fmt.Fprintf(os.Stderr, "    group %d: %s\n", v.GroupIndex, v.Message)
		}
	}
}

// auditMalformed saves a malformed document to a scoped temp file so its
// head can be shown. Inspection only; the file is removed before return.
func auditMalformed(ctx context.Context, source storage.Source, key string) {
	data, err := source.Download(ctx, key)
	if err != nil {
		return
	}

	fs := afero.NewOsFs()
	_ = storage.WithTempFile(fs, "", "relabel-audit-*.json", func(path string) error {
		if err := afero.WriteFile(fs, path, data, 0600); err != nil {
			return err
		}
		head := data
		if len(head) > 200 {
			head = head[:200]
		}
		fmt.Fprintf(os.Stderr, "    audit %s: %s...\n", path, head)
		return nil
	})
}

// renderLLMSummary prints the optional LLM blurb; failure is a warning.
func renderLLMSummary(ctx context.Context, cfg model.LLMConfig, summary *model.RunSummary) {
	summarizer, err := llm.NewSummarizer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: LLM summarizer unavailable: %v\n", err)
		return
	}
	text, err := summarizer.GenerateSummary(ctx, summary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: LLM summary failed: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "%s\n\n", text)
}
