package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/fieldmark/relabel/internal/groundtruth"
	"github.com/fieldmark/relabel/internal/labeldoc"
	"github.com/fieldmark/relabel/internal/model"
	"github.com/fieldmark/relabel/internal/storage"
	"github.com/spf13/afero"
)

func testTable(t *testing.T) *groundtruth.Table {
	t.Helper()

	var b strings.Builder
	b.WriteString(strings.Join(groundtruth.Header(), ","))
	b.WriteString("\n")
	fields := []string{"1.1", "", "", "PK", "BR", "95"}
	for i := 1; i < groundtruth.MeasurementCount; i++ {
		fields = append(fields, model.Sentinel)
	}
	b.WriteString(strings.Join(fields, ","))
	b.WriteString("\n")

	table, err := groundtruth.Load(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("load table: %v", err)
	}
	return table
}

const goodDoc = `{
  "document": "a.pdf",
  "labels": [
    {"label": "dynamic/0/R.P", "value": [{"page": 1, "text": "1.1", "boundingBoxes": []}]},
    {"label": "dynamic/0/Path", "value": [{"page": 1, "text": "BR", "boundingBoxes": []}]},
    {"label": "dynamic/0/L1", "value": [{"page": 1, "text": "10", "boundingBoxes": []}]}
  ]
}`

func testStores(t *testing.T, files map[string]string) (*storage.FileStore, *storage.FileStore) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for key, content := range files {
		if err := afero.WriteFile(fs, "/labels/"+key, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return storage.NewFileStoreFs(fs, "/labels"), storage.NewFileStoreFs(fs, "/corrected")
}

func TestCorrectDocument_EndToEnd(t *testing.T) {
	source, dest := testStores(t, map[string]string{"a.pdf.labels.json": goodDoc})
	p := NewPipeline(testTable(t), source, dest, dest)
	ctx := context.Background()

	res, err := p.CorrectDocument(ctx, "a.pdf.labels.json")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Status != model.StatusCorrected {
		t.Fatalf("expected corrected, got %s (%v)", res.Status, res.Err)
	}

	// The uploaded document carries the corrected value.
	out, err := dest.Download(ctx, "a.pdf.labels.json")
	if err != nil {
		t.Fatalf("download corrected: %v", err)
	}
	doc, err := labeldoc.Parse(out)
	if err != nil {
		t.Fatalf("parse corrected: %v", err)
	}
	if text, _ := doc.Groups()[0].Field("L1"); text != "95" {
		t.Errorf("expected corrected L1=95, got %q", text)
	}

	// The correction report was written next to the output.
	report, err := dest.Download(ctx, "a.pdf.report.csv")
	if err != nil {
		t.Fatalf("download report: %v", err)
	}
	if !strings.Contains(string(report), "dynamic/0/L1,10,95") {
		t.Errorf("unexpected report contents:\n%s", report)
	}
}

func TestCorrectDocument_MalformedIsSkippedNotFatal(t *testing.T) {
	source, dest := testStores(t, map[string]string{"bad.labels.json": `{"document": "bad.pdf"}`})
	p := NewPipeline(testTable(t), source, dest, nil)

	res, err := p.CorrectDocument(context.Background(), "bad.labels.json")
	if err != nil {
		t.Fatalf("malformed document must not be a pipeline error, got %v", err)
	}
	if res.Status != model.StatusSkippedMalformed {
		t.Errorf("expected skipped_malformed, got %s", res.Status)
	}
	if res.Err == nil {
		t.Error("expected the parse error to be recorded")
	}

	// Nothing may have been uploaded.
	if _, err := dest.Download(context.Background(), "bad.labels.json"); err == nil {
		t.Error("malformed document must not be uploaded")
	}
}

func TestCorrectDocument_MissingKeyIsStorageError(t *testing.T) {
	source, dest := testStores(t, nil)
	p := NewPipeline(testTable(t), source, dest, nil)

	if _, err := p.CorrectDocument(context.Background(), "missing.labels.json"); err == nil {
		t.Fatal("expected a storage error")
	}
}

func TestCorrectDocument_NoCorrectionsMeansNoReport(t *testing.T) {
	alreadyCorrect := strings.Replace(goodDoc, `"text": "10"`, `"text": "95"`, 1)
	source, dest := testStores(t, map[string]string{"a.pdf.labels.json": alreadyCorrect})
	p := NewPipeline(testTable(t), source, dest, dest)

	res, err := p.CorrectDocument(context.Background(), "a.pdf.labels.json")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Status != model.StatusCorrected {
		t.Fatalf("expected corrected, got %s", res.Status)
	}

	if _, err := dest.Download(context.Background(), "a.pdf.report.csv"); err == nil {
		t.Error("expected no report when nothing changed")
	}
}

func TestCorrectDocument_NilReportDestinationWritesNoReport(t *testing.T) {
	source, dest := testStores(t, map[string]string{"a.pdf.labels.json": goodDoc})
	p := NewPipeline(testTable(t), source, dest, nil)
	ctx := context.Background()

	res, err := p.CorrectDocument(ctx, "a.pdf.labels.json")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Status != model.StatusCorrected {
		t.Fatalf("expected corrected, got %s", res.Status)
	}
	if len(res.Result.Corrections) == 0 {
		t.Fatal("expected the document to be corrected")
	}

	// Corrected output still lands; the report artifact stays off.
	if _, err := dest.Download(ctx, "a.pdf.labels.json"); err != nil {
		t.Errorf("corrected document missing: %v", err)
	}
	if _, err := dest.Download(ctx, "a.pdf.report.csv"); err == nil {
		t.Error("expected no report with a nil report destination")
	}
}

func TestReportKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a.pdf.labels.json", "a.pdf.report.csv"},
		{"nested/b.labels.json", "nested/b.report.csv"},
		{"c.json", "c.report.csv"},
		{"d", "d.report.csv"},
	}
	for _, tt := range tests {
		if got := ReportKey(tt.in); got != tt.want {
			t.Errorf("ReportKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	results := []*DocResult{
		{
			Status: model.StatusCorrected,
			Result: &model.CorrectionResult{Groups: []model.GroupOutcome{
				{GroupIndex: 0, Matched: true, FieldsCorrected: 2},
				{GroupIndex: 1, Matched: false, Reason: model.ReasonNoGroundTruth},
			}},
		},
		{Status: model.StatusSkippedMalformed},
		{Status: model.StatusFailedValidation, Result: &model.CorrectionResult{}},
	}

	s := Summarize(results)
	if s.Documents != 3 || s.Corrected != 1 || s.SkippedMalformed != 1 || s.FailedValidation != 1 {
		t.Errorf("unexpected document counts: %+v", s)
	}
	if s.MatchedGroups != 1 || s.UnmatchedGroups != 1 || s.CorrectedFields != 2 {
		t.Errorf("unexpected group counts: %+v", s)
	}
}
