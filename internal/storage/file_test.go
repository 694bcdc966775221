package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fieldmark/relabel/internal/cache"
	"github.com/spf13/afero"
)

func memStore(t *testing.T, files map[string]string) *FileStore {
	t.Helper()
	fs := afero.NewMemMapFs()
	for key, content := range files {
		if err := afero.WriteFile(fs, "/labels/"+key, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return NewFileStoreFs(fs, "/labels")
}

func TestFileStore_ListSortedWithPrefix(t *testing.T) {
	store := memStore(t, map[string]string{
		"b.labels.json":       "{}",
		"a.labels.json":       "{}",
		"gt/a.csv":            "x",
		"nested/c.labels.json": "{}",
	})

	keys, err := store.List(context.Background(), "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"a.labels.json", "b.labels.json", "gt/a.csv", "nested/c.labels.json"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), keys)
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("keys[%d]: expected %q, got %q", i, k, keys[i])
		}
	}

	keys, err = store.List(context.Background(), "gt/")
	if err != nil {
		t.Fatalf("list prefix: %v", err)
	}
	if len(keys) != 1 || keys[0] != "gt/a.csv" {
		t.Errorf("expected [gt/a.csv], got %v", keys)
	}
}

func TestFileStore_DownloadMissingKey(t *testing.T) {
	store := memStore(t, nil)

	_, err := store.Download(context.Background(), "missing.json")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStore_UploadIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFileStoreFs(fs, "/corrected")
	ctx := context.Background()

	data := []byte(`{"document": "a.pdf"}`)
	for i := 0; i < 2; i++ {
		if err := store.Upload(ctx, "out/a.labels.json", data); err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
	}

	got, err := store.Download(ctx, "out/a.labels.json")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("expected round-tripped bytes, got %q", got)
	}
}

func TestCachedSource_SecondDownloadServedFromCache(t *testing.T) {
	store := memStore(t, map[string]string{"a.labels.json": "first"})
	c := cache.NewMemoryCache(time.Minute)
	cached := NewCachedSource(store, c, "labels", time.Minute)
	ctx := context.Background()

	got, err := cached.Download(ctx, "a.labels.json")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(got) != "first" {
		t.Fatalf("expected first, got %q", got)
	}

	// Mutate the backing store; the cache must answer the second read.
	if err := store.Upload(ctx, "a.labels.json", []byte("second")); err != nil {
		t.Fatal(err)
	}

	got, err = cached.Download(ctx, "a.labels.json")
	if err != nil {
		t.Fatalf("cached download: %v", err)
	}
	if string(got) != "first" {
		t.Errorf("expected cached bytes, got %q", got)
	}
}

type countingWaiter struct {
	calls int
	err   error
}

func (w *countingWaiter) Wait(ctx context.Context, container string) error {
	w.calls++
	return w.err
}

func TestLimitedSource_WaitsBeforeEachRequest(t *testing.T) {
	store := memStore(t, map[string]string{"a.labels.json": "{}"})
	w := &countingWaiter{}
	limited := NewLimitedSource(store, w, "labels")
	ctx := context.Background()

	if _, err := limited.List(ctx, ""); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := limited.Download(ctx, "a.labels.json"); err != nil {
		t.Fatalf("download: %v", err)
	}
	if w.calls != 2 {
		t.Errorf("expected 2 waits, got %d", w.calls)
	}

	w.err = context.Canceled
	if _, err := limited.Download(ctx, "a.labels.json"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected limiter error to propagate, got %v", err)
	}
}

func TestLimitedDestination_WaitsBeforeUpload(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFileStoreFs(fs, "/corrected")
	w := &countingWaiter{}
	limited := NewLimitedDestination(store, w, "corrected")

	if err := limited.Upload(context.Background(), "a.json", []byte("{}")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if w.calls != 1 {
		t.Errorf("expected 1 wait, got %d", w.calls)
	}
}

func TestWithTempFile_CleansUpOnAllPaths(t *testing.T) {
	fs := afero.NewMemMapFs()

	var name string
	err := WithTempFile(fs, "", "relabel-*", func(path string) error {
		name = path
		return afero.WriteFile(fs, path, []byte("scratch"), 0644)
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if exists, _ := afero.Exists(fs, name); exists {
		t.Error("expected temp file to be removed on success")
	}

	wantErr := fmt.Errorf("boom")
	err = WithTempFile(fs, "", "relabel-*", func(path string) error {
		name = path
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected fn error to propagate, got %v", err)
	}
	if exists, _ := afero.Exists(fs, name); exists {
		t.Error("expected temp file to be removed on failure")
	}
}
