package storage

import (
	"fmt"

	"github.com/spf13/afero"
)

// WithTempFile acquires a temporary file path, runs fn with it, and removes
// the file on every exit path, including a panic in fn. Used for local
// debugging/auditing copies only; nothing correctness-critical may live in
// the temp file.
func WithTempFile(fs afero.Fs, dir, pattern string, fn func(path string) error) error {
	f, err := afero.TempFile(fs, dir, pattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := f.Name()
	defer func() {
		_ = fs.Remove(name)
	}()

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	return fn(name)
}
