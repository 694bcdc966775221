package groundtruth

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/fieldmark/relabel/internal/model"
)

// Fixed CSV schema: identifier, three pass-through columns, path code, then
// the measurement columns L1..L20 in positional order.
const (
	identifierColumn = "R.P"
	pathColumn       = "Path"

	// MeasurementCount is the number of L{n} columns in the fixed schema.
	MeasurementCount = 20
)

// Header returns the expected CSV header.
func Header() []string {
	h := []string{identifierColumn, "Date", "Rep", "TRT", pathColumn}
	for n := 1; n <= MeasurementCount; n++ {
		h = append(h, fmt.Sprintf("L%d", n))
	}
	return h
}

// Table is the in-memory ground-truth lookup. It is built once per run and
// read-only afterwards, so it is safe to share across workers without
// locking.
type Table struct {
	rows map[model.Key]model.GroundTruthRow

	// SkippedRows holds the 1-based line numbers of malformed rows that
	// were skipped with a warning (blank identifier or path).
	SkippedRows []int
}

// Load parses a ground-truth CSV and builds the (identifier, path) lookup.
// Identifier and path are trimmed; measurement values are trimmed but kept
// verbatim otherwise, including the "-" sentinel.
func Load(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ground truth: read header: %w", err)
	}
	if !headerMatches(header) {
		return nil, &SchemaError{Got: header}
	}

	t := &Table{rows: make(map[model.Key]model.GroundTruthRow)}

	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("ground truth: line %d: %w", line, err)
		}

		key := model.Key{
			Identifier: strings.TrimSpace(record[0]),
			Path:       strings.TrimSpace(record[4]),
		}
		if key.Identifier == "" || key.Path == "" {
			t.SkippedRows = append(t.SkippedRows, line)
			continue
		}

		if _, exists := t.rows[key]; exists {
			return nil, &DuplicateKeyError{Key: key}
		}

		values := make([]string, MeasurementCount)
		for i := 0; i < MeasurementCount; i++ {
			values[i] = strings.TrimSpace(record[5+i])
		}
		t.rows[key] = model.GroundTruthRow{Key: key, Values: values}
	}

	if len(t.rows) == 0 {
		return nil, ErrEmptyTable
	}

	return t, nil
}

// Lookup returns the measurement values for the given identifier and path.
// The match is exact and case-sensitive after trimming surrounding
// whitespace. A missing key is an expected outcome, not an error.
func (t *Table) Lookup(identifier, path string) ([]string, bool) {
	key := model.Key{
		Identifier: strings.TrimSpace(identifier),
		Path:       strings.TrimSpace(path),
	}
	row, ok := t.rows[key]
	return row.Values, ok
}

// Len returns the number of usable rows.
func (t *Table) Len() int {
	return len(t.rows)
}

func headerMatches(got []string) bool {
	want := Header()
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if strings.TrimSpace(got[i]) != want[i] {
			return false
		}
	}
	return true
}
