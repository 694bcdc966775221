package groundtruth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fieldmark/relabel/internal/model"
)

// ErrEmptyTable is returned when a table has zero usable rows after parsing.
var ErrEmptyTable = errors.New("ground truth: no usable rows")

// SchemaError indicates the CSV header does not match the fixed column set.
type SchemaError struct {
	Got []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("ground truth: header mismatch: got [%s]", strings.Join(e.Got, ","))
}

// DuplicateKeyError indicates two rows share the same (identifier, path).
type DuplicateKeyError struct {
	Key model.Key
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("ground truth: duplicate key %s", e.Key)
}
